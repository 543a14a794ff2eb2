package services

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/pdf"
	"taskboard/internal/repositories"
)

type ReportService interface {
	Summary(ctx context.Context, actor models.Actor) (*models.TaskSummary, error)
	ExportPDF(ctx context.Context, actor models.Actor) ([]byte, error)
}

type reportService struct {
	tasks repositories.TaskRepository
	gen   pdf.Generator
}

func NewReportService(tasks repositories.TaskRepository, gen pdf.Generator) ReportService {
	return &reportService{tasks: tasks, gen: gen}
}

func (s *reportService) Summary(ctx context.Context, actor models.Actor) (*models.TaskSummary, error) {
	if !actor.IsManager() {
		return nil, errKind(ErrNotAuthorized, "You are not authorized to perform this action")
	}
	counts, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary := &models.TaskSummary{
		Pending:   counts[models.StatusPending],
		Completed: counts[models.StatusCompleted],
		Cancelled: counts[models.StatusCancelled],
	}
	summary.Total = summary.Pending + summary.Completed + summary.Cancelled
	return summary, nil
}

func (s *reportService) ExportPDF(ctx context.Context, actor models.Actor) ([]byte, error) {
	summary, err := s.Summary(ctx, actor)
	if err != nil {
		return nil, err
	}
	tasks, _, err := s.tasks.FindAll(ctx, models.TaskFilter{Page: 1, PerPage: maxPerPage})
	if err != nil {
		return nil, err
	}
	return s.gen.GenerateTaskReport(*summary, tasks)
}
