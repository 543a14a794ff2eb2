package services

import "taskboard/internal/models"

// Allowed task status transitions. Completed and Cancelled are terminal;
// nothing transitions out of them.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusPending:   {models.StatusCompleted: true, models.StatusCancelled: true},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

func canTransition(from, to models.TaskStatus) bool {
	if from.Terminal() {
		return false
	}
	nexts, ok := TaskTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}
