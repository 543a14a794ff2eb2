package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"taskboard/internal/models"
)

// ErrDuplicateEmail is returned when an insert hits the unique index on
// users.email.
var ErrDuplicateEmail = fmt.Errorf("email already taken")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)

	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
	RevokeRefresh(ctx context.Context, userID int64) error

	GetTelegramChatID(ctx context.Context, userID int64) (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, role, password_hash, telegram_chat_id, refresh_token, refresh_expires_at, refresh_revoked`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash,
		&user.TelegramChatID, &user.RefreshToken, &user.RefreshExpiresAt, &user.RefreshRevoked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, role, password_hash, telegram_chat_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Role, user.PasswordHash, user.TelegramChatID,
	).Scan(&user.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `SELECT id, name, email, role FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE WHERE id=$3`,
		token, expiresAt, userID)
	return err
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// RotateRefresh swaps the stored refresh token only if the old one still
// matches, so a stolen-then-rotated token cannot be replayed.
func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	query := `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND NOT refresh_revoked AND deleted_at IS NULL
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, newToken, expiresAt, oldToken))
}

func (r *userRepository) RevokeRefresh(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_revoked=TRUE WHERE id=$1`, userID)
	return err
}

func (r *userRepository) GetTelegramChatID(ctx context.Context, userID int64) (int64, error) {
	var chatID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT telegram_chat_id FROM users WHERE id=$1 AND deleted_at IS NULL`, userID).Scan(&chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return chatID, nil
}
