package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/planner/internal/models"
)

const userColumns = `id, email, password_hash, email_confirmed_at, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var confirmedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &confirmedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		u.EmailConfirmedAt = &confirmedAt.Time
	}
	return u, nil
}

// CreateUserWithProfile создаёт пользователя и его профиль в одной транзакции.
// Занятый email возвращается как models.ErrConflict.
func (s *Storage) CreateUserWithProfile(ctx context.Context, email, passwordHash string, fullName *string) (*models.User, error) {
	const op = "storage.CreateUserWithProfile"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO users (email, password_hash)
			  VALUES ($1, $2)
			  RETURNING ` + userColumns
	u, err := scanUser(tx.QueryRowContext(ctx, query, email, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO profiles (id, full_name) VALUES ($1, $2)`, u.ID, fullName); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ConfirmEmail отмечает email подтверждённым. Повторное подтверждение
// сохраняет исходную отметку времени.
func (s *Storage) ConfirmEmail(ctx context.Context, email string) error {
	const op = "storage.ConfirmEmail"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, now()) WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// GetProfile возвращает профиль пользователя.
func (s *Storage) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	const op = "storage.GetProfile"

	p := &models.Profile{}
	var fullName sql.NullString
	err := s.DB.QueryRowContext(ctx, `SELECT id, full_name FROM profiles WHERE id = $1`, id).Scan(&p.ID, &fullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	return p, nil
}
