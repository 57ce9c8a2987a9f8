package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/planner/internal/models"
)

const planColumns = `id, user_id, title, description, due_date, completed, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var description sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &description,
		&p.DueDate, &p.Completed, &p.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return &p, nil
}

// ListPlans возвращает планы пользователя по возрастанию due_date.
// Порядок при равных датах стабилен: created_at, затем id.
func (s *Storage) ListPlans(ctx context.Context, userID string) ([]*models.Plan, error) {
	const op = "storage.ListPlans"

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE user_id = $1
			  ORDER BY due_date ASC, created_at ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isInvalidID(err) {
			return []*models.Plan{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreatePlan сохраняет план; id и created_at генерирует база.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"

	query := `INSERT INTO plans (user_id, title, description, due_date, completed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + planColumns
	created, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		plan.UserID, plan.Title, plan.Description, plan.DueDate, plan.Completed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetPlan возвращает план, если он принадлежит userID.
func (s *Storage) GetPlan(ctx context.Context, id, userID string) (*models.Plan, error) {
	const op = "storage.GetPlan"

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE id = $1 AND user_id = $2`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePlan применяет патч к плану владельца одним запросом и возвращает
// обновлённую запись. Поля патча со значением nil не меняются.
func (s *Storage) UpdatePlan(ctx context.Context, id, userID string, patch models.PlanPatch) (*models.Plan, error) {
	const op = "storage.UpdatePlan"

	query := `UPDATE plans
			  SET title = COALESCE($3, title),
			      description = CASE WHEN $4::boolean THEN $5 ELSE description END,
			      due_date = COALESCE($6, due_date),
			      completed = COALESCE($7, completed)
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + planColumns
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		id, userID, patch.Title, patch.SetDescription, patch.Description, patch.DueDate, patch.Completed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeletePlan безвозвратно удаляет план владельца.
func (s *Storage) DeletePlan(ctx context.Context, id, userID string) error {
	const op = "storage.DeletePlan"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if isInvalidID(err) {
			return fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
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
