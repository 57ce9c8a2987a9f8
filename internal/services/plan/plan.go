// Package services содержит бизнес-логику планов пользователя.
//
// Каждая операция принимает идентификатор вызывающего пользователя и работает
// только с его планами: чужой план неотличим от отсутствующего.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/planner/internal/lib/duedate"
	"github.com/magabrotheeeer/planner/internal/models"
)

// upcomingLimit число ближайших планов на дашборде.
const upcomingLimit = 3

// PlanRepository определяет методы для работы с планами в хранилище.
type PlanRepository interface {
	ListPlans(ctx context.Context, userID string) ([]*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	GetPlan(ctx context.Context, id, userID string) (*models.Plan, error)
	UpdatePlan(ctx context.Context, id, userID string, patch models.PlanPatch) (*models.Plan, error)
	DeletePlan(ctx context.Context, id, userID string) error
}

// ProfileRepository читает профили пользователей.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// Recorder учитывает изменения планов в метриках.
type Recorder interface {
	PlanChanged(op string)
}

// PlanService реализует операции над планами вызывающего пользователя.
type PlanService struct {
	repo     PlanRepository
	profiles ProfileRepository
	loc      *time.Location
	recorder Recorder
	log      *slog.Logger
	now      func() time.Time
}

// NewPlanService создает новый экземпляр PlanService. loc — часовой пояс,
// в котором трактуются даты без смещения.
func NewPlanService(repo PlanRepository, profiles ProfileRepository, loc *time.Location,
	recorder Recorder, log *slog.Logger) *PlanService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlanService{
		repo:     repo,
		profiles: profiles,
		loc:      loc,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

// List возвращает планы пользователя по возрастанию due_date.
func (s *PlanService) List(ctx context.Context, caller string) ([]*models.Plan, error) {
	const op = "plan.List"
	if caller == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}
	plans, err := s.repo.ListPlans(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Create проверяет ввод и сохраняет новый невыполненный план пользователя.
func (s *PlanService) Create(ctx context.Context, caller string, req models.DummyPlan) (*models.Plan, error) {
	const op = "plan.Create"
	if caller == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	description, err := normalizeDescription(req.Description)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	due, err := s.composeDue(req.DueDate, req.DueTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan, err := s.repo.CreatePlan(ctx, models.Plan{
		UserID:      caller,
		Title:       title,
		Description: description,
		DueDate:     due,
		Completed:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.record("create")
	s.log.Info("plan created", slog.String("id", plan.ID), slog.String("user_id", caller))
	return plan, nil
}

// Get возвращает план пользователя. Некорректный id — models.ErrNotFound.
func (s *PlanService) Get(ctx context.Context, caller, id string) (*models.Plan, error) {
	const op = "plan.Get"
	if err := checkScope(caller, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plan, err := s.repo.GetPlan(ctx, id, caller)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// Update частично обновляет план. Поля id, user_id и created_at игнорируются.
// Если передано только due_time, дата берётся из текущего значения плана.
func (s *PlanService) Update(ctx context.Context, caller, id string, req models.DummyPlanPatch) (*models.Plan, error) {
	const op = "plan.Update"
	if err := checkScope(caller, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var patch models.PlanPatch
	if req.Title != nil {
		title, err := normalizeTitle(*req.Title)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.Title = &title
	}
	if req.Description.Set {
		description, err := normalizeDescription(req.Description.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.SetDescription = true
		patch.Description = description
	}
	switch {
	case req.DueDate != nil:
		clock := ""
		if req.DueTime != nil {
			clock = *req.DueTime
		}
		due, err := s.composeDue(*req.DueDate, clock)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.DueDate = &due
	case req.DueTime != nil:
		current, err := s.repo.GetPlan(ctx, id, caller)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		due, err := s.composeDue(current.DueDate.In(s.loc).Format(time.DateOnly), *req.DueTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.DueDate = &due
	}
	patch.Completed = req.Completed

	if patch.Empty() {
		plan, err := s.repo.GetPlan(ctx, id, caller)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return plan, nil
	}

	plan, err := s.repo.UpdatePlan(ctx, id, caller, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.record("update")
	return plan, nil
}

// ToggleComplete инвертирует переданное текущее значение completed.
func (s *PlanService) ToggleComplete(ctx context.Context, caller, id string, current bool) (*models.Plan, error) {
	const op = "plan.ToggleComplete"
	if err := checkScope(caller, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	completed := !current
	plan, err := s.repo.UpdatePlan(ctx, id, caller, models.PlanPatch{Completed: &completed})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.record("toggle")
	return plan, nil
}

// Delete безвозвратно удаляет план пользователя.
func (s *PlanService) Delete(ctx context.Context, caller, id string) error {
	const op = "plan.Delete"
	if err := checkScope(caller, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeletePlan(ctx, id, caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.record("delete")
	s.log.Info("plan deleted", slog.String("id", id), slog.String("user_id", caller))
	return nil
}

// Dashboard собирает приветствие, статистику и ближайшие планы пользователя.
func (s *PlanService) Dashboard(ctx context.Context, caller models.Identity) (*models.Dashboard, error) {
	const op = "plan.Dashboard"
	if caller.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthenticated)
	}

	plans, err := s.repo.ListPlans(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.profiles.GetProfile(ctx, caller.UserID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profile = nil
	}

	now := s.now()
	dashboard := &models.Dashboard{
		Greeting: greeting(profile, caller.Email),
		Upcoming: make([]*models.Plan, 0, upcomingLimit),
		Plans:    plans,
		Profile:  profile,
		Now:      now,
	}
	for _, p := range plans {
		dashboard.Stats.Total++
		if p.Completed {
			dashboard.Stats.Completed++
			continue
		}
		if p.DueDate.Before(now) {
			dashboard.Stats.Overdue++
			continue
		}
		if len(dashboard.Upcoming) < upcomingLimit {
			dashboard.Upcoming = append(dashboard.Upcoming, p)
		}
	}
	dashboard.Stats.Pending = dashboard.Stats.Total - dashboard.Stats.Completed
	return dashboard, nil
}

func (s *PlanService) composeDue(date, clock string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, models.NewValidationError("due_date is required")
	}
	due, err := duedate.Compose(date, clock, s.loc)
	if err != nil {
		return time.Time{}, models.NewValidationError("due_date or due_time is invalid")
	}
	return due, nil
}

func (s *PlanService) record(op string) {
	if s.recorder != nil {
		s.recorder.PlanChanged(op)
	}
}

func checkScope(caller, id string) error {
	if caller == "" {
		return models.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFound
	}
	return nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", models.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > models.TitleMaxLen {
		return "", models.NewValidationError("title must be at most %d characters", models.TitleMaxLen)
	}
	return title, nil
}

// normalizeDescription пустое после обрезки описание превращается в nil.
func normalizeDescription(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	description := strings.TrimSpace(*raw)
	if description == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return nil, models.NewValidationError("description must be at most %d characters", models.DescriptionMaxLen)
	}
	return &description, nil
}

func greeting(profile *models.Profile, email string) string {
	if profile != nil && profile.FullName != nil {
		if name := strings.TrimSpace(*profile.FullName); name != "" {
			return name
		}
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
