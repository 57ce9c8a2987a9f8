package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/planner/internal/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestStorage_Plans(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "owner@example.com")
	stranger := factory.CreateUser(t, "stranger@example.com")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create returns generated fields", func(t *testing.T) {
		p, err := storage.CreatePlan(ctx, models.Plan{
			UserID:      owner,
			Title:       "Write report",
			Description: strPtr("quarterly"),
			DueDate:     base,
		})
		require.NoError(t, err)

		_, err = uuid.Parse(p.ID)
		assert.NoError(t, err)
		assert.Equal(t, owner, p.UserID)
		assert.False(t, p.Completed)
		assert.False(t, p.CreatedAt.IsZero())
		require.NotNil(t, p.Description)
		assert.Equal(t, "quarterly", *p.Description)
		assert.True(t, base.Equal(p.DueDate))
	})

	t.Run("list is ordered by due date and scoped to owner", func(t *testing.T) {
		late := factory.CreatePlan(t, owner, "late", base.Add(48*time.Hour))
		early := factory.CreatePlan(t, owner, "early", base.Add(-48*time.Hour))
		factory.CreatePlan(t, stranger, "foreign", base.Add(-72*time.Hour))

		plans, err := storage.ListPlans(ctx, owner)
		require.NoError(t, err)
		require.Len(t, plans, 3)

		assert.Equal(t, early.ID, plans[0].ID)
		assert.Equal(t, "Write report", plans[1].Title)
		assert.Equal(t, late.ID, plans[2].ID)
		for _, p := range plans {
			assert.Equal(t, owner, p.UserID)
		}
	})

	t.Run("list keeps creation order for equal due dates", func(t *testing.T) {
		user := factory.CreateUser(t, "ties@example.com")
		sameDue := base.Add(24 * time.Hour)

		var want []string
		for _, title := range []string{"first", "second", "third"} {
			p := factory.CreatePlan(t, user, title, sameDue)
			want = append(want, p.ID)
			// created_at хранится с точностью до микросекунды
			time.Sleep(2 * time.Millisecond)
		}
		factory.CreatePlan(t, user, "earlier", base)

		for range 2 {
			plans, err := storage.ListPlans(ctx, user)
			require.NoError(t, err)
			require.Len(t, plans, 4)

			assert.Equal(t, "earlier", plans[0].Title)
			got := []string{plans[1].ID, plans[2].ID, plans[3].ID}
			assert.Equal(t, want, got)
		}
	})

	t.Run("list for user without plans is empty", func(t *testing.T) {
		other := factory.CreateUser(t, "empty@example.com")
		plans, err := storage.ListPlans(ctx, other)
		require.NoError(t, err)
		assert.NotNil(t, plans)
		assert.Empty(t, plans)
	})

	t.Run("get respects ownership", func(t *testing.T) {
		p := factory.CreatePlan(t, owner, "mine", base)

		got, err := storage.GetPlan(ctx, p.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Title)

		_, err = storage.GetPlan(ctx, p.ID, stranger)
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = storage.GetPlan(ctx, "not-a-uuid", owner)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("update applies only present fields", func(t *testing.T) {
		p, err := storage.CreatePlan(ctx, models.Plan{
			UserID:      owner,
			Title:       "draft",
			Description: strPtr("keep me"),
			DueDate:     base,
		})
		require.NoError(t, err)

		updated, err := storage.UpdatePlan(ctx, p.ID, owner, models.PlanPatch{Completed: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "draft", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "keep me", *updated.Description)
		assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))

		newDue := base.Add(24 * time.Hour)
		updated, err = storage.UpdatePlan(ctx, p.ID, owner, models.PlanPatch{
			Title:          strPtr("final"),
			SetDescription: true,
			Description:    nil,
			DueDate:        &newDue,
		})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)
		assert.Nil(t, updated.Description)
		assert.True(t, newDue.Equal(updated.DueDate))
		assert.True(t, updated.Completed)
	})

	t.Run("update of foreign plan is not found and leaves row intact", func(t *testing.T) {
		p := factory.CreatePlan(t, owner, "guarded", base)

		_, err := storage.UpdatePlan(ctx, p.ID, stranger, models.PlanPatch{Title: strPtr("hijacked")})
		assert.ErrorIs(t, err, models.ErrNotFound)

		got, err := storage.GetPlan(ctx, p.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, "guarded", got.Title)
	})

	t.Run("delete respects ownership", func(t *testing.T) {
		p := factory.CreatePlan(t, owner, "to delete", base)

		err := storage.DeletePlan(ctx, p.ID, stranger)
		assert.ErrorIs(t, err, models.ErrNotFound)

		require.NoError(t, storage.DeletePlan(ctx, p.ID, owner))

		err = storage.DeletePlan(ctx, p.ID, owner)
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = storage.GetPlan(ctx, p.ID, owner)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
