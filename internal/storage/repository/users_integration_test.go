package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/planner/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("create user with profile", func(t *testing.T) {
		name := "Ada Lovelace"
		u, err := storage.CreateUserWithProfile(ctx, "ada@example.com", "hash", &name)
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Nil(t, u.EmailConfirmedAt)

		profile, err := storage.GetProfile(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, profile.FullName)
		assert.Equal(t, name, *profile.FullName)

		byEmail, err := storage.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "hash", byEmail.PasswordHash)

		byID, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", byID.Email)
	})

	t.Run("duplicate email is a conflict and creates no profile", func(t *testing.T) {
		_, err := storage.CreateUserWithProfile(ctx, "dup@example.com", "hash", nil)
		require.NoError(t, err)

		_, err = storage.CreateUserWithProfile(ctx, "dup@example.com", "hash", nil)
		assert.ErrorIs(t, err, models.ErrConflict)

		var profiles int
		err = storage.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM profiles p JOIN users u ON u.id = p.id WHERE u.email = 'dup@example.com'`).Scan(&profiles)
		require.NoError(t, err)
		assert.Equal(t, 1, profiles)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = storage.GetUserByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("confirm email", func(t *testing.T) {
		_, err := storage.CreateUserWithProfile(ctx, "confirm@example.com", "hash", nil)
		require.NoError(t, err)

		require.NoError(t, storage.ConfirmEmail(ctx, "confirm@example.com"))

		u, err := storage.GetUserByEmail(ctx, "confirm@example.com")
		require.NoError(t, err)
		require.NotNil(t, u.EmailConfirmedAt)
		first := *u.EmailConfirmedAt

		require.NoError(t, storage.ConfirmEmail(ctx, "confirm@example.com"))
		u, err = storage.GetUserByEmail(ctx, "confirm@example.com")
		require.NoError(t, err)
		assert.True(t, first.Equal(*u.EmailConfirmedAt))

		err = storage.ConfirmEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
