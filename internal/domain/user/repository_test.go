package user

import (
	"context"
	"testing"

	"servicehub/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewRepository(database.NewTestDB(t, &User{}))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &User{Name: "A", Email: "a@example.com", PasswordHash: "x", Role: "user"}))
	err := repo.Create(ctx, &User{Name: "B", Email: " A@Example.com ", PasswordHash: "x", Role: "user"})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepository_UpdateProfilePartial(t *testing.T) {
	repo := NewRepository(database.NewTestDB(t, &User{}))
	ctx := context.Background()

	u := &User{Name: "Old", Email: "u@example.com", PhoneNumber: "111", PasswordHash: "x", Role: "user"}
	require.NoError(t, repo.Create(ctx, u))

	name := "New"
	updated, err := repo.UpdateProfile(ctx, u.ID, ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "111", updated.PhoneNumber)
	assert.Equal(t, "u@example.com", updated.Email)

	_, err = repo.UpdateProfile(ctx, u.ID, ProfilePatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = repo.UpdateProfile(ctx, 999, ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
