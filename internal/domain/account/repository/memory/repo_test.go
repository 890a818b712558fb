package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/operator-service/internal/domain/account/entities"
	accounterrors "github.com/Conte777/operator-service/internal/domain/account/errors"
)

func TestRepository_MarkAuthenticated(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	op := &entities.Operator{Name: "Olena"}
	require.NoError(t, repo.CreateOperator(ctx, op))

	account := &entities.Account{OperatorID: op.ID, PhoneNumber: "+380951234567"}
	require.NoError(t, repo.CreateAccount(ctx, account))

	payload := `{"session":"abc"}`
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkAuthenticated(ctx, account.ID, &payload, at))

	payload = "mutated"

	loaded, err := repo.GetByOperatorAndPhone(ctx, op.ID, "+380951234567")
	require.NoError(t, err)
	assert.True(t, loaded.IsAuthenticated)
	require.NotNil(t, loaded.SessionData)
	assert.Equal(t, `{"session":"abc"}`, *loaded.SessionData)
	require.NotNil(t, loaded.LastActive)
	assert.True(t, at.Equal(*loaded.LastActive))

	require.NoError(t, repo.MarkAuthenticated(ctx, account.ID, nil, at.Add(time.Hour)))
	loaded, err = repo.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.SessionData)
	assert.True(t, loaded.IsAuthenticated)
}

func TestRepository_NotFound(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	assert.ErrorIs(t, repo.MarkAuthenticated(ctx, "missing", nil, time.Now()), accounterrors.ErrAccountNotFound)
	assert.ErrorIs(t, repo.DeleteAccount(ctx, "missing"), accounterrors.ErrAccountNotFound)

	_, err := repo.GetOperator(ctx, "missing")
	assert.ErrorIs(t, err, accounterrors.ErrOperatorNotFound)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	op := &entities.Operator{Name: "Olena"}
	require.NoError(t, repo.CreateOperator(ctx, op))
	account := &entities.Account{OperatorID: op.ID, PhoneNumber: "+380951234567"}
	require.NoError(t, repo.CreateAccount(ctx, account))

	listed, err := repo.ListByOperator(ctx, op.ID, false)
	require.NoError(t, err)
	listed[0].IsAuthenticated = true

	again, err := repo.ListByOperator(ctx, op.ID, true)
	require.NoError(t, err)
	assert.Empty(t, again)
}
