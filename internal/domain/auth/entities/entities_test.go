package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherrors "github.com/Conte777/operator-service/internal/domain/auth/errors"
)

var t0 = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func newAttempt() *LoginAttempt {
	return NewLoginAttempt("id", "op", "+380951234567", "acc", "hash-1", t0, 60*time.Second)
}

func TestLoginAttempt_CodeWithoutTwoFactor(t *testing.T) {
	a := newAttempt()
	assert.Equal(t, StepAwaitingCode, a.Step())

	require.NoError(t, a.AcceptCode(false, t0.Add(time.Second)))
	assert.Equal(t, StepDone, a.Step())

	assert.ErrorIs(t, a.AcceptCode(false, t0), autherrors.ErrInvalidStep)
	assert.ErrorIs(t, a.AcceptPassword(t0), autherrors.ErrInvalidStep)
}

func TestLoginAttempt_CodeThenPassword(t *testing.T) {
	a := newAttempt()

	assert.ErrorIs(t, a.AcceptPassword(t0), autherrors.ErrInvalidStep)

	require.NoError(t, a.AcceptCode(true, t0))
	assert.Equal(t, StepAwaitingPassword, a.Step())
	assert.ErrorIs(t, a.Resent("hash-2", t0, time.Minute), autherrors.ErrInvalidStep)

	require.NoError(t, a.AcceptPassword(t0))
	assert.Equal(t, StepDone, a.Step())
}

func TestLoginAttempt_ResendCountdown(t *testing.T) {
	a := newAttempt()

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 60},
		{time.Millisecond, 60},
		{59*time.Second + 1, 1},
		{59 * time.Second, 1},
		{60 * time.Second, 0},
		{90 * time.Second, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.ResendCountdown(t0.Add(tt.elapsed)), tt.elapsed.String())
	}
}

func TestLoginAttempt_Resent(t *testing.T) {
	a := newAttempt()
	at := t0.Add(60 * time.Second)

	require.NoError(t, a.Resent("hash-2", at, 60*time.Second))
	assert.Equal(t, "hash-2", a.CodeHash())
	assert.Equal(t, 60, a.ResendCountdown(at))
	assert.Equal(t, StepAwaitingCode, a.Step())
}

func TestLoginAttempt_Clone(t *testing.T) {
	a := newAttempt()
	c := a.Clone()
	require.NoError(t, c.AcceptCode(true, t0))

	assert.Equal(t, StepAwaitingCode, a.Step())
	assert.Equal(t, StepAwaitingPassword, c.Step())
}
