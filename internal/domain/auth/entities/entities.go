package entities

import (
	"time"

	autherrors "github.com/Conte777/operator-service/internal/domain/auth/errors"
)

// CodeLength is the exact number of characters of a login code
const CodeLength = 5

// Step is the position of a login attempt in the handshake
type Step string

const (
	StepAwaitingCode     Step = "awaiting_code"
	StepAwaitingPassword Step = "awaiting_password"
	StepDone             Step = "done"
)

// LoginAttempt tracks one in-flight login for an (operator, phone) pair.
// The step only moves forward through the transition methods.
type LoginAttempt struct {
	ID         string
	OperatorID string
	Phone      string
	AccountID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	step     Step
	codeHash string
	resendAt time.Time
}

// NewLoginAttempt starts an attempt after the session service accepted the phone number
func NewLoginAttempt(id, operatorID, phone, accountID, codeHash string, now time.Time, cooldown time.Duration) *LoginAttempt {
	return &LoginAttempt{
		ID:         id,
		OperatorID: operatorID,
		Phone:      phone,
		AccountID:  accountID,
		CreatedAt:  now,
		UpdatedAt:  now,
		step:       StepAwaitingCode,
		codeHash:   codeHash,
		resendAt:   now.Add(cooldown),
	}
}

// Step returns the current step
func (a *LoginAttempt) Step() Step {
	return a.step
}

// CodeHash returns the opaque hash tying the code to its send request
func (a *LoginAttempt) CodeHash() string {
	return a.codeHash
}

// ResendAt returns the earliest moment a new code may be requested
func (a *LoginAttempt) ResendAt() time.Time {
	return a.resendAt
}

// ResendCountdown returns whole seconds until resend is allowed, rounded up
func (a *LoginAttempt) ResendCountdown(now time.Time) int {
	remaining := a.resendAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// AcceptCode records a verified code. The attempt moves to awaiting_password
// when the account has two-factor protection, otherwise it is done.
func (a *LoginAttempt) AcceptCode(twoFactorRequired bool, now time.Time) error {
	if a.step != StepAwaitingCode {
		return autherrors.ErrInvalidStep
	}

	a.step = StepDone
	if twoFactorRequired {
		a.step = StepAwaitingPassword
	}
	a.UpdatedAt = now
	return nil
}

// Resent stores the hash of a freshly sent code and restarts the countdown
func (a *LoginAttempt) Resent(codeHash string, now time.Time, cooldown time.Duration) error {
	if a.step != StepAwaitingCode {
		return autherrors.ErrInvalidStep
	}

	a.codeHash = codeHash
	a.resendAt = now.Add(cooldown)
	a.UpdatedAt = now
	return nil
}

// AcceptPassword records a verified two-factor password
func (a *LoginAttempt) AcceptPassword(now time.Time) error {
	if a.step != StepAwaitingPassword {
		return autherrors.ErrInvalidStep
	}

	a.step = StepDone
	a.UpdatedAt = now
	return nil
}

// Clone returns an independent copy
func (a *LoginAttempt) Clone() *LoginAttempt {
	copied := *a
	return &copied
}
