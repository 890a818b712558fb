package deps

import (
	"context"
	"time"

	accountdeps "github.com/Conte777/operator-service/internal/domain/account/deps"
	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/domain/auth/entities"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
)

// SessionService drives the login handshake against the session service
type SessionService interface {
	SendCode(ctx context.Context, phone, operatorID string) (*upstream.SendCodeResult, error)
	VerifyCode(ctx context.Context, phone, code, codeHash, operatorID string) (*upstream.VerifyCodeResult, error)
	VerifyPassword(ctx context.Context, phone, password, operatorID string) (*upstream.VerifyPasswordResult, error)
}

// AccountStore resolves accounts and records completed logins
type AccountStore interface {
	GetByOperatorAndPhone(ctx context.Context, operatorID, phone string) (*accountentities.Account, error)
	MarkAuthenticated(ctx context.Context, accountID string, sessionData *string, at time.Time) error
}

// AttemptStore keeps in-flight login attempts keyed by (operator, phone).
// Load and Save work on copies.
type AttemptStore interface {
	Load(operatorID, phone string) (*entities.LoginAttempt, error)
	Save(attempt *entities.LoginAttempt) error
	Delete(operatorID, phone string) bool
	Count() int
}

// EventPublisher publishes account lifecycle events
type EventPublisher = accountdeps.EventPublisher

// AuthService is the login orchestrator exposed to delivery
type AuthService interface {
	SubmitPhone(ctx context.Context, operatorID, phone string) (*entities.LoginAttempt, error)
	SubmitCode(ctx context.Context, operatorID, phone, code string) (*entities.LoginAttempt, error)
	ResendCode(ctx context.Context, operatorID, phone string) (*entities.LoginAttempt, error)
	SubmitPassword(ctx context.Context, operatorID, phone, password string) (*entities.LoginAttempt, error)
	Status(ctx context.Context, operatorID, phone string) (*entities.LoginAttempt, error)
	Cancel(ctx context.Context, operatorID, phone string) error
}
