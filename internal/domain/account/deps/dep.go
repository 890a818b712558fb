package deps

import (
	"context"
	"time"

	"github.com/Conte777/operator-service/internal/domain/account/entities"
)

// AccountRepository is the record store holding operators and their accounts
type AccountRepository interface {
	CreateOperator(ctx context.Context, operator *entities.Operator) error
	GetOperator(ctx context.Context, id string) (*entities.Operator, error)
	ListOperators(ctx context.Context) ([]*entities.Operator, error)

	CreateAccount(ctx context.Context, account *entities.Account) error
	GetAccount(ctx context.Context, id string) (*entities.Account, error)
	GetByOperatorAndPhone(ctx context.Context, operatorID, phone string) (*entities.Account, error)
	// ListByOperator returns accounts in creation order
	ListByOperator(ctx context.Context, operatorID string, onlyAuthenticated bool) ([]*entities.Account, error)
	// MarkAuthenticated sets the flag, replaces the session payload (nil clears it) and sets last-active
	MarkAuthenticated(ctx context.Context, accountID string, sessionData *string, at time.Time) error
	DeleteAccount(ctx context.Context, id string) error
}

// SessionService terminates upstream sessions of removed accounts
type SessionService interface {
	Logout(ctx context.Context, phone, operatorID string) error
}

// EventPublisher publishes account lifecycle events
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event entities.AccountEvent) error
}

// DirectoryService exposes operators and accounts to other domains and delivery
type DirectoryService interface {
	ListAuthenticated(ctx context.Context, operatorID string) ([]*entities.Account, error)
	ListAll(ctx context.Context, operatorID string) ([]*entities.Account, error)
	AddOperator(ctx context.Context, name string) (*entities.Operator, error)
	ListOperators(ctx context.Context) ([]*entities.Operator, error)
	AddAccount(ctx context.Context, operatorID, phone, name string) (*entities.Account, error)
	RemoveAccount(ctx context.Context, operatorID, accountID string) error
}
