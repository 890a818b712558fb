package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Conte777/operator-service/internal/domain/account/deps"
	"github.com/Conte777/operator-service/internal/domain/account/entities"
	accounterrors "github.com/Conte777/operator-service/internal/domain/account/errors"
)

// Repository is an in-memory implementation of deps.AccountRepository.
// Slices keep insertion order, which doubles as creation order.
type Repository struct {
	mu        sync.RWMutex
	operators []*entities.Operator
	accounts  []*entities.Account
	now       func() time.Time
}

// NewRepository creates a new in-memory account repository
func NewRepository() deps.AccountRepository {
	return &Repository{now: time.Now}
}

func (r *Repository) CreateOperator(_ context.Context, operator *entities.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := &entities.Operator{
		ID:        uuid.NewString(),
		Name:      operator.Name,
		CreatedAt: r.now(),
	}
	r.operators = append(r.operators, created)

	*operator = *created
	return nil
}

func (r *Repository) GetOperator(_ context.Context, id string) (*entities.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, op := range r.operators {
		if op.ID == id {
			copied := *op
			return &copied, nil
		}
	}
	return nil, accounterrors.ErrOperatorNotFound
}

func (r *Repository) ListOperators(_ context.Context) ([]*entities.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Operator, 0, len(r.operators))
	for _, op := range r.operators {
		copied := *op
		out = append(out, &copied)
	}
	return out, nil
}

func (r *Repository) CreateAccount(_ context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasOperator(account.OperatorID) {
		return accounterrors.ErrOperatorNotFound
	}
	for _, existing := range r.accounts {
		if existing.PhoneNumber == account.PhoneNumber {
			return accounterrors.ErrPhoneTaken
		}
	}

	now := r.now()
	created := &entities.Account{
		ID:          uuid.NewString(),
		OperatorID:  account.OperatorID,
		PhoneNumber: account.PhoneNumber,
		Name:        account.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.accounts = append(r.accounts, created)

	*account = *copyAccount(created)
	return nil
}

func (r *Repository) GetAccount(_ context.Context, id string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.ID == id {
			return copyAccount(a), nil
		}
	}
	return nil, accounterrors.ErrAccountNotFound
}

func (r *Repository) GetByOperatorAndPhone(_ context.Context, operatorID, phone string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.OperatorID == operatorID && a.PhoneNumber == phone {
			return copyAccount(a), nil
		}
	}
	return nil, accounterrors.ErrAccountNotFound
}

func (r *Repository) ListByOperator(_ context.Context, operatorID string, onlyAuthenticated bool) ([]*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Account, 0)
	for _, a := range r.accounts {
		if a.OperatorID != operatorID || (onlyAuthenticated && !a.IsAuthenticated) {
			continue
		}
		out = append(out, copyAccount(a))
	}
	return out, nil
}

func (r *Repository) MarkAuthenticated(_ context.Context, accountID string, sessionData *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.ID != accountID {
			continue
		}
		a.IsAuthenticated = true
		a.SessionData = nil
		if sessionData != nil {
			data := *sessionData
			a.SessionData = &data
		}
		lastActive := at
		a.LastActive = &lastActive
		a.UpdatedAt = at
		return nil
	}
	return accounterrors.ErrAccountNotFound
}

func (r *Repository) DeleteAccount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.accounts {
		if a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return accounterrors.ErrAccountNotFound
}

func (r *Repository) hasOperator(id string) bool {
	for _, op := range r.operators {
		if op.ID == id {
			return true
		}
	}
	return false
}

func copyAccount(a *entities.Account) *entities.Account {
	copied := *a
	if a.SessionData != nil {
		data := *a.SessionData
		copied.SessionData = &data
	}
	if a.LastActive != nil {
		at := *a.LastActive
		copied.LastActive = &at
	}
	return &copied
}
