package business

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/internal/domain/account/deps"
	"github.com/Conte777/operator-service/internal/domain/account/entities"
	accounterrors "github.com/Conte777/operator-service/internal/domain/account/errors"
	"github.com/Conte777/operator-service/internal/infrastructure/logger"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// UseCase implements the account directory
type UseCase struct {
	repo      deps.AccountRepository
	sessions  deps.SessionService
	publisher deps.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUseCase creates a new account directory use case
func NewUseCase(
	repo deps.AccountRepository,
	sessions deps.SessionService,
	publisher deps.EventPublisher,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger.With().Str("usecase", "account").Logger(),
		now:       time.Now,
	}
}

// ListAuthenticated returns the operator's authenticated accounts in creation order
func (u *UseCase) ListAuthenticated(ctx context.Context, operatorID string) ([]*entities.Account, error) {
	return u.repo.ListByOperator(ctx, operatorID, true)
}

// ListAll returns all of the operator's accounts in creation order
func (u *UseCase) ListAll(ctx context.Context, operatorID string) ([]*entities.Account, error) {
	return u.repo.ListByOperator(ctx, operatorID, false)
}

// AddOperator registers a new operator
func (u *UseCase) AddOperator(ctx context.Context, name string) (*entities.Operator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, accounterrors.ErrEmptyOperatorName
	}

	operator := &entities.Operator{Name: name}
	if err := u.repo.CreateOperator(ctx, operator); err != nil {
		return nil, err
	}

	u.logger.Info().
		Str("operator_id", operator.ID).
		Msg("Operator created")

	return operator, nil
}

// ListOperators returns all operators
func (u *UseCase) ListOperators(ctx context.Context) ([]*entities.Operator, error) {
	return u.repo.ListOperators(ctx)
}

// AddAccount attaches a pending account to the operator
func (u *UseCase) AddAccount(ctx context.Context, operatorID, phone, name string) (*entities.Account, error) {
	if operatorID == "" {
		return nil, accounterrors.ErrEmptyOperatorID
	}

	phone = entities.NormalizePhone(phone)
	if !phonePattern.MatchString(phone) {
		return nil, accounterrors.ErrInvalidPhone
	}

	if _, err := u.repo.GetOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	account := &entities.Account{
		OperatorID:  operatorID,
		PhoneNumber: phone,
		Name:        strings.TrimSpace(name),
	}
	if err := u.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	u.logger.Info().
		Str("operator_id", operatorID).
		Str("account_id", account.ID).
		Str("phone", logger.MaskPhone(phone)).
		Msg("Account added")

	return account, nil
}

// RemoveAccount logs the account out of the session service when it is
// authenticated, then deletes the record. Logout failures do not block removal.
func (u *UseCase) RemoveAccount(ctx context.Context, operatorID, accountID string) error {
	account, err := u.repo.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.OperatorID != operatorID {
		return accounterrors.ErrAccountNotFound
	}

	if account.IsAuthenticated {
		if err := u.sessions.Logout(ctx, account.PhoneNumber, operatorID); err != nil {
			u.logger.Warn().Err(err).
				Str("account_id", accountID).
				Str("phone", logger.MaskPhone(account.PhoneNumber)).
				Msg("Upstream logout failed, removing account anyway")
		}
	}

	if err := u.repo.DeleteAccount(ctx, accountID); err != nil {
		return err
	}

	event := entities.NewAccountEvent(entities.EventAccountRemoved, account, u.now())
	if err := u.publisher.PublishAccountEvent(ctx, event); err != nil {
		u.logger.Error().Err(err).
			Str("account_id", accountID).
			Msg("Failed to publish account removed event")
	}

	u.logger.Info().
		Str("operator_id", operatorID).
		Str("account_id", accountID).
		Msg("Account removed")

	return nil
}
