package business

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	accounterrors "github.com/Conte777/operator-service/internal/domain/account/errors"
	"github.com/Conte777/operator-service/internal/domain/auth/deps"
	"github.com/Conte777/operator-service/internal/domain/auth/entities"
	autherrors "github.com/Conte777/operator-service/internal/domain/auth/errors"
	"github.com/Conte777/operator-service/internal/infrastructure/logger"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

// UseCase orchestrates the phone, code and password login handshake
type UseCase struct {
	sessions  deps.SessionService
	accounts  deps.AccountStore
	attempts  deps.AttemptStore
	publisher deps.EventPublisher
	metrics   *metrics.Metrics
	cooldown  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUseCase creates a new login orchestrator
func NewUseCase(
	sessions deps.SessionService,
	accounts deps.AccountStore,
	attempts deps.AttemptStore,
	publisher deps.EventPublisher,
	m *metrics.Metrics,
	cooldown time.Duration,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		sessions:  sessions,
		accounts:  accounts,
		attempts:  attempts,
		publisher: publisher,
		metrics:   m,
		cooldown:  cooldown,
		logger:    logger.With().Str("usecase", "auth").Logger(),
		now:       time.Now,
	}
}

// SubmitPhone requests a login code for the operator's account and starts an
// attempt. A live attempt for the same phone is a conflict: the caller resends
// or cancels it instead. A failed send leaves the attempt unstarted.
func (u *UseCase) SubmitPhone(ctx context.Context, operatorID, phone string) (*entities.LoginAttempt, error) {
	phone = accountentities.NormalizePhone(phone)
	if phone == "" {
		return nil, autherrors.ErrEmptyPhone
	}

	account, err := u.accounts.GetByOperatorAndPhone(ctx, operatorID, phone)
	if err != nil {
		return nil, err
	}

	log := u.logger.With().Str("operator_id", operatorID).Str("phone", logger.MaskPhone(phone)).Logger()

	if existing, err := u.attempts.Load(operatorID, phone); err == nil {
		log.Warn().Str("attempt_id", existing.ID).Str("step", string(existing.Step())).Msg("Login already in progress")
		u.metrics.RecordLoginStep("phone", "conflict")
		return nil, autherrors.ErrInvalidStep
	}

	result, err := u.sessions.SendCode(ctx, phone, operatorID)
	if err != nil {
		log.Warn().Err(err).Msg("Send code failed")
		u.metrics.RecordLoginStep("phone", "failure")
		return nil, err
	}

	attempt := entities.NewLoginAttempt(uuid.NewString(), operatorID, phone, account.ID, result.PhoneCodeHash, u.now(), u.cooldown)
	if err := u.attempts.Save(attempt); err != nil {
		return nil, err
	}
	u.metrics.SetActiveAttempts(u.attempts.Count())
	u.metrics.RecordLoginStep("phone", "success")

	log.Info().Str("attempt_id", attempt.ID).Msg("Login code sent")

	return attempt, nil
}

// SubmitCode verifies the code of an attempt awaiting one
func (u *UseCase) SubmitCode(ctx context.Context, operatorID, phone, code string) (*entities.LoginAttempt, error) {
	phone = accountentities.NormalizePhone(phone)
	if utf8.RuneCountInString(code) != entities.CodeLength {
		return nil, autherrors.ErrInvalidCodeLength
	}

	attempt, err := u.attempts.Load(operatorID, phone)
	if err != nil {
		return nil, err
	}
	if attempt.Step() != entities.StepAwaitingCode {
		return nil, autherrors.ErrInvalidStep
	}

	result, err := u.sessions.VerifyCode(ctx, phone, code, attempt.CodeHash(), operatorID)
	if err != nil {
		u.logger.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("Code verification failed")
		u.metrics.RecordLoginStep("code", "failure")
		return nil, err
	}

	if err := attempt.AcceptCode(result.TwoFactorRequired, u.now()); err != nil {
		return nil, err
	}

	if attempt.Step() == entities.StepAwaitingPassword {
		if err := u.attempts.Save(attempt); err != nil {
			return nil, err
		}
		u.metrics.RecordLoginStep("code", "two_factor")
		u.logger.Info().Str("attempt_id", attempt.ID).Msg("Two-factor password required")
		return attempt, nil
	}

	u.metrics.RecordLoginStep("code", "success")
	return u.complete(ctx, attempt, result.SessionData)
}

// ResendCode requests a fresh code once the countdown has elapsed
func (u *UseCase) ResendCode(ctx context.Context, operatorID, phone string) (*entities.LoginAttempt, error) {
	phone = accountentities.NormalizePhone(phone)

	attempt, err := u.attempts.Load(operatorID, phone)
	if err != nil {
		return nil, err
	}
	if attempt.Step() != entities.StepAwaitingCode {
		return nil, autherrors.ErrInvalidStep
	}

	if remaining := attempt.ResendCountdown(u.now()); remaining > 0 {
		return nil, pkgerrors.NewValidationErrorf("code can be resent in %d seconds", remaining)
	}

	result, err := u.sessions.SendCode(ctx, phone, operatorID)
	if err != nil {
		u.logger.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("Resend code failed")
		u.metrics.RecordLoginStep("resend", "failure")
		return nil, err
	}

	if err := attempt.Resent(result.PhoneCodeHash, u.now(), u.cooldown); err != nil {
		return nil, err
	}
	if err := u.attempts.Save(attempt); err != nil {
		return nil, err
	}
	u.metrics.RecordLoginStep("resend", "success")

	return attempt, nil
}

// SubmitPassword verifies the two-factor password of an attempt awaiting one
func (u *UseCase) SubmitPassword(ctx context.Context, operatorID, phone, password string) (*entities.LoginAttempt, error) {
	phone = accountentities.NormalizePhone(phone)
	if password == "" {
		return nil, autherrors.ErrEmptyPassword
	}

	attempt, err := u.attempts.Load(operatorID, phone)
	if err != nil {
		return nil, err
	}
	if attempt.Step() != entities.StepAwaitingPassword {
		return nil, autherrors.ErrInvalidStep
	}

	result, err := u.sessions.VerifyPassword(ctx, phone, password, operatorID)
	if err != nil {
		u.logger.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("Password verification failed")
		u.metrics.RecordLoginStep("password", "failure")
		return nil, err
	}

	if err := attempt.AcceptPassword(u.now()); err != nil {
		return nil, err
	}
	u.metrics.RecordLoginStep("password", "success")

	return u.complete(ctx, attempt, result.SessionData)
}

// Status returns a snapshot of the attempt for (operatorID, phone)
func (u *UseCase) Status(_ context.Context, operatorID, phone string) (*entities.LoginAttempt, error) {
	return u.attempts.Load(operatorID, accountentities.NormalizePhone(phone))
}

// Cancel abandons the attempt for (operatorID, phone)
func (u *UseCase) Cancel(_ context.Context, operatorID, phone string) error {
	if !u.attempts.Delete(operatorID, accountentities.NormalizePhone(phone)) {
		return autherrors.ErrAttemptNotFound
	}
	u.metrics.SetActiveAttempts(u.attempts.Count())
	return nil
}

// complete persists the session of a finished attempt and drops it from the store
func (u *UseCase) complete(ctx context.Context, attempt *entities.LoginAttempt, sessionData json.RawMessage) (*entities.LoginAttempt, error) {
	now := u.now()

	err := u.accounts.MarkAuthenticated(ctx, attempt.AccountID, sessionPayload(sessionData), now)
	if errors.Is(err, accounterrors.ErrAccountNotFound) {
		u.attempts.Delete(attempt.OperatorID, attempt.Phone)
		u.metrics.SetActiveAttempts(u.attempts.Count())
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	u.attempts.Delete(attempt.OperatorID, attempt.Phone)
	u.metrics.SetActiveAttempts(u.attempts.Count())

	event := accountentities.AccountEvent{
		Type:        accountentities.EventAccountAuthenticated,
		OperatorID:  attempt.OperatorID,
		AccountID:   attempt.AccountID,
		PhoneNumber: attempt.Phone,
		Timestamp:   now.UTC(),
	}
	if err := u.publisher.PublishAccountEvent(ctx, event); err != nil {
		u.logger.Error().Err(err).Str("account_id", attempt.AccountID).Msg("Failed to publish account authenticated event")
	}

	u.logger.Info().
		Str("attempt_id", attempt.ID).
		Str("account_id", attempt.AccountID).
		Str("phone", logger.MaskPhone(attempt.Phone)).
		Msg("Account authenticated")

	return attempt, nil
}

// sessionPayload returns the serialized session, or nil when the session service sent none
func sessionPayload(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	payload := string(trimmed)
	return &payload
}
