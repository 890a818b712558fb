package business

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Conte777/operator-service/config"
	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/domain/chats/deps"
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
	chatserrors "github.com/Conte777/operator-service/internal/domain/chats/errors"
	"github.com/Conte777/operator-service/internal/infrastructure/logger"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
)

// UseCase aggregates conversations and messages across an operator's accounts
type UseCase struct {
	directory     deps.AccountDirectory
	sessions      deps.SessionService
	metrics       *metrics.Metrics
	maxConcurrent int
	defaultLimit  int
	maxLimit      int
	location      *time.Location
	logger        zerolog.Logger
	now           func() time.Time
}

// NewUseCase creates a new aggregation engine
func NewUseCase(
	directory deps.AccountDirectory,
	sessions deps.SessionService,
	m *metrics.Metrics,
	cfg *config.AggregationConfig,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		directory:     directory,
		sessions:      sessions,
		metrics:       m,
		maxConcurrent: cfg.MaxConcurrent,
		defaultLimit:  cfg.DefaultMessages,
		maxLimit:      cfg.MaxMessages,
		location:      cfg.Location(),
		logger:        logger.With().Str("usecase", "chats").Logger(),
		now:           time.Now,
	}
}

type accountResult struct {
	chats []upstream.RawChat
	err   error
}

// FetchConversations fetches the conversations of every target account
// concurrently and merges them in account order. A failing account is reported
// in PartialErrors; the call fails only when every target fails.
func (u *UseCase) FetchConversations(ctx context.Context, operatorID, accountFilter string, loc *time.Location) (*entities.Aggregation, error) {
	if operatorID == "" {
		return nil, chatserrors.ErrEmptyOperatorID
	}
	if loc == nil {
		loc = u.location
	}

	targets, err := u.targets(ctx, operatorID, accountFilter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]accountResult, len(targets))

	var g errgroup.Group
	if u.maxConcurrent > 0 {
		g.SetLimit(u.maxConcurrent)
	}
	for i, account := range targets {
		g.Go(func() error {
			chats, err := u.sessions.ListConversations(ctx, operatorID, account.PhoneNumber)
			results[i] = accountResult{chats: chats, err: err}
			return nil
		})
	}
	_ = g.Wait()

	conversations := make([]entities.Conversation, 0)
	var failures []entities.AccountFailure
	seen := make(map[string]struct{})

	for i, account := range targets {
		res := results[i]
		if res.err != nil {
			u.logger.Warn().
				Err(res.err).
				Str("operator_id", operatorID).
				Str("phone", logger.MaskPhone(account.PhoneNumber)).
				Msg("Failed to fetch conversations for account")
			failures = append(failures, entities.AccountFailure{
				AccountID: account.ID,
				Phone:     account.PhoneNumber,
				Error:     res.err.Error(),
			})
			continue
		}

		for _, raw := range res.chats {
			if raw.ID == "" {
				continue
			}
			conversation := normalizeConversation(account, raw)
			if _, dup := seen[conversation.Key]; dup {
				continue
			}
			seen[conversation.Key] = struct{}{}
			conversations = append(conversations, conversation)
		}
	}

	u.metrics.RecordAggregation(len(targets), len(failures), time.Since(start).Seconds())

	if len(targets) > 0 && len(failures) == len(targets) {
		if len(targets) == 1 {
			return nil, results[0].err
		}
		return nil, chatserrors.ErrAllAccountsFailed
	}

	u.logger.Debug().
		Str("operator_id", operatorID).
		Int("accounts", len(targets)).
		Int("conversations", len(conversations)).
		Int("failures", len(failures)).
		Msg("Conversations aggregated")

	now := u.now()
	return entities.NewAggregation(conversations, failures, func() []entities.DailyStat {
		return entities.ComputeDailyStats(conversations, targets, now, loc)
	}), nil
}

// FetchMessages returns up to limit messages of the conversation identified by
// conversationKey, in upstream order
func (u *UseCase) FetchMessages(ctx context.Context, operatorID, conversationKey string, limit int) (*entities.MessagePage, error) {
	if operatorID == "" {
		return nil, chatserrors.ErrEmptyOperatorID
	}

	phone, chatID, err := entities.SplitKey(conversationKey)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = u.defaultLimit
	}
	if u.maxLimit > 0 && limit > u.maxLimit {
		limit = u.maxLimit
	}

	targets, err := u.targets(ctx, operatorID, phone)
	if err != nil {
		return nil, err
	}
	account := targets[0]

	result, err := u.sessions.ListMessages(ctx, operatorID, account.PhoneNumber, chatID, limit)
	if err != nil {
		return nil, err
	}

	raw := result.Messages
	if len(raw) > limit {
		raw = raw[:limit]
	}

	messages := make([]entities.Message, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, normalizeMessage(m))
	}

	title := result.ChatTitle
	if title == "" {
		title = untitledChat
	}

	return &entities.MessagePage{
		Key:          conversationKey,
		AccountPhone: account.PhoneNumber,
		ChatTitle:    title,
		Messages:     messages,
		Summary:      entities.Summarize(messages),
	}, nil
}

// targets returns the authenticated accounts of the operator, narrowed to the
// account with phone when it is not empty
func (u *UseCase) targets(ctx context.Context, operatorID, phone string) ([]*accountentities.Account, error) {
	accounts, err := u.directory.ListAuthenticated(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	phone = accountentities.NormalizePhone(phone)
	if phone == "" {
		return accounts, nil
	}

	for _, account := range accounts {
		if account.PhoneNumber == phone {
			return []*accountentities.Account{account}, nil
		}
	}

	return nil, chatserrors.ErrAccountNotFound
}
