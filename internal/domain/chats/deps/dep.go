package deps

import (
	"context"
	"time"

	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
)

// AccountDirectory resolves the fan-out set of an operator
type AccountDirectory interface {
	ListAuthenticated(ctx context.Context, operatorID string) ([]*accountentities.Account, error)
}

// SessionService fetches conversations and messages from the session service
type SessionService interface {
	ListConversations(ctx context.Context, operatorID, phone string) ([]upstream.RawChat, error)
	ListMessages(ctx context.Context, operatorID, phone, chatID string, limit int) (*upstream.MessagesResult, error)
}

// ChatService aggregates conversations across an operator's accounts
type ChatService interface {
	// FetchConversations fans out over the authenticated accounts, or only the
	// one with phone accountFilter when it is not empty. A nil loc uses the
	// configured timezone for daily stats.
	FetchConversations(ctx context.Context, operatorID, accountFilter string, loc *time.Location) (*entities.Aggregation, error)
	FetchMessages(ctx context.Context, operatorID, conversationKey string, limit int) (*entities.MessagePage, error)
}
