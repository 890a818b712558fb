package entities

import (
	"context"
	"time"
)

// Kind is the type of a conversation
type Kind string

const (
	KindPrivate    Kind = "private"
	KindGroup      Kind = "group"
	KindSupergroup Kind = "supergroup"
	KindChannel    Kind = "channel"
)

// ParseKind maps an upstream chat type onto a Kind. Empty, "user" and
// unrecognised values are private.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindGroup, KindSupergroup, KindChannel:
		return Kind(raw)
	default:
		return KindPrivate
	}
}

// LastMessage summarises the most recent message of a conversation
type LastMessage struct {
	Text   string     `json:"text"`
	Date   *time.Time `json:"date,omitempty"`
	Sender string     `json:"sender,omitempty"`
}

// Conversation is a chat seen by one account
type Conversation struct {
	Key            string       `json:"key"`
	ChatID         string       `json:"chatId"`
	AccountID      string       `json:"accountId"`
	AccountPhone   string       `json:"accountPhone"`
	Title          string       `json:"title"`
	Kind           Kind         `json:"kind"`
	UnreadCount    int          `json:"unreadCount"`
	LastMessage    *LastMessage `json:"lastMessage,omitempty"`
	FirstMessageAt *time.Time   `json:"firstMessageAt,omitempty"`
}

// Message is a single chat message
type Message struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	IsIncoming bool       `json:"isIncoming"`
	IsRead     bool       `json:"isRead"`
	Type       string     `json:"type"`
	Sender     string     `json:"sender"`
}

// MessageSummary counts messages of a page by state
type MessageSummary struct {
	Total    int `json:"total"`
	Read     int `json:"read"`
	Unread   int `json:"unread"`
	Incoming int `json:"incoming"`
}

// MessagePage is the result of fetching messages of one conversation
type MessagePage struct {
	Key          string         `json:"key"`
	AccountPhone string         `json:"accountPhone"`
	ChatTitle    string         `json:"chatTitle"`
	Messages     []Message      `json:"messages"`
	Summary      MessageSummary `json:"summary"`
}

// Summarize counts messages by read and direction state
func Summarize(messages []Message) MessageSummary {
	summary := MessageSummary{Total: len(messages)}
	for _, m := range messages {
		if m.IsRead {
			summary.Read++
		} else {
			summary.Unread++
		}
		if m.IsIncoming {
			summary.Incoming++
		}
	}
	return summary
}

// AccountFailure names an account whose fetch failed during aggregation
type AccountFailure struct {
	AccountID string `json:"accountId"`
	Phone     string `json:"phone"`
	Error     string `json:"error"`
}

// DailyStat counts the conversations of one account that started or were active today
type DailyStat struct {
	AccountID    string `json:"accountId"`
	AccountPhone string `json:"accountPhone"`
	NewToday     int    `json:"newToday"`
	ActiveToday  int    `json:"activeToday"`
}

// Aggregation is the merged conversation view across an operator's accounts.
// Stats are computed in the background after the conversation set is assembled.
type Aggregation struct {
	Conversations []Conversation
	PartialErrors []AccountFailure

	stats     []DailyStat
	statsDone chan struct{}
}

// NewAggregation returns an aggregation whose stats are produced by compute in
// a separate goroutine
func NewAggregation(conversations []Conversation, failures []AccountFailure, compute func() []DailyStat) *Aggregation {
	a := &Aggregation{
		Conversations: conversations,
		PartialErrors: failures,
		statsDone:     make(chan struct{}),
	}

	go func() {
		defer close(a.statsDone)
		a.stats = compute()
	}()

	return a
}

// Stats waits for the daily stats or until ctx is done
func (a *Aggregation) Stats(ctx context.Context) ([]DailyStat, error) {
	select {
	case <-a.statsDone:
		return a.stats, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReadyStats returns the daily stats if they are already computed
func (a *Aggregation) ReadyStats() ([]DailyStat, bool) {
	select {
	case <-a.statsDone:
		return a.stats, true
	default:
		return nil, false
	}
}
