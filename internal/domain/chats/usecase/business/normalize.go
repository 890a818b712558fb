package business

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	accountentities "github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
)

const (
	untitledConversation = "Untitled"
	untitledChat         = "Chat"
)

// naive layouts are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func normalizeConversation(account *accountentities.Account, raw upstream.RawChat) entities.Conversation {
	title := strings.TrimSpace(raw.Name)
	if title == "" {
		title = untitledConversation
	}

	unread := raw.UnreadCount
	if unread < 0 {
		unread = 0
	}

	conversation := entities.Conversation{
		Key:            entities.ComposeKey(account.PhoneNumber, string(raw.ID)),
		ChatID:         string(raw.ID),
		AccountID:      account.ID,
		AccountPhone:   account.PhoneNumber,
		Title:          title,
		Kind:           entities.ParseKind(raw.Type),
		UnreadCount:    unread,
		FirstMessageAt: parseTimestamp(raw.FirstMessageDate),
	}

	if raw.LastMessage != nil {
		conversation.LastMessage = &entities.LastMessage{
			Text: raw.LastMessage.Text,
			Date: parseTimestamp(raw.LastMessage.Date),
		}
		if conversation.Kind == entities.KindPrivate {
			conversation.LastMessage.Sender = title
		}
	}

	return conversation
}

func normalizeMessage(raw upstream.RawMessage) entities.Message {
	return entities.Message{
		ID:         string(raw.ID),
		Text:       raw.Text,
		Timestamp:  parseTimestamp(raw.Timestamp),
		IsIncoming: raw.IsIncoming,
		IsRead:     raw.IsRead,
		Type:       raw.Type,
		Sender:     raw.Sender,
	}
}

// parseTimestamp accepts an RFC 3339 or naive ISO string, or unix seconds as a
// number or numeric string. Anything else is treated as absent.
func parseTimestamp(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	value := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds <= 0 {
			return nil
		}
		t := time.Unix(seconds, 0).UTC()
		return &t
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
			return nil
		}
		t := time.Unix(0, int64(seconds*float64(time.Second))).UTC()
		return &t
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	return nil
}
