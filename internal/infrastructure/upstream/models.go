package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Session service endpoints
const (
	EndpointSendCode       = "/api/send_code"
	EndpointVerifyCode     = "/api/verify_code"
	EndpointVerifyPassword = "/api/verify_password"
	EndpointLogout         = "/api/logout"
	EndpointChats          = "/api/chats"
	EndpointChatMessages   = "/api/chat_messages"
)

// FlexibleID decodes an identifier sent either as a JSON number or a JSON string
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the identifier text
func (id FlexibleID) String() string {
	return string(id)
}

// envelope holds the fields every session service response may carry
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type accountRequest struct {
	Operator string `json:"operator"`
	Account  string `json:"account"`
}

type sendCodeRequest struct {
	Phone    string `json:"phone"`
	Operator string `json:"operator"`
	Account  string `json:"account"`
}

type verifyCodeRequest struct {
	Phone         string `json:"phone"`
	Code          string `json:"code"`
	PhoneCodeHash string `json:"phone_code_hash,omitempty"`
	Operator      string `json:"operator"`
	Account       string `json:"account"`
}

type verifyPasswordRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Operator string `json:"operator"`
	Account  string `json:"account"`
}

type chatMessagesRequest struct {
	Operator string `json:"operator"`
	Account  string `json:"account"`
	ChatID   string `json:"chat_id"`
	Limit    int    `json:"limit"`
}

// SendCodeResult is the outcome of a successful send-code call
type SendCodeResult struct {
	Message       string `json:"message"`
	PhoneCodeHash string `json:"phone_code_hash"`
}

// VerifyCodeResult is the outcome of a successful verify-code call
type VerifyCodeResult struct {
	TwoFactorRequired bool            `json:"two_factor_required"`
	SessionData       json.RawMessage `json:"session_data"`
}

// VerifyPasswordResult is the outcome of a successful verify-password call
type VerifyPasswordResult struct {
	SessionData json.RawMessage `json:"session_data"`
}

// RawLastMessage is the last message summary inside a raw chat
type RawLastMessage struct {
	Text string          `json:"text"`
	Date json.RawMessage `json:"date"`
}

// RawChat is a conversation as returned by the session service
type RawChat struct {
	ID               FlexibleID      `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	UnreadCount      int             `json:"unread_count"`
	LastMessage      *RawLastMessage `json:"last_message"`
	FirstMessageDate json.RawMessage `json:"first_message_date"`
}

// RawMessage is a message as returned by the session service
type RawMessage struct {
	ID         FlexibleID      `json:"id"`
	Text       string          `json:"text"`
	Timestamp  json.RawMessage `json:"timestamp"`
	IsIncoming bool            `json:"isIncoming"`
	IsRead     bool            `json:"isRead"`
	Type       string          `json:"type"`
	Sender     string          `json:"sender"`
}

type chatsResponse struct {
	Chats []RawChat `json:"chats"`
}

// MessagesResult is the message page of one chat
type MessagesResult struct {
	Messages  []RawMessage `json:"messages"`
	ChatTitle string       `json:"chatTitle"`
}
