package entities

import (
	"strings"
	"time"
)

// Operator is a human user owning a set of messaging accounts
type Operator struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is a Telegram account attached to an operator
type Account struct {
	ID              string     `json:"id"`
	OperatorID      string     `json:"operatorId"`
	PhoneNumber     string     `json:"phoneNumber"`
	Name            string     `json:"name"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	SessionData     *string    `json:"-"`
	LastActive      *time.Time `json:"lastActive,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Account lifecycle event types
const (
	EventAccountAuthenticated = "account_authenticated"
	EventAccountRemoved       = "account_removed"
)

// AccountEvent is published whenever an account is authenticated or removed
type AccountEvent struct {
	Type        string    `json:"type"`
	OperatorID  string    `json:"operator_id"`
	AccountID   string    `json:"account_id"`
	PhoneNumber string    `json:"phone_number"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewAccountEvent builds an event of eventType for account
func NewAccountEvent(eventType string, account *Account, at time.Time) AccountEvent {
	return AccountEvent{
		Type:        eventType,
		OperatorID:  account.OperatorID,
		AccountID:   account.ID,
		PhoneNumber: account.PhoneNumber,
		Timestamp:   at.UTC(),
	}
}

// NormalizePhone strips spaces, dashes and parentheses from a phone number
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
