package dto

import (
	"time"

	"github.com/Conte777/operator-service/internal/domain/auth/entities"
)

// PhoneRequest is the body of POST .../auth/code and .../auth/code/resend
type PhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// CodeRequest is the body of POST .../auth/code/verify
type CodeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// PasswordRequest is the body of POST .../auth/password
type PasswordRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// AttemptResponse describes the state of a login attempt
type AttemptResponse struct {
	AttemptID     string    `json:"attempt_id"`
	AccountID     string    `json:"account_id"`
	PhoneNumber   string    `json:"phone_number"`
	Step          string    `json:"step"`
	ResendIn      int       `json:"resend_in"`
	Authenticated bool      `json:"authenticated"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAttemptResponse converts an attempt into its response
func NewAttemptResponse(attempt *entities.LoginAttempt, now time.Time) AttemptResponse {
	resp := AttemptResponse{
		AttemptID:     attempt.ID,
		AccountID:     attempt.AccountID,
		PhoneNumber:   attempt.Phone,
		Step:          string(attempt.Step()),
		Authenticated: attempt.Step() == entities.StepDone,
		UpdatedAt:     attempt.UpdatedAt,
	}
	if attempt.Step() == entities.StepAwaitingCode {
		resp.ResendIn = attempt.ResendCountdown(now)
	}
	return resp
}
