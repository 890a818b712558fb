package errors

import (
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

var (
	ErrAttemptNotFound   = pkgerrors.NewNotFoundError("no login in progress for this phone number")
	ErrInvalidStep       = pkgerrors.NewConflictError("login is not at the expected step")
	ErrInvalidCodeLength = pkgerrors.NewValidationError("code must be exactly 5 characters")
	ErrEmptyPassword     = pkgerrors.NewValidationError("password is required")
	ErrEmptyPhone        = pkgerrors.NewValidationError("phone number is required")
	ErrTooManyAttempts   = pkgerrors.NewServiceUnavailableError("too many logins in progress, try again later")
)
