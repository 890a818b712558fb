package errors

import (
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

var (
	ErrOperatorNotFound  = pkgerrors.NewNotFoundError("operator not found")
	ErrAccountNotFound   = pkgerrors.NewNotFoundError("account not found")
	ErrPhoneTaken        = pkgerrors.NewConflictError("phone number is already registered")
	ErrInvalidPhone      = pkgerrors.NewValidationError("phone number must contain 10 to 15 digits with an optional leading +")
	ErrEmptyOperatorName = pkgerrors.NewValidationError("operator name is required")
	ErrEmptyOperatorID   = pkgerrors.NewValidationError("operator_id is required")
)
