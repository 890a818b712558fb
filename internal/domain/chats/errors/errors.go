package errors

import (
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

var (
	ErrAccountNotFound   = pkgerrors.NewNotFoundError("account not found among authenticated accounts")
	ErrAllAccountsFailed = pkgerrors.NewServiceUnavailableError("conversations could not be fetched for any account")
	ErrMalformedKey      = pkgerrors.NewValidationError("malformed identifier")
	ErrEmptyOperatorID   = pkgerrors.NewValidationError("operator_id is required")
)
