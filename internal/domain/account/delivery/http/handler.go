package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/operator-service/internal/domain/account/deps"
	"github.com/Conte777/operator-service/internal/domain/account/dto"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
	"github.com/Conte777/operator-service/pkg/httputil"
)

// AccountHandler handles operator and account HTTP requests
type AccountHandler struct {
	directory deps.DirectoryService
	mapper    *pkgerrors.Mapper
	logger    zerolog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(directory deps.DirectoryService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		directory: directory,
		mapper:    mapper,
		logger:    logger.With().Str("handler", "account").Logger(),
	}
}

// CreateOperator handles POST /api/v1/operators
func (h *AccountHandler) CreateOperator(ctx *fasthttp.RequestCtx) {
	var req dto.CreateOperatorRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	operator, err := h.directory.AddOperator(ctx, req.Name)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponseWithStatus(ctx, operator, fasthttp.StatusCreated)
}

// ListOperators handles GET /api/v1/operators
func (h *AccountHandler) ListOperators(ctx *fasthttp.RequestCtx) {
	operators, err := h.directory.ListOperators(ctx)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, operators)
}

// ListAccounts handles GET /api/v1/operators/{operator_id}/accounts
func (h *AccountHandler) ListAccounts(ctx *fasthttp.RequestCtx) {
	operatorID := userValue(ctx, "operator_id")

	list := h.directory.ListAll
	if string(ctx.QueryArgs().Peek("authenticated")) == "true" {
		list = h.directory.ListAuthenticated
	}

	accounts, err := list(ctx, operatorID)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, accounts)
}

// CreateAccount handles POST /api/v1/operators/{operator_id}/accounts
func (h *AccountHandler) CreateAccount(ctx *fasthttp.RequestCtx) {
	var req dto.CreateAccountRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	account, err := h.directory.AddAccount(ctx, userValue(ctx, "operator_id"), req.PhoneNumber, req.Name)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponseWithStatus(ctx, account, fasthttp.StatusCreated)
}

// DeleteAccount handles DELETE /api/v1/operators/{operator_id}/accounts/{account_id}
func (h *AccountHandler) DeleteAccount(ctx *fasthttp.RequestCtx) {
	err := h.directory.RemoveAccount(ctx, userValue(ctx, "operator_id"), userValue(ctx, "account_id"))
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, map[string]string{"status": "removed"})
}

func userValue(ctx *fasthttp.RequestCtx, key string) string {
	value, _ := ctx.UserValue(key).(string)
	return value
}
