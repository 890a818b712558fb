package http

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/operator-service/internal/domain/auth/deps"
	"github.com/Conte777/operator-service/internal/domain/auth/dto"
	"github.com/Conte777/operator-service/internal/domain/auth/entities"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
	"github.com/Conte777/operator-service/pkg/httputil"
)

// AuthHandler handles login HTTP requests
type AuthHandler struct {
	service deps.AuthService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service deps.AuthService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// SendCode handles POST /api/v1/operators/{operator_id}/auth/code
func (h *AuthHandler) SendCode(ctx *fasthttp.RequestCtx) {
	var req dto.PhoneRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	attempt, err := h.service.SubmitPhone(ctx, operatorID(ctx), req.PhoneNumber)
	h.writeAttempt(ctx, attempt, err)
}

// VerifyCode handles POST /api/v1/operators/{operator_id}/auth/code/verify
func (h *AuthHandler) VerifyCode(ctx *fasthttp.RequestCtx) {
	var req dto.CodeRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	attempt, err := h.service.SubmitCode(ctx, operatorID(ctx), req.PhoneNumber, req.Code)
	h.writeAttempt(ctx, attempt, err)
}

// ResendCode handles POST /api/v1/operators/{operator_id}/auth/code/resend
func (h *AuthHandler) ResendCode(ctx *fasthttp.RequestCtx) {
	var req dto.PhoneRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	attempt, err := h.service.ResendCode(ctx, operatorID(ctx), req.PhoneNumber)
	h.writeAttempt(ctx, attempt, err)
}

// SubmitPassword handles POST /api/v1/operators/{operator_id}/auth/password
func (h *AuthHandler) SubmitPassword(ctx *fasthttp.RequestCtx) {
	var req dto.PasswordRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	attempt, err := h.service.SubmitPassword(ctx, operatorID(ctx), req.PhoneNumber, req.Password)
	h.writeAttempt(ctx, attempt, err)
}

// GetStatus handles GET /api/v1/operators/{operator_id}/auth?phone=
func (h *AuthHandler) GetStatus(ctx *fasthttp.RequestCtx) {
	attempt, err := h.service.Status(ctx, operatorID(ctx), string(ctx.QueryArgs().Peek("phone")))
	h.writeAttempt(ctx, attempt, err)
}

// Cancel handles DELETE /api/v1/operators/{operator_id}/auth?phone=
func (h *AuthHandler) Cancel(ctx *fasthttp.RequestCtx) {
	if err := h.service.Cancel(ctx, operatorID(ctx), string(ctx.QueryArgs().Peek("phone"))); err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, map[string]string{"status": "cancelled"})
}

func (h *AuthHandler) writeAttempt(ctx *fasthttp.RequestCtx, attempt *entities.LoginAttempt, err error) {
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.NewAttemptResponse(attempt, time.Now()))
}

func operatorID(ctx *fasthttp.RequestCtx) string {
	value, _ := ctx.UserValue("operator_id").(string)
	return value
}
