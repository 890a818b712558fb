package http

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/operator-service/internal/domain/chats/deps"
	"github.com/Conte777/operator-service/internal/domain/chats/dto"
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
	"github.com/Conte777/operator-service/pkg/httputil"
)

// ChatHandler handles conversation and message HTTP requests
type ChatHandler struct {
	service deps.ChatService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service deps.ChatService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "chats").Logger(),
	}
}

// ListConversations handles GET /api/v1/operators/{operator_id}/chats?account=&tz=.
// The list is written as soon as it is merged; stats are included only if
// they are already computed.
func (h *ChatHandler) ListConversations(ctx *fasthttp.RequestCtx) {
	agg, ok := h.fetch(ctx)
	if !ok {
		return
	}

	stats, ready := agg.ReadyStats()
	if !ready {
		h.logger.Debug().Msg("Daily stats still computing, responding without them")
	}

	httputil.WriteResponse(ctx, dto.NewConversationsResponse(agg, stats, !ready))
}

// ListStats handles GET /api/v1/operators/{operator_id}/stats?account=&tz=
func (h *ChatHandler) ListStats(ctx *fasthttp.RequestCtx) {
	agg, ok := h.fetch(ctx)
	if !ok {
		return
	}

	// stats never call upstream, so the wait is bounded by local work
	stats, err := agg.Stats(context.Background())
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.NewStatsResponse(stats))
}

func (h *ChatHandler) fetch(ctx *fasthttp.RequestCtx) (*entities.Aggregation, bool) {
	var loc *time.Location
	if tz := string(ctx.QueryArgs().Peek("tz")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			httputil.WriteMappedError(ctx, h.mapper, pkgerrors.NewValidationErrorf("invalid timezone %q", tz))
			return nil, false
		}
		loc = parsed
	}

	agg, err := h.service.FetchConversations(ctx, userValue(ctx, "operator_id"), string(ctx.QueryArgs().Peek("account")), loc)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return nil, false
	}

	return agg, true
}

// ListMessages handles GET /api/v1/operators/{operator_id}/chats/{chat_key}/messages?limit=
func (h *ChatHandler) ListMessages(ctx *fasthttp.RequestCtx) {
	limit := 0
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteMappedError(ctx, h.mapper, pkgerrors.NewValidationError("limit must be an integer"))
			return
		}
		limit = parsed
	}

	page, err := h.service.FetchMessages(ctx, userValue(ctx, "operator_id"), userValue(ctx, "chat_key"), limit)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, page)
}

func userValue(ctx *fasthttp.RequestCtx, key string) string {
	value, _ := ctx.UserValue(key).(string)
	return value
}
