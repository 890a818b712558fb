package http

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/operator-service/internal/domain/account/dto"
	"github.com/Conte777/operator-service/pkg/httputil"
)

// HealthCheck probes a single dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler handles health check requests
type HealthHandler struct {
	service string
	checks  map[string]HealthCheck
	logger  zerolog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, checks map[string]HealthCheck, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		checks:  checks,
		logger:  logger.With().Str("handler", "health").Logger(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx *fasthttp.RequestCtx) {
	checkCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Checks:  make(map[string]string, len(h.checks)),
	}

	healthy := true
	for name, check := range h.checks {
		if err := check(checkCtx); err != nil {
			h.logger.Warn().Err(err).Str("check", name).Msg("Health check failed")
			resp.Checks[name] = err.Error()
			healthy = false
			continue
		}
		resp.Checks[name] = "ok"
	}

	if !healthy {
		resp.Status = "unhealthy"
	}

	httputil.WriteHealthResponse(ctx, resp, healthy)
}
