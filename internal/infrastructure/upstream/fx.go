package upstream

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/operator-service/config"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
)

// Module provides the session service client for fx DI
var Module = fx.Module("upstream",
	fx.Provide(NewClientFx),
)

// NewClientFx creates the session service client for fx DI
func NewClientFx(cfg *config.UpstreamConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	logger.Info().
		Str("base_url", cfg.BaseURL).
		Int("max_attempts", cfg.MaxAttempts).
		Dur("timeout", cfg.Timeout).
		Msg("Session service client configured")

	return NewClient(cfg, m, logger)
}
