package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Conte777/operator-service/internal/infrastructure/database"
	httpfx "github.com/Conte777/operator-service/internal/infrastructure/http"
	"github.com/Conte777/operator-service/internal/infrastructure/kafka"
	"github.com/Conte777/operator-service/internal/infrastructure/logger"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	metrics.Module,
	upstream.Module, // Must be after metrics (client records upstream calls)
	kafka.Module,
	httpfx.Module,
)
