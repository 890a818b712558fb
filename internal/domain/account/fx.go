package account

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/operator-service/config"
	accounthttp "github.com/Conte777/operator-service/internal/domain/account/delivery/http"
	"github.com/Conte777/operator-service/internal/domain/account/deps"
	"github.com/Conte777/operator-service/internal/domain/account/repository/postgres"
	"github.com/Conte777/operator-service/internal/domain/account/usecase/business"
	"github.com/Conte777/operator-service/internal/infrastructure/database"
	"github.com/Conte777/operator-service/internal/infrastructure/http/server"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

// Module provides account domain components for fx DI
var Module = fx.Module("account",
	fx.Provide(
		postgres.NewRepository,
		NewDirectoryFx,
		NewHealthHandlerFx,
		NewAccountHandlerFx,
		accounthttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// NewDirectoryFx creates the account directory use case for fx DI
func NewDirectoryFx(
	repo deps.AccountRepository,
	client *upstream.Client,
	publisher deps.EventPublisher,
	logger zerolog.Logger,
) deps.DirectoryService {
	return business.NewUseCase(repo, client, publisher, logger)
}

// NewAccountHandlerFx creates the account HTTP handler for fx DI
func NewAccountHandlerFx(directory deps.DirectoryService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *accounthttp.AccountHandler {
	return accounthttp.NewAccountHandler(directory, mapper, logger)
}

// NewHealthHandlerFx creates the health handler probing the database
func NewHealthHandlerFx(db *gorm.DB, serviceCfg *config.ServiceConfig, logger zerolog.Logger) *accounthttp.HealthHandler {
	return accounthttp.NewHealthHandler(serviceCfg.Name, map[string]accounthttp.HealthCheck{
		"database": func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}, logger)
}

// registerRoutes registers account HTTP routes on the server
func registerRoutes(srv *server.Server, router *accounthttp.Router) {
	router.RegisterRoutes(srv.Router)
}
