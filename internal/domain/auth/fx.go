package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/operator-service/config"
	accountdeps "github.com/Conte777/operator-service/internal/domain/account/deps"
	authhttp "github.com/Conte777/operator-service/internal/domain/auth/delivery/http"
	"github.com/Conte777/operator-service/internal/domain/auth/deps"
	"github.com/Conte777/operator-service/internal/domain/auth/repository/memory"
	"github.com/Conte777/operator-service/internal/domain/auth/usecase/business"
	"github.com/Conte777/operator-service/internal/infrastructure/http/server"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

// Module provides login orchestration components for fx DI
var Module = fx.Module("auth",
	fx.Provide(NewAttemptStoreFx),
	fx.Provide(NewAuthUseCaseFx),
	fx.Provide(NewAuthHandlerFx),
	fx.Provide(authhttp.NewRouter),
	fx.Invoke(registerRoutes),
)

// NewAttemptStoreFx creates the in-memory attempt store and stops its sweeper on shutdown
func NewAttemptStoreFx(
	lc fx.Lifecycle,
	authCfg *config.AuthConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) deps.AttemptStore {
	store := memory.NewAttemptStore(
		authCfg.AttemptTTL,
		time.Minute,
		authCfg.MaxAttempts,
		m,
		logger,
	)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			store.Stop()
			return nil
		},
	})

	return store
}

// NewAuthUseCaseFx creates the login orchestrator for fx DI
func NewAuthUseCaseFx(
	client *upstream.Client,
	repo accountdeps.AccountRepository,
	attempts deps.AttemptStore,
	publisher accountdeps.EventPublisher,
	m *metrics.Metrics,
	authCfg *config.AuthConfig,
	logger zerolog.Logger,
) deps.AuthService {
	return business.NewUseCase(client, repo, attempts, publisher, m, authCfg.ResendCooldown, logger)
}

// NewAuthHandlerFx creates the auth HTTP handler for fx DI
func NewAuthHandlerFx(service deps.AuthService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *authhttp.AuthHandler {
	return authhttp.NewAuthHandler(service, mapper, logger)
}

// registerRoutes registers auth HTTP routes on the server
func registerRoutes(srv *server.Server, router *authhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
