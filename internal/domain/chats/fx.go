package chats

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/operator-service/config"
	accountdeps "github.com/Conte777/operator-service/internal/domain/account/deps"
	chatshttp "github.com/Conte777/operator-service/internal/domain/chats/delivery/http"
	"github.com/Conte777/operator-service/internal/domain/chats/deps"
	"github.com/Conte777/operator-service/internal/domain/chats/usecase/business"
	"github.com/Conte777/operator-service/internal/infrastructure/http/server"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	"github.com/Conte777/operator-service/internal/infrastructure/upstream"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

// Module provides conversation aggregation components for fx DI
var Module = fx.Module("chats",
	fx.Provide(
		NewChatUseCaseFx,
		NewChatHandlerFx,
		chatshttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// NewChatUseCaseFx creates the aggregation engine for fx DI
func NewChatUseCaseFx(
	directory accountdeps.DirectoryService,
	client *upstream.Client,
	m *metrics.Metrics,
	aggregationCfg *config.AggregationConfig,
	logger zerolog.Logger,
) deps.ChatService {
	return business.NewUseCase(directory, client, m, aggregationCfg, logger)
}

// NewChatHandlerFx creates the chat HTTP handler for fx DI
func NewChatHandlerFx(service deps.ChatService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *chatshttp.ChatHandler {
	return chatshttp.NewChatHandler(service, mapper, logger)
}

func registerRoutes(srv *server.Server, router *chatshttp.Router) {
	router.RegisterRoutes(srv.Router)
}
