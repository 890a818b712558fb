package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/pkg/httputil"
)

// Router registers chat HTTP routes
type Router struct {
	handler *ChatHandler
	logger  zerolog.Logger
}

// NewRouter creates a new chat router
func NewRouter(handler *ChatHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers chat routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	operator := httputil.NewMiddlewareGroup(rt.Group("/api/v1/operators/{operator_id}")).
		Use(httputil.Recover(r.logger), httputil.RequestLogger(r.logger))

	operator.GET("/chats", r.handler.ListConversations)
	operator.GET("/chats/{chat_key}/messages", r.handler.ListMessages)
	operator.GET("/stats", r.handler.ListStats)

	r.logger.Info().Msg("Chat routes registered")
}
