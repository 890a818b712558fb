package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/pkg/httputil"
)

// Router registers account HTTP routes
type Router struct {
	handler *AccountHandler
	health  *HealthHandler
	logger  zerolog.Logger
}

// NewRouter creates a new account router
func NewRouter(handler *AccountHandler, health *HealthHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		health:  health,
		logger:  logger,
	}
}

// RegisterRoutes registers account routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/health", r.health.Health)

	api := httputil.NewMiddlewareGroup(rt.Group("/api/v1")).
		Use(httputil.Recover(r.logger), httputil.RequestLogger(r.logger))

	api.POST("/operators", r.handler.CreateOperator)
	api.GET("/operators", r.handler.ListOperators)

	operator := api.Group("/operators/{operator_id}")
	operator.GET("/accounts", r.handler.ListAccounts)
	operator.POST("/accounts", r.handler.CreateAccount)
	operator.DELETE("/accounts/{account_id}", r.handler.DeleteAccount)

	r.logger.Info().Msg("Account routes registered")
}
