package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/pkg/httputil"
)

// Router registers auth HTTP routes
type Router struct {
	handler *AuthHandler
	logger  zerolog.Logger
}

// NewRouter creates a new auth router
func NewRouter(handler *AuthHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers auth routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	operator := httputil.NewMiddlewareGroup(rt.Group("/api/v1/operators/{operator_id}")).
		Use(httputil.Recover(r.logger), httputil.RequestLogger(r.logger))

	operator.GET("/auth", r.handler.GetStatus)
	operator.DELETE("/auth", r.handler.Cancel)
	operator.POST("/auth/code", r.handler.SendCode)
	operator.POST("/auth/code/verify", r.handler.VerifyCode)
	operator.POST("/auth/code/resend", r.handler.ResendCode)
	operator.POST("/auth/password", r.handler.SubmitPassword)

	r.logger.Info().Msg("Auth routes registered")
}
