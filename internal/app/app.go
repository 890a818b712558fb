package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/operator-service/config"
	"github.com/Conte777/operator-service/internal/domain/account"
	"github.com/Conte777/operator-service/internal/domain/auth"
	"github.com/Conte777/operator-service/internal/domain/chats"
	"github.com/Conte777/operator-service/internal/infrastructure"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.Module,
		// Domain modules
		account.Module,
		auth.Module,  // Depends on the account repository and publisher
		chats.Module, // Depends on the account directory
	)
}
