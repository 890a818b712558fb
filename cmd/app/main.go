package main

import (
	_ "time/tzdata"

	"go.uber.org/fx"

	"github.com/Conte777/operator-service/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
