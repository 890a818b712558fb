package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func Test__CreateApp(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:5001")
	t.Setenv("KAFKA_ENABLED", "false")

	require.NoError(t, fx.ValidateApp(CreateApp()))
}
