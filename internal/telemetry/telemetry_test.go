package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "slashbot")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
