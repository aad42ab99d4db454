package telemetry_test

import (
	"context"
	"testing"

	"school-service/internal/logger"
	"school-service/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDiscard()

	mp, err := telemetry.InitMeterProvider(ctx, "school-service", "dev", "", log)
	require.NoError(t, err)
	assert.Nil(t, mp)

	assert.NoError(t, telemetry.Shutdown(ctx, mp, log))
}

func TestInitMeterProvider_Enabled(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDiscard()

	// The gRPC exporter dials lazily, so no collector is needed here.
	mp, err := telemetry.InitMeterProvider(ctx, "school-service", "dev", "localhost:4317", log)
	require.NoError(t, err)
	require.NotNil(t, mp)

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = telemetry.Shutdown(shutdownCtx, mp, log)
}
