package logger_test

import (
	"context"
	"testing"

	"privuploads/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet_FallsBackToDefault(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)

	require.NotNil(t, logger.Get(context.Background()))
}

func TestWithLogger_AttachesToContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	ctx := logger.WithLogger(context.Background(), l)
	logger.Info(ctx, "hello")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "hello", logs.All()[0].Message)
}

func TestWithFields_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("path", "2026/08/a.pdf"))
	logger.Warn(ctx, "slow read")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "2026/08/a.pdf", fields["path"])
}
