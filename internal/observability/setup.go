package observability

import (
	"context"

	"github.com/honeynil/finboard/internal/config"
	"github.com/honeynil/finboard/internal/infrastructure/observability"
)

// Setup initialises logging, the metrics endpoint and tracing. The returned
// function flushes pending spans.
func Setup(ctx context.Context, cfg *config.Config) func(context.Context) error {
	observability.InitLogger(cfg.LogLevel)
	observability.ServeMetrics(ctx, cfg.MetricsAddr)
	return observability.InitTracing(cfg.ServiceName, cfg.OTLPEndpoint)
}
