package tracing

import (
	"context"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Tonooka01/sistema-analise/pkg/tracing/exporters"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	// Exporter is "console" or "otlp".
	Exporter string
	OTLP     exporters.OTLPConfig
}

// Setup installs the global tracer provider. The returned shutdown func flushes pending spans.
func Setup(ctx context.Context, cfg Config, logger ectologger.Logger) (func(context.Context) error, error) {
	if !cfg.Enabled {
		logger.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "otlp":
		exp, err := exporters.NewOTLPExporter(ctx, cfg.OTLP)
		if err != nil {
			return nil, err
		}
		exporter = exp
	default:
		exporter = exporters.NewConsoleExporter(logger)
	}

	res := sdkresource.NewWithAttributes("",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	SetTracer(tp.Tracer(cfg.ServiceName))

	logger.Infof("tracing enabled with %s exporter", cfg.Exporter)
	return tp.Shutdown, nil
}
