// Package telemetry traces games with OpenTelemetry.
package telemetry

import (
	"context"
	"github.com/pkg/errors"
	"github.com/they4kman/sweepengine/config"
	"github.com/they4kman/sweepengine/game"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"os"
)

const (
	serviceName    = "sweepengine"
	serviceVersion = "0.1.0"

	endpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

const (
	GameIDKey   = attribute.Key("sweep.game.id")
	CellXKey    = attribute.Key("sweep.cell.x")
	CellYKey    = attribute.Key("sweep.cell.y")
	RevealedKey = attribute.Key("sweep.cells.revealed")
	MineHitKey  = attribute.Key("sweep.mine.hit")
	ResultKey   = attribute.Key("sweep.game.result")
	MovesKey    = attribute.Key("sweep.moves")

	modeKey      = attribute.Key("sweep.mode")
	widthKey     = attribute.Key("sweep.default.width")
	heightKey    = attribute.Key("sweep.default.height")
	minesKey     = attribute.Key("sweep.default.mines")
	placementKey = attribute.Key("sweep.default.placement")
	seededKey    = attribute.Key("sweep.default.seeded")
)

// Setup installs an OTLP/HTTP exporter as the global tracer provider. It is a
// no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set; the exporter reads the
// other OTEL_* variables itself.
//
// mode names the front end ("play", "serve") and params are the game settings
// it starts with; both end up on the resource of every span.
func Setup(ctx context.Context, mode string, params config.Game) (shutdown func(context.Context) error, err error) {
	if os.Getenv(endpointEnv) == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating trace exporter")
	}

	res, err := Resource(ctx, mode, params)
	if err != nil {
		return nil, errors.Wrap(err, "describing trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Resource describes this process. OTEL_RESOURCE_ATTRIBUTES is honoured.
func Resource(ctx context.Context, mode string, params config.Game) (*resource.Resource, error) {
	placement, err := config.ParsePlacement(params.Placement)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			modeKey.String(mode),
			widthKey.Int(params.Width),
			heightKey.Int(params.Height),
			minesKey.Int(params.Mines),
			placementKey.String(placement.String()),
			seededKey.Bool(params.Seed != 0),
		),
	)
	// Partially detected resources are still used
	if errors.Is(err, resource.ErrPartialResource) {
		return res, nil
	}
	return res, err
}

// Tracer returns a named tracer for the given component.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// Cell locates a revealed cell.
func Cell(x, y int) []attribute.KeyValue {
	return []attribute.KeyValue{CellXKey.Int(x), CellYKey.Int(y)}
}

// Outcome describes what a reveal did to a game.
func Outcome(revealed game.RevealResult, result game.Result) []attribute.KeyValue {
	return []attribute.KeyValue{
		RevealedKey.Int(len(revealed.Changed)),
		MineHitKey.Bool(revealed.MineHit),
		ResultKey.String(result.String()),
	}
}
