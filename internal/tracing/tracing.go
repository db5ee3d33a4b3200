// Package tracing configures OpenTelemetry for a process driven by the
// Lambda invocation API.
//
// The exporter is chosen via the OTEL_EXPORTER environment variable:
//   - "xrayudp": export directly to the platform's built-in X-Ray daemon
//   - "stdout": print spans to stdout (local development)
package tracing

import (
	"context"
	"os"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	lambdadetector "go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

var tp *trace.TracerProvider

// Init installs a tracer provider and the X-Ray propagator as the otel
// globals. Call Shutdown before the process exits to flush pending spans.
func Init(ctx context.Context) error {
	if os.Getenv("OTEL_SDK_DISABLED") == "true" {
		return nil
	}

	exporter, err := newExporter(ctx)
	if err != nil {
		return err
	}

	// Function name, version and memory from the execution environment.
	res, err := lambdadetector.NewResourceDetector().Detect(ctx)
	if err != nil {
		return errors.Wrap(err, "detect lambda resource")
	}

	// Spans are exported synchronously: the platform freezes the process
	// between invocations, so a batched span left unflushed when the loop
	// goes back to polling may never be sent.
	tp = trace.NewTracerProvider(
		trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(exporter)),
		trace.WithResource(res),
		trace.WithIDGenerator(xray.NewIDGenerator()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(xray.Propagator{})

	return nil
}

func newExporter(ctx context.Context) (trace.SpanExporter, error) {
	switch exp := os.Getenv("OTEL_EXPORTER"); exp {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "xrayudp", "":
		return xrayudp.NewSpanExporter(ctx)
	default:
		return nil, errors.Newf("unsupported OTEL_EXPORTER: %q (supported: xrayudp, stdout)", exp)
	}
}

// Shutdown flushes pending spans and releases the tracer provider.
func Shutdown(ctx context.Context) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
