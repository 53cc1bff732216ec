// Package telemetry wires OpenTelemetry tracing into the hangman server.
//
// Tracing is off unless an OTLP endpoint is configured; without Setup every
// tracer is the global no-op and spans cost nothing.
package telemetry

import (
	"context"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config names the service in exported spans and says where they go.
type Config struct {
	ServiceName    string  // OTEL_SERVICE_NAME, default "hangman"
	ServiceVersion string  // SERVICE_VERSION, default the module build version
	Endpoint       string  // OTEL_EXPORTER_OTLP_ENDPOINT or ..._TRACES_ENDPOINT
	SampleRatio    float64 // fraction of new traces kept; parents are honoured
}

// ConfigFromEnv reads Config through getenv (os.Getenv in production).
func ConfigFromEnv(getenv func(string) string) Config {
	c := Config{
		ServiceName:    getenv("OTEL_SERVICE_NAME"),
		ServiceVersion: getenv("SERVICE_VERSION"),
		Endpoint:       getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
		SampleRatio:    1,
	}
	if c.ServiceName == "" {
		c.ServiceName = "hangman"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = buildVersion()
	}
	if c.Endpoint == "" {
		c.Endpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	return c
}

// Enabled reports whether spans have somewhere to go.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// Setup installs a global tracer provider exporting over OTLP/HTTP. The
// exporter reads the remaining OTEL_* variables (headers, TLS) itself.
// The returned function flushes pending spans and must be called on exit.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer("hangman/" + name)
}

// Middleware opens a server span per request, continuing any trace the
// caller propagated. Spans are named after the matched chi route pattern so
// /game/{id} stays one series regardless of the ID.
func Middleware(next http.Handler) http.Handler {
	tracer := Tracer("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("http.request_id", chimw.GetReqID(r.Context())),
			),
		)
		defer span.End()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

func buildVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	if v := os.Getenv("GIT_SHA"); v != "" {
		return v
	}
	return "dev"
}
