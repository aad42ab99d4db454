package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ServerMetrics records latency, traffic, errors and in-flight requests for
// the HTTP and gRPC servers.
type ServerMetrics struct {
	httpDuration metric.Float64Histogram
	httpRequests metric.Int64Counter
	httpErrors   metric.Int64Counter
	httpActive   metric.Int64UpDownCounter
	rpcDuration  metric.Float64Histogram
	rpcRequests  metric.Int64Counter
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

func NewServerMetrics(meter metric.Meter) (*ServerMetrics, error) {
	sm := &ServerMetrics{}

	var err error

	sm.httpDuration, err = meter.Float64Histogram(
		"http.server.request_duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	)
	if err != nil {
		return nil, err
	}

	sm.httpRequests, err = meter.Int64Counter(
		"http.server.requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	sm.httpErrors, err = meter.Int64Counter(
		"http.server.errors_total",
		metric.WithDescription("Total number of HTTP responses with a 5xx status"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	sm.httpActive, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	sm.rpcDuration, err = meter.Float64Histogram(
		"grpc.server.request_duration",
		metric.WithDescription("gRPC request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	)
	if err != nil {
		return nil, err
	}

	sm.rpcRequests, err = meter.Int64Counter(
		"grpc.server.requests_total",
		metric.WithDescription("Total number of gRPC requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// Middleware records one sample per request, labelled with the matched chi
// route pattern rather than the raw path.
func (sm *ServerMetrics) Middleware(next http.Handler) http.Handler {
	if sm == nil || sm.httpRequests == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		methodAttr := attribute.String("http_method", r.Method)

		sm.httpActive.Add(ctx, 1, metric.WithAttributes(methodAttr))
		defer sm.httpActive.Add(ctx, -1, metric.WithAttributes(methodAttr))

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		attrs := metric.WithAttributes(
			methodAttr,
			attribute.String("http_route", route),
			attribute.String("http_status", strconv.Itoa(statusCode)),
		)
		sm.httpDuration.Record(ctx, duration.Seconds(), attrs)
		sm.httpRequests.Add(ctx, 1, attrs)
		if statusCode >= http.StatusInternalServerError {
			sm.httpErrors.Add(ctx, 1, attrs)
		}
	})
}

// UnaryServerInterceptor records gRPC calls by full method and status code.
func (sm *ServerMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if sm == nil || sm.rpcRequests == nil {
			return handler(ctx, req)
		}

		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := metric.WithAttributes(
			attribute.String("grpc_method", info.FullMethod),
			attribute.String("grpc_code", status.Code(err).String()),
		)
		sm.rpcDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		sm.rpcRequests.Add(ctx, 1, attrs)

		return resp, err
	}
}
