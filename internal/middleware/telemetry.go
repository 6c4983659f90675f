package middleware

import (
	"math"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const latencyWindowSize = 200

type telemetryRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *telemetryRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *telemetryRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(data)
	r.bytes += n
	return n, err
}

func (r *telemetryRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// routeLatency keeps the last latencyWindowSize durations per route in a
// ring buffer.
type routeLatency struct {
	mu     sync.Mutex
	routes map[string]*ring
}

type ring struct {
	samples []int64
	next    int
}

func newRouteLatency() *routeLatency {
	return &routeLatency{routes: make(map[string]*ring)}
}

func (l *routeLatency) record(route string, ms int64) (int64, int64) {
	l.mu.Lock()
	buf, ok := l.routes[route]
	if !ok {
		buf = &ring{samples: make([]int64, 0, latencyWindowSize)}
		l.routes[route] = buf
	}
	if len(buf.samples) < latencyWindowSize {
		buf.samples = append(buf.samples, ms)
	} else {
		buf.samples[buf.next] = ms
		buf.next = (buf.next + 1) % latencyWindowSize
	}
	values := append([]int64(nil), buf.samples...)
	l.mu.Unlock()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return percentile(values, 0.5), percentile(values, 0.95)
}

// percentile uses the nearest-rank method on sorted values.
func percentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

var telemetryLatency = newRouteLatency()

// metricKey groups requests by route pattern. Requests no route matched share
// one bucket so arbitrary paths cannot grow the latency map.
func metricKey(method string, routePattern string) string {
	if routePattern == "" {
		return method + " unmatched"
	}
	return method + " " + routePattern
}

// Telemetry logs one structured line per request with rolling p50/p95
// latency for the matched chi route.
func Telemetry(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &telemetryRecorder{ResponseWriter: w}

			next.ServeHTTP(recorder, r)

			if logger == nil {
				return
			}
			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}

			routePattern := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				routePattern = rc.RoutePattern()
			}
			duration := time.Since(start)
			p50, p95 := telemetryLatency.record(metricKey(r.Method, routePattern), duration.Milliseconds())
			logger.Info(
				"http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("routePattern", routePattern),
				zap.String("requestId", readRequestIDHeader(r)),
				zap.Int("status", status),
				zap.Int("bytes", recorder.bytes),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.Int64("p50_ms", p50),
				zap.Int64("p95_ms", p95),
				zap.Bool("error", status >= 500),
				zap.Bool("clientError", status >= 400 && status < 500),
			)
		})
	}
}
