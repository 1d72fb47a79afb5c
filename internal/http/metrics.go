package httpx

import (
	"net/http"
	"strconv"
	"time"
)

// MetricsSink receives per-request metrics. Matches the statsd client surface
// without importing it.
type MetricsSink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Metrics returns a middleware that emits a counter and a timing per request,
// tagged with method and status class.
func Metrics(sink MetricsSink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if sink == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			tags := map[string]string{
				"method": r.Method,
				"status": strconv.Itoa(ww.status),
			}
			sink.Count("http.request", 1, tags)
			sink.Timing("http.request.duration", time.Since(start), tags)
		})
	}
}
