package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	name string
	tags map[string]string
}

type recordingSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

func (s *recordingSink) Count(name string, _ int64, tags map[string]string) {
	s.counts = append(s.counts, recordedMetric{name: name, tags: tags})
}

func (s *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedMetric{name: name, tags: tags})
}

func TestMetrics_EmitsCountAndTiming(t *testing.T) {
	sink := &recordingSink{}
	handler := Metrics(sink)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/suppliers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Len(t, sink.counts, 1)
	assert.Equal(t, "http.request", sink.counts[0].name)
	assert.Equal(t, "POST", sink.counts[0].tags["method"])
	assert.Equal(t, "201", sink.counts[0].tags["status"])

	require.Len(t, sink.timings, 1)
	assert.Equal(t, "http.request.duration", sink.timings[0].name)
}

func TestMetrics_DefaultsStatusTo200(t *testing.T) {
	sink := &recordingSink{}
	handler := Metrics(sink)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Len(t, sink.counts, 1)
	assert.Equal(t, "200", sink.counts[0].tags["status"])
}

func TestMetrics_NilSinkPassesThrough(t *testing.T) {
	called := false
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
