package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type mockHTTPRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *mockHTTPRecorder) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: statusCode})
}

var _ HTTPRecorder = (*mockHTTPRecorder)(nil)

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Delete("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/tasks/123", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(recorder.requests))
	}
	got := recorder.requests[0]
	want := recordedRequest{method: http.MethodDelete, route: "/tasks/{id}", status: http.StatusNotFound}
	if got != want {
		t.Errorf("recorded = %+v, want %+v", got, want)
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(recorder.requests))
	}
	if recorder.requests[0].route != unmatchedRoute {
		t.Errorf("route = %q, want %q", recorder.requests[0].route, unmatchedRoute)
	}
}
