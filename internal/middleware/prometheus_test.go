// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/videoparty/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	t.Run("labels with route pattern", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Use(PrometheusMetrics)
		r.Get("/metrics-test/rooms/{code}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/metrics-test/rooms/{code}", "418")
		before := testutil.ToFloat64(counter)

		for _, code := range []string{"ABC123", "XYZ789"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics-test/rooms/"+code, nil))
			if rec.Code != http.StatusTeapot {
				t.Fatalf("status = %d", rec.Code)
			}
		}

		if got := testutil.ToFloat64(counter) - before; got != 2 {
			t.Errorf("counter delta = %v, want 2", got)
		}
	})

	t.Run("implicit 200", func(t *testing.T) {
		t.Parallel()
		handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestMetricsResponseWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}

func TestRoutePattern_WithoutRouter(t *testing.T) {
	t.Parallel()

	if got := routePattern(httptest.NewRequest(http.MethodGet, "/no-router", nil)); got != "/no-router" {
		t.Errorf("routePattern() without chi = %q", got)
	}
}
