package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/stretchr/testify/require"
)

const (
	dashboardOrigin = "https://dashboard.gnosispay.example"
	partnerOrigin   = "https://rewards.partner.example"
)

func rewardsHandler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[]`))
		require.NoError(t, err)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		method  string
		want    string
	}{
		{name: "wildcard echoes the origin", allowed: []string{"*"}, origin: dashboardOrigin, method: http.MethodGet, want: dashboardOrigin},
		{name: "wildcard without origin", allowed: []string{"*"}, method: http.MethodGet, want: "*"},
		{name: "listed origin", allowed: []string{dashboardOrigin, partnerOrigin}, origin: partnerOrigin, method: http.MethodGet, want: partnerOrigin},
		{name: "unlisted origin", allowed: []string{dashboardOrigin}, origin: partnerOrigin, method: http.MethodGet},
		{name: "no origins configured", origin: dashboardOrigin, method: http.MethodGet},
		{name: "preflight from listed origin", allowed: []string{dashboardOrigin}, origin: dashboardOrigin, method: http.MethodOptions, want: dashboardOrigin},
		{name: "preflight from unlisted origin", allowed: []string{dashboardOrigin}, origin: partnerOrigin, method: http.MethodOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/v1/weeks/2025-01-05/rewards", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(rewardsHandler(t)).ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.want != "" {
				require.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				require.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
			}
			if tt.want != "" && tt.want != "*" {
				require.Equal(t, "Origin", w.Header().Get("Vary"))
			}

			// preflights never reach the handler
			if tt.method == http.MethodOptions {
				require.Empty(t, w.Body.String())
			} else {
				require.Equal(t, "[]", w.Body.String())
			}
		})
	}
}

func TestLoggingMiddleware_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		handler http.HandlerFunc
		want    int
	}{
		{
			name: "implicit ok",
			path: "/api/v1/weeks",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
			want: http.StatusOK,
		},
		{
			name: "bad week",
			path: "/api/v1/weeks/2025-01-06/rewards",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown safe",
			path: "/api/v1/safes/0x00000000000000000000000000000000000000a1",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			LoggingMiddleware(logger.NewNopLogger())(tt.handler).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestResponseWriter_KeepsFirstStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	require.Equal(t, http.StatusNotFound, rw.statusCode)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// a body write without WriteHeader keeps the default
	rw = &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	_, err := rw.Write([]byte(`{"status":"ok"}`))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusTeapot)
	require.Equal(t, http.StatusOK, rw.statusCode)
}

func TestMiddlewareChain_RecoversPanics(t *testing.T) {
	t.Parallel()

	log := logger.NewNopLogger()
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("reward row without safe")
	})

	handler := RecoveryMiddleware(log)(LoggingMiddleware(log)(CORSMiddleware([]string{"*"})(panicking)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/safes/0x00000000000000000000000000000000000000a1", nil)
	req.Header.Set("Origin", dashboardOrigin)
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { handler.ServeHTTP(w, req) })
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Internal Server Error\n", w.Body.String())
	require.Equal(t, dashboardOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}
