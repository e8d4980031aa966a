package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goran-ethernal/GnosisPayIndexor/internal/logger"
	"github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestServer_Handler(t *testing.T) {
	t.Parallel()

	cfg := &config.MetricsConfig{Enabled: true, ListenAddress: ":0", Path: "/metrics"}
	bootstrapping := errors.New("indexer is bootstrapping")

	tests := []struct {
		name       string
		ready      ReadyFunc
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "liveness ignores readiness",
			ready:      func(context.Context) error { return bootstrapping },
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   "OK",
		},
		{
			name:       "not ready while bootstrapping",
			ready:      func(context.Context) error { return bootstrapping },
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "indexer is bootstrapping\n",
		},
		{
			name:       "ready",
			ready:      func(context.Context) error { return nil },
			path:       "/ready",
			wantStatus: http.StatusOK,
			wantBody:   "READY",
		},
		{
			name:       "no readiness check",
			path:       "/ready",
			wantStatus: http.StatusOK,
			wantBody:   "READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewServer(cfg, tt.ready, logger.NewNopLogger())
			w := httptest.NewRecorder()
			s.handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestServer_ExposesIndexerMetrics(t *testing.T) {
	t.Parallel()

	LastIndexedBlockSet(37_000_000)

	s := NewServer(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, nil, logger.NewNopLogger())
	w := httptest.NewRecorder()
	s.handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "gpindexer_")
}

func TestServer_DisabledDoesNotListen(t *testing.T) {
	t.Parallel()

	s := NewServer(&config.MetricsConfig{Enabled: false}, nil, logger.NewNopLogger())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
