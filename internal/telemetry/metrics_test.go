package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportMetrics_Counters(t *testing.T) {
	m := NewImportMetrics("")

	m.RowProcessed("account", "success")
	m.RowProcessed("account", "success")
	m.RowProcessed("account", "failure")
	m.Resolved("remote")
	m.Resolved("manual")
	m.Resolved("manual")
	m.RemoteLookup("subdivisions")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues("account", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsProcessed.WithLabelValues("account", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AddressResolved.WithLabelValues("remote")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AddressResolved.WithLabelValues("manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteLookups.WithLabelValues("subdivisions")))
}

func TestImportMetrics_SeparateRegistries(t *testing.T) {
	// Each run gets its own registry, so creating two never panics on
	// duplicate registration.
	a := NewImportMetrics("test")
	b := NewImportMetrics("test")

	a.RowProcessed("account", "success")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RowsProcessed.WithLabelValues("account", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RowsProcessed.WithLabelValues("account", "success")))
}

func TestImportMetrics_InstrumentClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewImportMetrics("")
	base := &http.Client{Timeout: 5 * time.Second}
	client := m.InstrumentClient(base)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1, testutil.CollectAndCount(m.APIRequests))
	assert.Equal(t, 1, testutil.CollectAndCount(m.APILatency))
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.Nil(t, base.Transport, "the original client is not modified")
}

func TestImportMetrics_Push(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewImportMetrics("")
	m.RowProcessed("tokenized_echeck", "success")

	err := m.Push(context.Background(), srv.URL, "billing_importer", "run-42")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/billing_importer/run_id/run-42", gotPath)
}

func TestImportMetrics_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewImportMetrics("")
	err := m.Push(context.Background(), srv.URL, "billing_importer", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}

func TestSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup, err := InitSentry(SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()

	assert.False(t, IsEnabled())

	// No-ops when disabled.
	CaptureError(errors.New("boom"), "account", "run-1", nil)
}

func TestSentry_EnabledWithoutDSN(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := InitSentry(SentryConfig{Enabled: true}, logger)
	require.NoError(t, err)

	assert.False(t, IsEnabled())
}

func TestHTTPTransport_PassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, time.Second, client.Timeout)
}
