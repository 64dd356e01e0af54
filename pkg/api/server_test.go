package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/psaab/shellac/pkg/metrics"
)

func TestHealth(t *testing.T) {
	srv := NewServer(Config{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
}

func TestStatusReportsStats(t *testing.T) {
	stats := metrics.NewStats()
	stats.Dispatched("user add")
	stats.Unknown()

	srv := NewServer(Config{Stats: stats})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Data.Stats.Dispatched["user add"]; got != 1 {
		t.Errorf("dispatched[user add] = %d, want 1", got)
	}
	if resp.Data.Stats.Unknown != 1 {
		t.Errorf("unknown = %d, want 1", resp.Data.Stats.Unknown)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	stats := metrics.NewStats()
	stats.Dispatched("group list")
	stats.CompletionRequested()
	stats.CompletionFailed()

	ts := httptest.NewServer(NewServer(Config{Stats: stats}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, want := range []string{
		`shellac_commands_total{command="group list"} 1`,
		"shellac_completion_requests_total 1",
		"shellac_completion_failures_total 1",
		"shellac_unknown_commands_total 0",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := NewServer(Config{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
