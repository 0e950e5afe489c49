package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// registryMetrics is a realistic subset of the registry's /metrics output.
const registryMetrics = `
# HELP registry_readings_total Total sensor readings ingested.
# TYPE registry_readings_total counter
registry_readings_total{lab="L1"} 1200
registry_readings_total{lab="L2"} 300

# HELP registry_commands_total Total actuator commands applied.
# TYPE registry_commands_total counter
registry_commands_total 42

# HELP go_goroutines Number of goroutines that currently exist.
# TYPE go_goroutines gauge
go_goroutines 18

# HELP http_request_duration_seconds Request latency.
# TYPE http_request_duration_seconds histogram
http_request_duration_seconds_bucket{le="0.1"} 100
http_request_duration_seconds_sum 3.2
http_request_duration_seconds_count 100
`

func TestScrape_SummarizesRegistryFamilies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(registryMetrics))
	}))
	defer srv.Close()

	p := New(srv.URL, "/metrics", time.Second)
	sum, err := p.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if got := sum.Series["registry_readings_total"]; got != 1500 {
		t.Errorf("registry_readings_total: got %v, want 1500", got)
	}
	if got := sum.Series["registry_commands_total"]; got != 42 {
		t.Errorf("registry_commands_total: got %v, want 42", got)
	}
	if got := sum.Series["go_goroutines"]; got != 18 {
		t.Errorf("go_goroutines: got %v, want 18", got)
	}
	// Histograms are not summed into the series map.
	if _, ok := sum.Series["http_request_duration_seconds"]; ok {
		t.Error("histogram family should not appear in series")
	}
	if sum.Families == 0 {
		t.Error("families: got 0, want > 0")
	}
}

func TestScrape_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, "/metrics", time.Second)
	if _, err := p.Scrape(context.Background()); err == nil {
		t.Fatal("expected error on 503, got nil")
	}
}

func TestScrape_Unreachable(t *testing.T) {
	p := New("http://127.0.0.1:1", "/metrics", 200*time.Millisecond)
	if _, err := p.Scrape(context.Background()); err == nil {
		t.Fatal("expected error for unreachable endpoint, got nil")
	}
}

func TestNew_PathNormalization(t *testing.T) {
	p := New("http://registry:8080/", "metrics", time.Second)
	if p.url != "http://registry:8080/metrics" {
		t.Errorf("url: got %q, want http://registry:8080/metrics", p.url)
	}
}

func TestFormat(t *testing.T) {
	s := &Summary{
		Families: 7,
		Series: map[string]float64{
			"registry_readings_total": 1500,
			"go_goroutines":           18,
		},
	}
	out := s.Format()
	if !strings.Contains(out, "registry_readings_total = 1500") {
		t.Errorf("Format missing readings line: %q", out)
	}
	if !strings.HasPrefix(out, "Registry metrics (7 families):") {
		t.Errorf("Format header: %q", out)
	}

	empty := &Summary{Families: 3, Series: map[string]float64{}}
	if !strings.Contains(empty.Format(), "no registry_* series") {
		t.Errorf("empty Format: %q", empty.Format())
	}
}
