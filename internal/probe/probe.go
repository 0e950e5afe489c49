package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const defaultTimeout = 10 * time.Second

// wellKnown are runtime families reported even without a registry_ prefix.
var wellKnown = []string{
	"go_goroutines",
	"process_resident_memory_bytes",
	"http_requests_total",
}

// Summary is the condensed view of one metrics scrape.
type Summary struct {
	ScrapedAt time.Time          `json:"scraped_at"`
	Families  int                `json:"families"`
	Series    map[string]float64 `json:"series"`
}

// Prober scrapes a Prometheus text exposition endpoint.
type Prober struct {
	url    string
	client *http.Client
}

// New creates a Prober for baseURL + metricsPath. A non-positive timeout
// falls back to 10 seconds.
func New(baseURL, metricsPath string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if !strings.HasPrefix(metricsPath, "/") {
		metricsPath = "/" + metricsPath
	}
	return &Prober{
		url:    strings.TrimRight(baseURL, "/") + metricsPath,
		client: &http.Client{Timeout: timeout},
	}
}

// Scrape fetches and summarizes the registry's metrics. Families with a
// "registry_" prefix are always included; a few well-known runtime families
// are added when present. Each entry is the sum over the family's series.
func (p *Prober) Scrape(ctx context.Context) (*Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("probe: build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("probe: unexpected status %d", resp.StatusCode)
	}

	mfs, err := parseMetrics(resp.Body)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ScrapedAt: time.Now().UTC(),
		Families:  len(mfs),
		Series:    make(map[string]float64),
	}
	for name, mf := range mfs {
		if strings.HasPrefix(name, "registry_") {
			sum.Series[name] = sumFamily(mf)
		}
	}
	for _, name := range wellKnown {
		if mf, ok := mfs[name]; ok {
			sum.Series[name] = sumFamily(mf)
		}
	}
	return sum, nil
}

// Format renders a Summary as operator-readable text.
func (s *Summary) Format() string {
	if len(s.Series) == 0 {
		return fmt.Sprintf("Registry metrics: %d families, no registry_* series exposed.", s.Families)
	}
	names := make([]string, 0, len(s.Series))
	for name := range s.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Registry metrics (%d families):\n", s.Families)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s = %g\n", name, s.Series[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseMetrics decodes a Prometheus text exposition from r.
// A partial result with a non-fatal parse warning is still returned.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("probe: parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
func sumFamily(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
