package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"latmatrix/internal/services"
)

var verbose bool
var baseURL *url.URL

// scenario 封装一次端到端巡检过程中共享的资源。
type scenario struct {
	client *http.Client
}

func banner(title string) {
	log.Printf("\n=== %s ===", title)
}

func step(format string, args ...interface{}) {
	log.Printf(" • "+format, args...)
}

type regionInfo struct {
	Name             string `json:"name"`
	ISOCountryCodeA2 string `json:"iso_country_code_a2"`
	PhysicalLocation string `json:"physical_location"`
}

type regionResponse struct {
	EligibleRegions []regionInfo `json:"eligible_regions"`
}

type regionListResponse struct {
	Provider string       `json:"provider"`
	Regions  []regionInfo `json:"regions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	var (
		base       string
		provider   string
		origin     string
		maxLatency float64
		timeout    time.Duration
	)

	flag.StringVar(&base, "base", "http://127.0.0.1:8080", "Base URL of the latmatrix server")
	flag.StringVar(&provider, "provider", "azure", "Cloud provider to query")
	flag.StringVar(&origin, "origin", "eastus", "Origin region for the eligibility query")
	flag.Float64Var(&maxLatency, "max-latency", 100, "Latency threshold in milliseconds")
	flag.DurationVar(&timeout, "timeout", 20*time.Second, "HTTP timeout for requests")
	flag.BoolVar(&verbose, "v", true, "Verbose logging")
	flag.Parse()

	var err error
	baseURL, err = url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		log.Fatalf("parse base url: %v", err)
	}

	sc := &scenario{client: &http.Client{Timeout: timeout}}
	sc.run(provider, origin, maxLatency)
}

func (s *scenario) run(provider, origin string, maxLatency float64) {
	must := func(err error, msg string) {
		if err != nil {
			log.Fatalf("%s: %v", msg, err)
		}
	}

	log.Printf("E2E start -> %s", baseURL)

	banner("Health Checks")
	step("Probe /healthz")
	must(expectStatusOK(s.client, "/healthz"), "healthz")
	step("Probe /health (legacy alias)")
	must(expectStatusOK(s.client, "/health"), "health alias")
	step("Probe /metrics")
	must(expectStatusOK(s.client, "/metrics"), "metrics")

	banner("Merge Pipeline Smoke")
	dir, err := os.MkdirTemp("", "latmatrix-e2e-*")
	must(err, "mkdir temp")
	defer os.RemoveAll(dir)
	reports := filepath.Join(dir, "reports")
	must(os.Mkdir(reports, 0o755), "mkdir reports")
	step("Write sample latency reports")
	must(os.WriteFile(filepath.Join(reports, "a.csv"), []byte("Source,Lat\nX,10\nY,20\n"), 0o644), "write a.csv")
	must(os.WriteFile(filepath.Join(reports, "b.csv"), []byte("Source,Thr\nX,5\nZ,7\n"), 0o644), "write b.csv")
	must(os.WriteFile(filepath.Join(reports, "nokey.csv"), []byte("Region,Lat\nQ,1\n"), 0o644), "write nokey.csv")
	out := filepath.Join(dir, "matrix.csv")
	step("Merge reports into a matrix")
	res, err := services.NewMergeService(reports, out).Run()
	must(err, "merge run")
	if res.Files != 2 || len(res.Skipped) != 1 {
		log.Fatalf("unexpected merge stats: %+v", res)
	}
	step("Verify matrix shape")
	b, err := os.ReadFile(out)
	must(err, "read matrix")
	if !strings.HasPrefix(string(b), "Source,Lat,Thr\n") {
		log.Fatalf("unexpected matrix header: %s", safeTrunc(string(b), 200))
	}
	if !strings.Contains(string(b), "N/A") {
		log.Fatalf("matrix missing N/A fill: %s", safeTrunc(string(b), 200))
	}

	banner("Region Queries")
	step("POST /regions/eligible (origin=%s, max=%v)", origin, maxLatency)
	reqBody := map[string]any{
		"origin_region":  origin,
		"max_latency":    maxLatency,
		"cloud_provider": provider,
	}
	var rr regionResponse
	must(doJSON(s.client, "POST", "/regions/eligible", reqBody, 200, &rr), "eligible regions")
	if len(rr.EligibleRegions) == 0 {
		log.Fatalf("no eligible regions returned for %s", origin)
	}
	originIncluded := false
	for _, r := range rr.EligibleRegions {
		if r.Name == origin {
			originIncluded = true
			break
		}
	}
	step("Eligible regions: %d (origin included: %v)", len(rr.EligibleRegions), originIncluded)

	step("Reject unsupported provider")
	var er errorResponse
	must(doJSON(s.client, "POST", "/regions/eligible",
		map[string]any{"origin_region": origin, "max_latency": maxLatency, "cloud_provider": "doesnotexist"},
		400, &er), "unsupported provider")
	if er.Error != "unsupported cloud provider" {
		log.Fatalf("unexpected error text: %q", er.Error)
	}
	step("Reject non-positive max_latency")
	must(doJSON(s.client, "POST", "/regions/eligible",
		map[string]any{"origin_region": origin, "max_latency": 0, "cloud_provider": provider},
		400, nil), "non-positive max_latency")

	step("GET /regions?provider=%s", provider)
	var lr regionListResponse
	must(doJSON(s.client, "GET", "/regions?provider="+url.QueryEscape(provider), nil, 200, &lr), "list regions")
	if len(lr.Regions) == 0 {
		log.Fatalf("region list is empty")
	}
	if !sort.SliceIsSorted(lr.Regions, func(i, j int) bool { return lr.Regions[i].Name < lr.Regions[j].Name }) {
		log.Fatalf("region list not sorted by name")
	}

	step("Verify query metrics exposed")
	must(expectBodyContains(s.client, "/metrics", "region_queries_total"), "query metrics")

	banner("Completion")
	log.Printf("\nE2E OK — 全链路检查通过 (provider=%s, regions=%d)\n", provider, len(lr.Regions))
}

func doJSON(client *http.Client, method, path string, body any, want int, out any) error {
	urlStr := baseURL.String() + path
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
		if verbose {
			log.Printf("%s %s\n请求体: %s", method, urlStr, prettyJSON(b))
		}
	}
	req, err := http.NewRequest(method, urlStr, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d, want %d, body: %s", method, urlStr, resp.StatusCode, want, safeTrunc(string(b), 800))
	}
	if verbose {
		log.Printf("%s %s -> %d\n响应体: %s", method, urlStr, resp.StatusCode, prettyJSON(b))
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return err
		}
	}
	return nil
}

func expectStatusOK(client *http.Client, path string) error {
	resp, err := client.Get(baseURL.String() + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != 200 {
		return fmt.Errorf("GET %s: status %d body: %s", path, resp.StatusCode, safeTrunc(string(b), 800))
	}
	if verbose {
		log.Printf("GET %s -> %d\n响应体: %s", path, resp.StatusCode, safeTrunc(string(b), 1200))
	}
	return nil
}

func expectBodyContains(client *http.Client, path, needle string) error {
	resp, err := client.Get(baseURL.String() + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != 200 {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if !strings.Contains(string(b), needle) {
		return fmt.Errorf("GET %s: body missing %q", path, needle)
	}
	return nil
}

func prettyJSON(b []byte) string {
	var js any
	if err := json.Unmarshal(b, &js); err != nil {
		return safeTrunc(string(b), 1200)
	}
	pb, _ := json.MarshalIndent(js, "", "  ")
	return string(pb)
}

func safeTrunc(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
