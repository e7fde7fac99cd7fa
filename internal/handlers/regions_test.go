package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"latmatrix/internal/config"
	"latmatrix/internal/services"
)

const (
	testMatrix = "Source,eastus,westus,westeurope\n" +
		"eastus,N/A,68.5,120\n" +
		"westus,67.9,N/A,140\n"
	testMappings = "Region,ISO,City,Location\n" +
		"eastus,US,Richmond,Virginia\n" +
		"westus,US,Sacramento,California\n" +
		"westeurope,NL,Amsterdam,Netherlands\n"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	mf := filepath.Join(dir, "matrix.csv")
	require.NoError(t, os.WriteFile(mf, []byte(testMatrix), 0o644))
	gf := filepath.Join(dir, "map.csv")
	require.NoError(t, os.WriteFile(gf, []byte(testMappings), 0o644))

	cfg := config.Config{
		Env:    "dev",
		Limits: config.LimitConfig{QueriesPerMinute: 100, Window: time.Minute},
		Data: config.DataConfig{
			Providers: map[string]config.ProviderConfig{
				"azure": {LatencyMatrix: mf, RegionMappings: gf},
			},
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svcs := make(map[string]*services.LatencyService)
	for name, p := range cfg.Data.Providers {
		svc, err := services.NewLatencyService(p.LatencyMatrix, p.RegionMappings)
		require.NoError(t, err)
		svcs[name] = svc
	}
	r := gin.New()
	New(cfg, svcs).RegisterRoutes(r)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestEligibleRegions(t *testing.T) {
	r := newTestRouter(t, nil)
	w := postJSON(r, "/regions/eligible",
		`{"origin_region":"eastus","max_latency":100,"cloud_provider":"azure"}`)
	require.Equal(t, 200, w.Code)
	require.JSONEq(t, `{"eligible_regions":[
		{"name":"eastus","iso_country_code_a2":"US","physical_location":"Virginia"},
		{"name":"westus","iso_country_code_a2":"US","physical_location":"California"}
	]}`, w.Body.String())
}

func TestEligibleRegionsEmptyResult(t *testing.T) {
	// 自身延迟有记录且超限、其它区域也全部超限时结果为空，序列化为 null
	dir := t.TempDir()
	mf := filepath.Join(dir, "matrix.csv")
	require.NoError(t, os.WriteFile(mf, []byte("Source,eastus,westus\neastus,5,200\n"), 0o644))
	gf := filepath.Join(dir, "map.csv")
	require.NoError(t, os.WriteFile(gf, []byte(testMappings), 0o644))
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.Data.Providers = map[string]config.ProviderConfig{
			"azure": {LatencyMatrix: mf, RegionMappings: gf},
		}
	})

	w := postJSON(r, "/regions/eligible",
		`{"origin_region":"eastus","max_latency":1,"cloud_provider":"azure"}`)
	require.Equal(t, 200, w.Code)
	require.JSONEq(t, `{"eligible_regions":null}`, w.Body.String())
}

func TestEligibleRegionsValidation(t *testing.T) {
	r := newTestRouter(t, nil)
	cases := []struct {
		body    string
		wantErr string
	}{
		{`{`, "Invalid request body"},
		{`{}`, "origin_region is required"},
		{`{"origin_region":"eastus"}`, "max_latency must be greater than 0"},
		{`{"origin_region":"eastus","max_latency":-5}`, "max_latency must be greater than 0"},
		{`{"origin_region":"eastus","max_latency":10}`, "cloud_provider is required"},
		{`{"origin_region":"eastus","max_latency":10,"cloud_provider":"aws"}`, "unsupported cloud provider"},
		{`{"origin_region":"northpole","max_latency":10,"cloud_provider":"azure"}`, "origin region northpole not found"},
	}
	for _, tc := range cases {
		w := postJSON(r, "/regions/eligible", tc.body)
		require.Equal(t, 400, w.Code, tc.body)
		require.JSONEq(t, `{"error":"`+tc.wantErr+`"}`, w.Body.String(), tc.body)
	}
}

func TestListRegions(t *testing.T) {
	r := newTestRouter(t, nil)
	w := get(r, "/regions")
	require.Equal(t, 200, w.Code)
	require.JSONEq(t, `{"provider":"azure","regions":[
		{"name":"eastus","iso_country_code_a2":"US","physical_location":"Virginia"},
		{"name":"westeurope","iso_country_code_a2":"NL","physical_location":"Netherlands"},
		{"name":"westus","iso_country_code_a2":"US","physical_location":"California"}
	]}`, w.Body.String())

	w = get(r, "/regions?provider=aws")
	require.Equal(t, 400, w.Code)
	require.JSONEq(t, `{"error":"unsupported cloud provider"}`, w.Body.String())
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{"/healthz", "/health"} {
		w := get(r, path)
		require.Equal(t, 200, w.Code, path)
		require.JSONEq(t, `{"status":"healthy"}`, w.Body.String(), path)
	}
}

func TestQueryCORS(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.CORS.EnableQuery = true
		cfg.CORS.AllowedOrigins = []string{"https://app.example.com"}
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/regions/eligible", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)
	require.Equal(t, 204, w.Code)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	// 未放行的来源不回显
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/regions", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	require.Equal(t, 204, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// 关闭 CORS 时不注册预检路由
	plain := newTestRouter(t, nil)
	w = httptest.NewRecorder()
	plain.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/regions", nil))
	require.Equal(t, 404, w.Code)
}

func TestQueryRateLimit(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.Limits.QueriesPerMinute = 2
	})
	require.Equal(t, 200, get(r, "/regions").Code)
	require.Equal(t, 200, get(r, "/regions").Code)
	w := get(r, "/regions")
	require.Equal(t, 429, w.Code)
	require.JSONEq(t, `{"error":"rate_limited"}`, w.Body.String())
}

func TestDevProvidersGatedByEnv(t *testing.T) {
	dev := newTestRouter(t, nil)
	w := get(dev, "/dev/providers")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "latency_matrix")

	prod := newTestRouter(t, func(cfg *config.Config) { cfg.Env = "prod" })
	require.Equal(t, 404, get(prod, "/dev/providers").Code)
}
