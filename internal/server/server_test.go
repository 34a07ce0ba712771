package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/metrics"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func readTestConfig(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "loan.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

func decodeSchedule(t *testing.T, rr *httptest.ResponseRecorder) scheduleResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp scheduleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp["error"]
}

func TestHandleScheduleSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	resp := decodeSchedule(t, performUpload(t, handler, string(readTestConfig(t)), "loan.yaml"))

	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.NotEmpty(t, resp.Duration)
	assert.Equal(t, 124, resp.TotalPayments)
	assert.Len(t, resp.Records, 124)
	assert.Equal(t, 124, resp.Summary.Payments)
	assert.Equal(t, "2026-05-09", datetime.Format(resp.Summary.PayoffDate))
	assert.Equal(t, loans.Regular, resp.Records[0].PaymentType)
	assert.Equal(t, 1, resp.Records[0].Sequence)
	assert.True(t, resp.Summary.FinalBalance.IsZero())
	assert.True(t, strings.HasPrefix(resp.CSV, "sequence,date,days_in_period"))
	assert.NotNil(t, resp.Config)
	assert.NotEmpty(t, resp.ConfigYAML)
	assert.Empty(t, resp.Warnings)
}

func TestHandleScheduleEditorSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(readTestConfig(t), &cfg); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	loan := cfg["loan"].(map[string]interface{})
	loan["frequency"] = "weekly"
	loan["annualRate"] = 0

	rr := performEditorJSON(t, handler, map[string]interface{}{"config": cfg}, "/api/editor/schedule")
	resp := decodeSchedule(t, rr)

	assert.Equal(t, 27, resp.TotalPayments)
	assert.Len(t, resp.Records, 27)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "Annual rate is zero")
	assert.Contains(t, resp.ConfigYAML, "frequency: weekly")
}

func TestHandleScheduleEditorInvalidPayload(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := performEditorJSON(t, handler, map[string]interface{}{"config": "loan"}, "/api/editor/schedule")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid config payload: expected object", decodeError(t, rr))
}

func TestHandleScheduleCached(t *testing.T) {
	m := metrics.New()
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test",
		WithCache(cache.NewMemoryCache(0)), WithMetrics(m))

	config := string(readTestConfig(t))
	first := decodeSchedule(t, performUpload(t, handler, config, "loan.yaml"))
	second := decodeSchedule(t, performUpload(t, handler, config, "loan.yaml"))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CSV, second.CSV)
	require.Len(t, second.Records, len(first.Records))
	assert.True(t, first.Records[10].TotalPayment.Equal(second.Records[10].TotalPayment))
	assert.Equal(t, first.Records[10].Date, second.Records[10].Date)
	assert.True(t, first.Summary.TotalInterest.Equal(second.Summary.TotalInterest))

	// A whitespace-only difference normalizes to the same key.
	third := decodeSchedule(t, performUpload(t, handler, "\n\n"+config, "loan.yaml"))
	assert.True(t, third.Cached)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, "loan_schedule_cache_hits_total 2")
	assert.Contains(t, body, "loan_schedule_cache_misses_total 1")
	assert.Contains(t, body, `loan_schedule_schedules_generated_total{frequency="daily"} 1`)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, string) error {
	return errors.New("connection refused")
}

func TestHandleScheduleCacheErrorsIgnored(t *testing.T) {
	m := metrics.New()
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test",
		WithCache(failingCache{}), WithMetrics(m))

	resp := decodeSchedule(t, performUpload(t, handler, string(readTestConfig(t)), "loan.yaml"))
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Records, 124)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), "loan_schedule_cache_errors_total 2")
}

func TestHandleConfigExport(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	payload := map[string]interface{}{
		"output": map[string]interface{}{
			"format": "pretty",
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
		"calendar": map[string]interface{}{
			"holidays": "us-federal",
		},
		"loan": map[string]interface{}{
			"frequency":  "daily",
			"principal":  10000,
			"startDate":  "2026-01-05",
			"termMonths": 6,
		},
		"notes": "kept",
	}

	rr := performEditorJSON(t, handler, payload, "/api/editor/export")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	yamlStr := resp["configYaml"]
	if yamlStr == "" {
		t.Fatal("expected configYaml in response")
	}

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(yamlStr), &doc))
	require.Len(t, doc.Content, 1)
	root := doc.Content[0]

	keys := func(n *yaml.Node) []string {
		var out []string
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, n.Content[i].Value)
		}
		return out
	}
	topLevel := keys(root)
	loanKeys := keys(root.Content[1])

	assert.Equal(t, []string{"loan", "calendar", "logging", "output", "notes"}, topLevel)
	assert.Equal(t, []string{"startDate", "principal", "termMonths", "frequency"}, loanKeys)
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "  ")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "dev", resp["version"])

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/version", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMetricsRouteOnlyWithMetrics(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleScheduleMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	for _, path := range []string{"/api/schedule", "/api/editor/schedule", "/api/editor/export"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected status 405, got %d", path, rr.Code)
		}
	}
}

func TestHandleScheduleUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(strings.Repeat("a", 128))); err != nil {
		t.Fatalf("failed to write oversized payload: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "upload exceeds limit") {
		t.Fatalf("expected upload limit error message, got %q", msg)
	}
}

func TestHandleScheduleMissingFile(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "missing configuration file" {
		t.Fatalf("expected missing file error, got %q", msg)
	}
}

func TestHandleScheduleRejectedConfigs(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		contains string
		reason   string
	}{
		{
			name:     "Invalid YAML",
			config:   "loan: [",
			contains: "error reading config data",
			reason:   "config",
		},
		{
			name: "Zero principal",
			config: `
loan:
  startDate: "2026-01-05"
  principal: 0
  termMonths: 6
  annualRate: 0.15
  frequency: daily
`,
			contains: "invalid principal",
			reason:   "validation",
		},
		{
			name: "Unsupported term",
			config: `
loan:
  startDate: "2026-01-05"
  principal: 1000
  termMonths: 24
  annualRate: 0.15
  frequency: weekly
`,
			contains: "invalid term months",
			reason:   "validation",
		},
		{
			name: "Bad start date",
			config: `
loan:
  startDate: "January 5"
  principal: 1000
  termMonths: 6
  annualRate: 0.15
  frequency: weekly
`,
			contains: "invalid loan start date",
			reason:   "config",
		},
		{
			name: "Unknown holiday calendar",
			config: `
loan:
  startDate: "2026-01-05"
  principal: 1000
  termMonths: 6
  annualRate: 0.15
  frequency: weekly
calendar:
  holidays: lunar
`,
			contains: "expected calendar holidays",
			reason:   "config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", WithMetrics(m))

			rr := performUpload(t, handler, tt.config, "config.yaml")

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); !strings.Contains(msg, tt.contains) {
				t.Fatalf("expected error containing %q, got %q", tt.contains, msg)
			}

			metricsRR := httptest.NewRecorder()
			handler.ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Contains(t, metricsRR.Body.String(),
				`loan_schedule_schedule_failures_total{reason="`+tt.reason+`"} 1`)
		})
	}
}

func TestHandleScheduleRateLimited(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", WithRateLimiter(limiter))

	config := string(readTestConfig(t))
	first := performUpload(t, handler, config, "loan.yaml")
	second := performUpload(t, handler, config, "loan.yaml")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate limit exceeded", decodeError(t, second))

	// The export endpoint is not limited.
	rr := performEditorJSON(t, handler, map[string]interface{}{}, "/api/editor/export")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func performUpload(t *testing.T, handler http.Handler, content, filename string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func performEditorJSON(t *testing.T, handler http.Handler, payload map[string]interface{}, path string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}
