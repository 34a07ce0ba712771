package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/metrics"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const cacheKeyPrefix = "loan-schedule:v1:"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         cache.Cache
	metrics       *metrics.Metrics
	limiter       *RateLimiter
}

// Option customizes the handler built by NewHandler.
type Option func(*handler)

// WithCache serves repeated configurations from c.
func WithCache(c cache.Cache) Option {
	return func(h *handler) { h.cache = c }
}

// WithMetrics records request metrics in m and exposes them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *handler) { h.metrics = m }
}

// WithRateLimiter applies l to the schedule endpoints.
func WithRateLimiter(l *RateLimiter) Option {
	return func(h *handler) { h.limiter = l }
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()

	// Schedule API endpoint (file upload)
	mux.HandleFunc("/api/schedule", h.rateLimited(h.handleSchedule))

	// Schedule API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/schedule", h.rateLimited(h.handleScheduleEditor))

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)

	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}

	return mux
}

// scheduleResult is the cacheable part of a schedule response.
type scheduleResult struct {
	Summary              loans.Summary         `json:"summary"`
	TotalPayments        int                   `json:"totalPayments"`
	FirstPaymentDate     time.Time             `json:"firstPaymentDate"`
	EffectivePrincipal   decimal.Decimal       `json:"effectivePrincipal"`
	GraceInterest        decimal.Decimal       `json:"graceInterest"`
	LevelPayment         decimal.Decimal       `json:"levelPayment"`
	AverageDaysPerPeriod decimal.Decimal       `json:"averageDaysPerPeriod"`
	Records              []loans.PaymentRecord `json:"records"`
	CSV                  string                `json:"csv"`
	Warnings             []string              `json:"warnings,omitempty"`
}

type scheduleResponse struct {
	ID string `json:"id"`
	scheduleResult
	Duration   string                 `json:"duration"`
	Cached     bool                   `json:"cached"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op, "upload")
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op, "upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file", op, "upload")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op, "upload")
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op, "config")
		return
	}

	h.runSchedule(r.Context(), w, configBytes, configMap, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleScheduleEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op, "config")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, "invalid config payload: expected object", op, "config")
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op, "config")
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op, "config")
		return
	}

	h.runSchedule(r.Context(), w, configBytes, configMap, start, op)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op, "config")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op, "config")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

var (
	topLevelOrder = []string{"loan", "calendar", "logging", "output"}
	loanKeyOrder  = []string{
		"startDate", "principal", "termMonths", "annualRate", "frequency",
		"originationFee", "additionalFee", "additionalFeeTreatment",
		"bankDaysOnly", "interestOnlyPeriods", "gracePeriodDays", "interestMethod",
	}
)

// marshalOrderedConfigYAML writes the known sections in file order, with the
// loan keys in the order of the example configuration. Unknown keys follow,
// sorted.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	if loan, ok := payload["loan"].(map[string]interface{}); ok {
		ordered := make(map[string]interface{}, len(payload))
		for key, value := range payload {
			ordered[key] = value
		}
		ordered["loan"] = newOrderedConfig(loan, loanKeyOrder)
		payload = ordered
	}
	return yaml.Marshal(newOrderedConfig(payload, topLevelOrder))
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func newOrderedConfig(payload map[string]interface{}, order []string) orderedConfig {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range order {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return orderedConfig{items: items}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runSchedule(ctx context.Context, w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op, "config")
		return
	}

	terms, err := cfg.ToLoanTerms()
	if err != nil {
		reason := "config"
		if errors.Is(err, loans.ErrValidation) {
			reason = "validation"
		}
		h.respondError(w, http.StatusBadRequest, err.Error(), op, reason)
		return
	}

	cal, err := cfg.Calendar()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op, "config")
		return
	}

	key, err := scheduleCacheKey(cfg)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to normalize configuration: %v", err), op, "internal")
		return
	}

	result, cached := h.lookup(ctx, key, op)
	if !cached {
		generated := time.Now()
		schedule, err := loans.NewScheduleGenerator(h.logger, cal).Generate(terms)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to generate schedule: %v", err), op, "internal")
			return
		}
		if h.metrics != nil {
			h.metrics.ObserveSchedule(terms.Frequency().String(), time.Since(generated))
		}

		csv, err := output.CsvString(schedule)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op, "internal")
			return
		}

		result = scheduleResult{
			Summary:              schedule.Summary(),
			TotalPayments:        schedule.TotalPayments,
			FirstPaymentDate:     schedule.FirstPaymentDate,
			EffectivePrincipal:   schedule.EffectivePrincipal,
			GraceInterest:        schedule.GraceInterest,
			LevelPayment:         schedule.LevelPayment,
			AverageDaysPerPeriod: schedule.AverageDaysPerPeriod,
			Records:              schedule.Records,
			CSV:                  csv,
			Warnings:             cfg.ValidateConfiguration(),
		}
		h.store(ctx, key, result, op)
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := scheduleResponse{
		ID:             uuid.NewString(),
		scheduleResult: result,
		Duration:       elapsed.String(),
		Cached:         cached,
		Config:         configMap,
		ConfigYAML:     string(configBytes),
	}

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.String("id", response.ID),
		zap.Int("records", len(response.Records)),
		zap.Int("payments", response.Summary.Payments),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// scheduleCacheKey hashes the sections that determine the schedule, after
// defaults and environment overrides have been applied.
func scheduleCacheKey(cfg *config.Configuration) (string, error) {
	normalized, err := yaml.Marshal(struct {
		Loan     config.LoanConfig     `yaml:"loan"`
		Calendar config.CalendarConfig `yaml:"calendar"`
	}{cfg.Loan, cfg.Calendar})
	if err != nil {
		return "", err
	}
	return cache.Key(cacheKeyPrefix, normalized), nil
}

func (h *handler) lookup(ctx context.Context, key, op string) (scheduleResult, bool) {
	if h.cache == nil {
		return scheduleResult{}, false
	}

	raw, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("schedule cache read failed",
			zap.String("op", op),
			zap.Error(err),
		)
		if h.metrics != nil {
			h.metrics.CacheError()
		}
		return scheduleResult{}, false
	}
	if !ok {
		if h.metrics != nil {
			h.metrics.CacheMiss()
		}
		return scheduleResult{}, false
	}

	var result scheduleResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		h.logger.Warn("discarding unreadable cache entry",
			zap.String("op", op),
			zap.Error(err),
		)
		if h.metrics != nil {
			h.metrics.CacheError()
		}
		return scheduleResult{}, false
	}
	if h.metrics != nil {
		h.metrics.CacheHit()
	}
	return result, true
}

func (h *handler) store(ctx context.Context, key string, result scheduleResult, op string) {
	if h.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		h.logger.Warn("failed to encode schedule for cache",
			zap.String("op", op),
			zap.Error(err),
		)
		return
	}
	if err := h.cache.Set(ctx, key, string(raw)); err != nil {
		h.logger.Warn("schedule cache write failed",
			zap.String("op", op),
			zap.Error(err),
		)
		if h.metrics != nil {
			h.metrics.CacheError()
		}
	}
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg, op, reason string) {
	h.logger.Error("schedule request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.observeFailure(reason)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) observeFailure(reason string) {
	if h.metrics != nil {
		h.metrics.ObserveFailure(reason)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
