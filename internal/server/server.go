package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/forecast"
	"github.com/iwvelando/property-forecast/internal/optimizer"
	"github.com/iwvelando/property-forecast/pkg/cgt"
	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/finance"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/ratetable"
	"github.com/iwvelando/property-forecast/pkg/sdlt"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	analysis      AnalysisConfig
	version       string
	sdlt          *sdlt.Calculator
}

type forecastOptions struct {
	Optimize bool
}

// NewHandler constructs the HTTP handler that serves the analysis and
// calculator API. A nil cfg uses DefaultConfig.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: cfg.UploadSizeBytes(),
		analysis:      cfg.Analysis,
		version:       trimmedVersion,
		sdlt:          sdlt.NewCalculator(),
	}

	mux := http.NewServeMux()

	// Portfolio analysis (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Portfolio analysis from a JSON document
	mux.HandleFunc("/api/analysis", h.handleAnalysis)

	// Single calculators
	mux.HandleFunc("/api/sdlt", h.handleSDLT)
	mux.HandleFunc("/api/income-tax", h.handleIncomeTax)
	mux.HandleFunc("/api/cgt", h.handleCGT)

	// Config serialization endpoint for downloads
	mux.HandleFunc("/api/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type analysisResponse struct {
	AnalysisID string `json:"analysisId"`
	output.Report
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type calculatorResponse struct {
	AnalysisID string      `json:"analysisId"`
	Result     interface{} `json:"result"`
	Duration   string      `json:"duration"`
}

type sdltRequest struct {
	PurchaseDate string          `json:"purchaseDate"`
	Price        decimal.Decimal `json:"price"`
	BuyerType    string          `json:"buyerType"`
	IsBTL        bool            `json:"isBtl"`
}

type incomeTaxRequest struct {
	Income decimal.Decimal `json:"income"`
}

type cgtRequest struct {
	SalePrice          decimal.Decimal  `json:"salePrice"`
	PurchasePrice      decimal.Decimal  `json:"purchasePrice"`
	AcquisitionCosts   decimal.Decimal  `json:"acquisitionCosts"`
	ImprovementCosts   decimal.Decimal  `json:"improvementCosts"`
	SellingCosts       decimal.Decimal  `json:"sellingCosts"`
	Ownership          string           `json:"ownership"`
	ReferenceIncome    decimal.Decimal  `json:"referenceIncome"`
	RateBand           string           `json:"rateBand"`
	AnnualExemptAmount *decimal.Decimal `json:"annualExemptAmount,omitempty"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err))
		return
	}

	options := forecastOptions{Optimize: h.analysis.Optimize}
	if values, ok := r.MultipartForm.Value["optimize"]; ok && len(values) > 0 {
		options.Optimize = coerceBool(values[0])
	}
	h.runForecast(w, configBytes, configMap, start, "server.handleForecast", options)
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

func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalysis"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	options := forecastOptions{Optimize: h.analysis.Optimize}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid options payload: expected object", op)
			return
		}
		if optimizeVal, ok := optsMap["optimize"]; ok {
			options.Optimize = coerceBool(optimizeVal)
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runForecast(w, configBytes, configMap, start, op, options)
}

func (h *handler) handleSDLT(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSDLT"
	var req sdltRequest
	start, ok := h.decodeCalculatorRequest(w, r, &req, op)
	if !ok {
		return
	}

	purchaseDate, err := datetime.ParseDate(req.PurchaseDate)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	buyer, err := tax.ParseBuyerType(req.BuyerType)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	result, err := h.sdlt.Compute(purchaseDate, req.Price, buyer, req.IsBTL)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.respondCalculator(w, result, start, op)
}

func (h *handler) handleIncomeTax(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleIncomeTax"
	var req incomeTaxRequest
	start, ok := h.decodeCalculatorRequest(w, r, &req, op)
	if !ok {
		return
	}

	result, err := tax.ComputeIncomeTax(req.Income)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.respondCalculator(w, result, start, op)
}

func (h *handler) handleCGT(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCGT"
	var req cgtRequest
	start, ok := h.decodeCalculatorRequest(w, r, &req, op)
	if !ok {
		return
	}

	ownership, err := tax.ParseOwnership(req.Ownership)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	band, err := cgt.ParseRateBand(req.RateBand)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := cgt.Compute(cgt.Disposal{
		SalePrice:        req.SalePrice,
		PurchasePrice:    req.PurchasePrice,
		AcquisitionCosts: req.AcquisitionCosts,
		ImprovementCosts: req.ImprovementCosts,
		SellingCosts:     req.SellingCosts,
	}, cgt.Options{
		Ownership:          ownership,
		ReferenceIncome:    req.ReferenceIncome,
		RateBand:           band,
		AnnualExemptAmount: req.AnnualExemptAmount,
	})
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.respondCalculator(w, result, start, op)
}

func (h *handler) decodeCalculatorRequest(w http.ResponseWriter, r *http.Request, req interface{}, op string) (time.Time, bool) {
	start := time.Now()
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return start, false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return start, false
	}
	return start, true
}

func (h *handler) respondCalculator(w http.ResponseWriter, result interface{}, start time.Time, op string) {
	elapsed := time.Since(start)
	response := calculatorResponse{
		AnalysisID: uuid.NewString(),
		Result:     result,
		Duration:   elapsed.String(),
	}
	h.logger.Debug("calculation completed",
		zap.String("op", op),
		zap.String("analysisId", response.AnalysisID),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, response)
}

// statusFor maps calculator input errors to 400 and anything else to 500.
func statusFor(err error) int {
	var (
		invalidAmount *tax.InvalidAmountError
		invalidBuyer  *tax.InvalidBuyerTypeError
		noRate        *ratetable.NoApplicableRateError
	)
	switch {
	case errors.As(err, &invalidAmount), errors.As(err, &invalidBuyer), errors.As(err, &noRate),
		errors.Is(err, finance.ErrDivisionUndefined):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "assumptions"} {
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

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
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

func (h *handler) runForecast(w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts forecastOptions) {
	if configMap == nil {
		configMap = make(map[string]interface{})
	}
	if h.analysis.IncludeAcquisitionCosts && defaultAcquisitionCosts(configMap) {
		encoded, err := yaml.Marshal(configMap)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
			return
		}
		configBytes = encoded
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if limit := h.analysis.MaxProperties; limit > 0 {
		if active := len(cfg.ActiveProperties()); active > limit {
			h.respondErrorWithOp(w, http.StatusBadRequest,
				fmt.Sprintf("portfolio has %d active properties, the limit is %d", active, limit), op)
			return
		}
	}

	warnings := cfg.ValidateConfiguration()

	var optimizationResult *optimizer.Result
	if opts.Optimize {
		optimizer.AddDefaultDirectives(cfg)
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
			return
		}

		optimizationResult, err = runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
			return
		}
	}

	// Forecast errors come from the uploaded portfolio, so they are client
	// errors.
	results, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	if optimizationResult != nil && !optimizationResult.Empty() {
		optimizationResult.Apply(results)
	}

	elapsed := time.Since(start)

	response := analysisResponse{
		AnalysisID: uuid.NewString(),
		Report:     output.NewReport(results),
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("analysisId", response.AnalysisID),
		zap.Int("properties", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// defaultAcquisitionCosts turns includeAcquisitionCosts on in configMap when
// the portfolio leaves it unset, and reports whether it did.
func defaultAcquisitionCosts(configMap map[string]interface{}) bool {
	assumptions, ok := configMap["assumptions"].(map[string]interface{})
	if !ok {
		if configMap["assumptions"] != nil {
			return false
		}
		assumptions = make(map[string]interface{})
		configMap["assumptions"] = assumptions
	}
	for key := range assumptions {
		if strings.EqualFold(key, "includeAcquisitionCosts") {
			return false
		}
	}
	assumptions["includeAcquisitionCosts"] = true
	return true
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

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}
