package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const portfolioYAML = `
properties:
  - name: Flat 1
    active: true
    purchasePrice: 200000
    purchaseDate: "2020-06-01"
    deposit: 50000
    marketValue: 250000
    weeklyRent: 300
    managementFeePercent: 10
    epcRating: D
    ownership: individual
    ukResident: true
    ukTaxFreeAllowance: true
  - name: Terrace
    active: true
    purchasePrice: 250000
    purchaseDate: "2023-01-15"
    deposit: 50000
    marketValue: 260000
    weeklyRent: 200
    epcRating: C
    ownership: company
    ukResident: true
    mortgage:
      type: interest_only
      balance: 200000
      interestRate: 6
      yearsRemaining: 25
`

type testAnalysisResponse struct {
	AnalysisID string `json:"analysisId"`
	Forecasts  []struct {
		Name     string `json:"name"`
		CashFlow []struct {
			NetCashFlowAfterTax decimal.Decimal `json:"netCashFlowAfterTax"`
		} `json:"cashFlow"`
		Metrics struct {
			Optimizations []struct {
				Field     string          `json:"field"`
				Value     decimal.Decimal `json:"value"`
				Converged bool            `json:"converged"`
			} `json:"optimizations"`
		} `json:"metrics"`
	} `json:"forecasts"`
	Summary struct {
		Properties int `json:"properties"`
	} `json:"summary"`
	CSV        string   `json:"csv"`
	Warnings   []string `json:"warnings"`
	Duration   string   `json:"duration"`
	ConfigYAML string   `json:"configYaml"`
}

type testCalculatorResponse struct {
	AnalysisID string                     `json:"analysisId"`
	Result     map[string]json.RawMessage `json:"result"`
	Duration   string                     `json:"duration"`
}

func (r testCalculatorResponse) amount(t *testing.T, field string) decimal.Decimal {
	t.Helper()
	var value decimal.Decimal
	if err := json.Unmarshal(r.Result[field], &value); err != nil {
		t.Fatalf("failed to decode result field %s: %v", field, err)
	}
	return value
}

func newTestHandler() http.Handler {
	return NewHandler(zap.NewNop(), nil, "test")
}

func TestHandleForecastSuccess(t *testing.T) {
	rr := performUpload(t, newTestHandler(), portfolioYAML, "portfolio.yaml")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp testAnalysisResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if _, err := uuid.Parse(resp.AnalysisID); err != nil {
		t.Errorf("analysisId %q is not a UUID: %v", resp.AnalysisID, err)
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
	if len(resp.Forecasts) != 2 || resp.Forecasts[0].Name != "Flat 1" || resp.Forecasts[1].Name != "Terrace" {
		t.Fatalf("unexpected forecasts: %+v", resp.Forecasts)
	}
	if got := resp.Forecasts[0].CashFlow[0].NetCashFlowAfterTax; !got.Equal(decimal.RequireFromString("12893.58")) {
		t.Errorf("Flat 1 year 1 cash flow after tax = %s, expected 12893.58", got)
	}
	if resp.Summary.Properties != 2 {
		t.Errorf("summary.properties = %d, expected 2", resp.Summary.Properties)
	}
	if !strings.HasPrefix(resp.CSV, "property,year") {
		t.Errorf("expected CSV in response, got %q", resp.CSV)
	}
	if !strings.Contains(resp.ConfigYAML, "Terrace") {
		t.Errorf("expected the uploaded config to be echoed back")
	}
}

func TestHandleAnalysisOptimize(t *testing.T) {
	payload := map[string]interface{}{
		"config": map[string]interface{}{
			"properties": []interface{}{
				map[string]interface{}{
					"name":          "Terrace",
					"active":        true,
					"purchasePrice": 250000,
					"purchaseDate":  "2023-01-15",
					"deposit":       50000,
					"marketValue":   260000,
					"weeklyRent":    200,
					"epcRating":     "C",
					"ownership":     "company",
					"ukResident":    true,
					"mortgage": map[string]interface{}{
						"type":           "interest_only",
						"balance":        200000,
						"interestRate":   6,
						"yearsRemaining": 25,
					},
				},
			},
		},
		"options": map[string]interface{}{"optimize": "true"},
	}

	rr := performJSON(t, newTestHandler(), payload, "/api/analysis")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp testAnalysisResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Forecasts) != 1 {
		t.Fatalf("expected one forecast, got %d", len(resp.Forecasts))
	}

	optimizations := resp.Forecasts[0].Metrics.Optimizations
	if len(optimizations) != 2 {
		t.Fatalf("expected rent and rate optimizations, got %+v", optimizations)
	}
	expected := map[string]string{"weeklyRent": "248.72", "mortgageRate": "4.82"}
	for _, o := range optimizations {
		if !o.Converged || !o.Value.Equal(decimal.RequireFromString(expected[o.Field])) {
			t.Errorf("optimization %s = %s (converged %t), expected %s", o.Field, o.Value, o.Converged, expected[o.Field])
		}
	}
}

func TestHandleAnalysisInvalidProperty(t *testing.T) {
	payload := map[string]interface{}{
		"properties": []interface{}{
			map[string]interface{}{
				"name":         "Bad",
				"active":       true,
				"purchaseDate": "2020-01-01",
				"ownership":    "trust",
			},
		},
	}

	rr := performJSON(t, newTestHandler(), payload, "/api/analysis")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "ownership") {
		t.Errorf("expected ownership error, got %s", rr.Body.String())
	}
}

func TestHandleCalculators(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		payload  map[string]interface{}
		field    string
		expected string
	}{
		{
			name: "SDLT individual buy-to-let",
			path: "/api/sdlt",
			payload: map[string]interface{}{
				"purchaseDate": "2025-06-01", "price": 300000, "buyerType": "uk_individual", "isBtl": true,
			},
			field:    "sdlt",
			expected: "20000",
		},
		{
			name: "SDLT company flat rate",
			path: "/api/sdlt",
			payload: map[string]interface{}{
				"purchaseDate": "2025-06-15", "price": "600000", "buyerType": "uk_company", "isBtl": true,
			},
			field:    "sdlt",
			expected: "102000",
		},
		{
			name:     "Income tax basic rate",
			path:     "/api/income-tax",
			payload:  map[string]interface{}{"income": 30000},
			field:    "taxPayable",
			expected: "3486",
		},
		{
			name: "CGT higher rate",
			path: "/api/cgt",
			payload: map[string]interface{}{
				"salePrice": 300000, "purchasePrice": 200000, "ownership": "individual", "rateBand": "higher",
			},
			field:    "liability",
			expected: "23280",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, newTestHandler(), tt.payload, tt.path)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp testCalculatorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if _, err := uuid.Parse(resp.AnalysisID); err != nil {
				t.Errorf("analysisId %q is not a UUID", resp.AnalysisID)
			}
			if got := resp.amount(t, tt.field); !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("%s = %s, expected %s", tt.field, got, tt.expected)
			}
		})
	}
}

func TestHandleCalculatorErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		payload  map[string]interface{}
		contains string
	}{
		{
			name:     "Misspelt buyer type",
			path:     "/api/sdlt",
			payload:  map[string]interface{}{"purchaseDate": "2025-06-01", "price": 300000, "buyerType": "uk_indivdual"},
			contains: "did you mean",
		},
		{
			name:     "Negative price",
			path:     "/api/sdlt",
			payload:  map[string]interface{}{"purchaseDate": "2025-06-01", "price": -1, "buyerType": "uk_individual"},
			contains: "non-negative",
		},
		{
			name:     "Date beyond the rate tables",
			path:     "/api/sdlt",
			payload:  map[string]interface{}{"purchaseDate": "2051-01-01", "price": 300000, "buyerType": "uk_individual"},
			contains: "2051",
		},
		{
			name:     "Bad date",
			path:     "/api/sdlt",
			payload:  map[string]interface{}{"purchaseDate": "01/06/2025", "price": 300000, "buyerType": "uk_individual"},
			contains: "01/06/2025",
		},
		{
			name:     "Negative income",
			path:     "/api/income-tax",
			payload:  map[string]interface{}{"income": -100},
			contains: "non-negative",
		},
		{
			name:     "Unknown ownership",
			path:     "/api/cgt",
			payload:  map[string]interface{}{"salePrice": 1, "ownership": "trust"},
			contains: "ownership",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(t, newTestHandler(), tt.payload, tt.path)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("expected error containing %q, got %s", tt.contains, rr.Body.String())
			}
		})
	}
}

func TestHandleConfigExport(t *testing.T) {
	payload := map[string]interface{}{
		"properties": []interface{}{
			map[string]interface{}{
				"name":   "sample",
				"active": true,
			},
		},
		"assumptions": map[string]interface{}{
			"inflationRate": 0.03,
		},
		"output": map[string]interface{}{
			"format": "pretty",
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
	}

	rr := performJSON(t, newTestHandler(), payload, "/api/export")
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

	var topLevel []string
	for _, line := range strings.Split(strings.TrimRight(yamlStr, "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-") {
			continue
		}
		topLevel = append(topLevel, strings.TrimSuffix(strings.Fields(line)[0], ":"))
	}

	expected := []string{"logging", "output", "assumptions", "properties"}
	if strings.Join(topLevel, ",") != strings.Join(expected, ",") {
		t.Fatalf("top-level keys = %v, expected %v", topLevel, expected)
	}
}

func TestHandleVersion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"version":"test"`) {
		t.Errorf("unexpected version body %s", rr.Body.String())
	}
}

func TestHandleMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/forecast"},
		{http.MethodGet, "/api/analysis"},
		{http.MethodGet, "/api/sdlt"},
		{http.MethodGet, "/api/export"},
		{http.MethodPost, "/api/version"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			newTestHandler().ServeHTTP(rr, req)

			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected status 405, got %d", rr.Code)
			}
		})
	}
}

func TestHandleForecastUploadTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(64)
	handler := NewHandler(zap.NewNop(), cfg, "test")
	rr := performUpload(t, handler, portfolioYAML, "portfolio.yaml")

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func portfolioPayload(t *testing.T, options map[string]interface{}) map[string]interface{} {
	t.Helper()
	configMap, err := decodeYAMLToMap([]byte(portfolioYAML))
	if err != nil {
		t.Fatalf("failed to decode portfolio: %v", err)
	}
	payload := map[string]interface{}{"config": configMap}
	if options != nil {
		payload["options"] = options
	}
	return payload
}

func TestHandleAnalysisServerDefaults(t *testing.T) {
	tests := []struct {
		name                  string
		analysis              AnalysisConfig
		options               map[string]interface{}
		assumptions           map[string]interface{}
		expectedStatus        int
		expectedOptimizations int
		expectedYAML          string
	}{
		{
			name:                  "Optimize by default",
			analysis:              AnalysisConfig{Optimize: true},
			expectedStatus:        http.StatusOK,
			expectedOptimizations: 2,
		},
		{
			name:                  "Request turns optimize off",
			analysis:              AnalysisConfig{Optimize: true},
			options:               map[string]interface{}{"optimize": false},
			expectedStatus:        http.StatusOK,
			expectedOptimizations: 0,
		},
		{
			name:           "Acquisition costs default on",
			analysis:       AnalysisConfig{IncludeAcquisitionCosts: true},
			expectedStatus: http.StatusOK,
			expectedYAML:   "includeAcquisitionCosts: true",
		},
		{
			name:           "Portfolio keeps its own acquisition cost setting",
			analysis:       AnalysisConfig{IncludeAcquisitionCosts: true},
			assumptions:    map[string]interface{}{"includeAcquisitionCosts": false},
			expectedStatus: http.StatusOK,
			expectedYAML:   "includeAcquisitionCosts: false",
		},
		{
			name:           "Too many active properties",
			analysis:       AnalysisConfig{MaxProperties: 1},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Analysis = tt.analysis
			payload := portfolioPayload(t, tt.options)
			if tt.assumptions != nil {
				payload["config"].(map[string]interface{})["assumptions"] = tt.assumptions
			}

			rr := performJSON(t, NewHandler(zap.NewNop(), cfg, "test"), payload, "/api/analysis")
			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if rr.Code != http.StatusOK {
				if !strings.Contains(rr.Body.String(), "limit is 1") {
					t.Errorf("expected property limit error, got %s", rr.Body.String())
				}
				return
			}

			var resp testAnalysisResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got := len(resp.Forecasts[1].Metrics.Optimizations); got != tt.expectedOptimizations {
				t.Errorf("Terrace optimizations = %d, expected %d", got, tt.expectedOptimizations)
			}
			if tt.expectedYAML != "" && !strings.Contains(resp.ConfigYAML, tt.expectedYAML) {
				t.Errorf("configYaml = %q, expected it to contain %q", resp.ConfigYAML, tt.expectedYAML)
			}
		})
	}
}

func TestHandleForecastMissingFile(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing configuration file") {
		t.Errorf("unexpected error body %s", rr.Body.String())
	}
}

func TestHandleForecastInvalidYAML(t *testing.T) {
	rr := performUpload(t, newTestHandler(), "properties: [unterminated", "bad.yaml")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		value    interface{}
		expected bool
	}{
		{true, true},
		{"true", true},
		{" 1 ", true},
		{"", false},
		{"nope", false},
		{float64(1), true},
		{float64(0), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := coerceBool(tt.value); got != tt.expected {
			t.Errorf("coerceBool(%v) = %t, expected %t", tt.value, got, tt.expected)
		}
	}
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

	req := httptest.NewRequest(http.MethodPost, "/api/forecast", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func performJSON(t *testing.T, handler http.Handler, payload map[string]interface{}, path string) *httptest.ResponseRecorder {
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
