package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func performJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp["error"]
}

func TestSimulateWithPostedData(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 1000000, InitialWithdrawalRate: 5, Years: 3},
		AnnualData: []annualDatumPayload{
			{Year: 2001, ReturnPercent: 8, InflationPercent: 2},
			{Year: 2002, ReturnPercent: 10, InflationPercent: 3},
			{Year: 2003, ReturnPercent: -4, InflationPercent: 2},
		},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(resp.RunID); err != nil {
		t.Fatalf("run_id %q is not a UUID: %v", resp.RunID, err)
	}
	if len(resp.Comparison.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(resp.Comparison.Runs))
	}
	run := resp.Comparison.Runs[0]
	if run.Policy != "guardrails" {
		t.Fatalf("default policy = %q, want guardrails", run.Policy)
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 simulated years, got %d", len(run.Results))
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
}

func TestSimulateEmbeddedDatasetFallback(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 500000, InitialWithdrawalRate: 4, Years: 30},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DatasetName == "" {
		t.Fatal("expected dataset name when falling back to embedded data")
	}
	if len(resp.Comparison.Runs[0].Results) != 30 {
		t.Fatalf("expected 30 simulated years, got %d", len(resp.Comparison.Runs[0].Results))
	}
}

func TestSimulateComparesPoliciesInRequestOrder(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 750000, InitialWithdrawalRate: 4.5, Years: 10},
		Policies:   []string{"guardrails", "fixed_percentage", "inflation_adjusted"},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []string{"guardrails", "fixed_percentage", "inflation_adjusted"}
	if len(resp.Comparison.Runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(resp.Comparison.Runs))
	}
	for i, name := range want {
		if resp.Comparison.Runs[i].Policy != name {
			t.Fatalf("run %d policy = %q, want %q", i, resp.Comparison.Runs[i].Policy, name)
		}
	}
}

func TestSimulateDepletedPlanReturns422(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	// An aggressive rate into two crash years exhausts the portfolio early.
	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 100000, InitialWithdrawalRate: 50, Years: 3},
		AnnualData: []annualDatumPayload{
			{Year: 1, ReturnPercent: -60, InflationPercent: 2},
			{Year: 2, ReturnPercent: -80, InflationPercent: 2},
			{Year: 3, ReturnPercent: 5, InflationPercent: 2},
		},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "depleted") {
		t.Fatalf("expected depletion message, got %q", resp.Error)
	}
	run := resp.Comparison.Runs[0]
	if !run.Depleted {
		t.Fatal("primary run should be marked depleted")
	}
	if len(run.Results) == 0 || len(run.Results) >= 3 {
		t.Fatalf("expected partial results, got %d years", len(run.Results))
	}
}

func TestSimulateInvalidInput(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 100000, InitialWithdrawalRate: 4, Years: 0},
		AnnualData: []annualDatumPayload{{Year: 1, ReturnPercent: 5, InflationPercent: 2}},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "invalid simulation input") {
		t.Fatalf("expected invalid input message, got %q", msg)
	}
}

func TestSimulateUnknownPolicy(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 100000, InitialWithdrawalRate: 4, Years: 5},
		Policies:   []string{"four_percent_forever"},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "unknown policy") {
		t.Fatalf("expected unknown policy message, got %q", msg)
	}
}

func TestSimulateMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestSimulateBodyTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	payload := simulateRequest{
		Parameters: parametersPayload{InitialAssets: 1000000, InitialWithdrawalRate: 5, Years: 30},
		Policies:   []string{"guardrails", "fixed_percentage", "inflation_adjusted"},
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/simulate", payload)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "request exceeds limit") {
		t.Fatalf("expected limit error message, got %q", msg)
	}
}

func TestSimulateMalformedJSON(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"parameters": [`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "failed to decode request") {
		t.Fatalf("expected decode error message, got %q", msg)
	}
}

func TestBacktestOverEmbeddedDataset(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := backtestRequest{
		Parameters:  parametersPayload{InitialAssets: 1000000, InitialWithdrawalRate: 4, Years: 10},
		WindowYears: 10,
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/backtest", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp backtestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, err := uuid.Parse(resp.RunID); err != nil {
		t.Fatalf("run_id %q is not a UUID: %v", resp.RunID, err)
	}
	// The embedded dataset spans 51 years, so 10-year windows give 42 runs
	if resp.Backtest.WindowsRun != 42 {
		t.Fatalf("expected 42 windows, got %d", resp.Backtest.WindowsRun)
	}
	if len(resp.Backtest.Windows) != resp.Backtest.WindowsRun {
		t.Fatalf("window count mismatch: %d vs %d", len(resp.Backtest.Windows), resp.Backtest.WindowsRun)
	}
}

func TestBacktestWindowLargerThanDataset(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "test")

	payload := backtestRequest{
		Parameters:  parametersPayload{InitialAssets: 1000000, InitialWithdrawalRate: 4, Years: 10},
		WindowYears: 5000,
	}

	rr := performJSON(t, handler, http.MethodPost, "/api/backtest", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "window") {
		t.Fatalf("expected window size message, got %q", msg)
	}
}

func TestVersionEndpoint(t *testing.T) {
	handler := NewHandler(zap.NewNop(), DefaultMaxBodySizeBytes, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("version = %q, want 1.2.3", resp["version"])
	}

	postReq := httptest.NewRequest(http.MethodPost, "/api/version", nil)
	postRR := httptest.NewRecorder()
	handler.ServeHTTP(postRR, postReq)
	if postRR.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 for POST, got %d", postRR.Code)
	}
}
