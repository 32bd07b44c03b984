// Package server exposes the simulation engine over a small JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gksim/withdrawal-simulator/internal/dataset"
	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/internal/simulation"
)

// DefaultMaxBodySizeBytes bounds request bodies on the JSON API.
const DefaultMaxBodySizeBytes int64 = 1 << 20

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/simulate", h.handleSimulate)
	mux.HandleFunc("/api/backtest", h.handleBacktest)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type parametersPayload struct {
	InitialAssets         float64 `json:"initial_assets"`
	InitialWithdrawalRate float64 `json:"initial_withdrawal_rate"`
	Years                 int     `json:"years"`
}

type annualDatumPayload struct {
	Year             int     `json:"year"`
	ReturnPercent    float64 `json:"return_percent"`
	InflationPercent float64 `json:"inflation_percent"`
}

type simulateRequest struct {
	Parameters parametersPayload    `json:"parameters"`
	AnnualData []annualDatumPayload `json:"annual_data,omitempty"`
	// StartYear selects where the embedded dataset run begins when no
	// explicit annual data is posted.
	StartYear int      `json:"start_year,omitempty"`
	Policies  []string `json:"policies,omitempty"`
}

type simulateResponse struct {
	RunID       string               `json:"run_id"`
	DatasetName string               `json:"dataset_name,omitempty"`
	Comparison  domain.RunComparison `json:"comparison"`
	Duration    string               `json:"duration"`
	Error       string               `json:"error,omitempty"`
}

type backtestRequest struct {
	Parameters  parametersPayload    `json:"parameters"`
	WindowYears int                  `json:"window_years"`
	AnnualData  []annualDatumPayload `json:"annual_data,omitempty"`
	StartYear   int                  `json:"start_year,omitempty"`
}

type backtestResponse struct {
	RunID       string                `json:"run_id"`
	DatasetName string                `json:"dataset_name,omitempty"`
	Backtest    domain.BacktestResult `json:"backtest"`
	Duration    string                `json:"duration"`
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	var req simulateRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	params, err := simulation.ParametersFromFloats(req.Parameters.InitialAssets, req.Parameters.InitialWithdrawalRate, req.Parameters.Years)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	annualData, datasetName, ok := h.resolveAnnualData(w, req.AnnualData, req.StartYear, params.Years, op)
	if !ok {
		return
	}

	policyNames := req.Policies
	if len(policyNames) == 0 {
		policyNames = simulation.DefaultPolicyNames()
	}
	policies := make([]simulation.Policy, 0, len(policyNames))
	for _, name := range policyNames {
		policy, err := simulation.PolicyByName(name, nil)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		policies = append(policies, policy)
	}

	comparison, err := simulation.Compare(r.Context(), params, annualData, policies)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, simulation.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := simulateResponse{
		RunID:       uuid.NewString(),
		DatasetName: datasetName,
		Comparison:  comparison,
		Duration:    elapsed.String(),
	}

	// A depleted primary run still carries its completed years in the body,
	// but the status tells the caller the plan failed.
	status := http.StatusOK
	if primary := comparison.Runs[0]; primary.Depleted {
		status = http.StatusUnprocessableEntity
		response.Error = fmt.Sprintf("portfolio depleted after %d of %d years", len(primary.Results), params.Years)
	}

	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.String("run_id", response.RunID),
		zap.Int("policies", len(comparison.Runs)),
		zap.Int("years", params.Years),
		zap.Duration("elapsed", elapsed),
	)

	h.writeJSON(w, status, response)
}

func (h *handler) handleBacktest(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBacktest"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	var req backtestRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	params, err := simulation.ParametersFromFloats(req.Parameters.InitialAssets, req.Parameters.InitialWithdrawalRate, req.Parameters.Years)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Backtests roll over the whole span, so no fixed length is requested here.
	annualData, datasetName, ok := h.resolveAnnualData(w, req.AnnualData, req.StartYear, 0, op)
	if !ok {
		return
	}

	result, err := simulation.NewEngine().Backtest(r.Context(), params, annualData, req.WindowYears)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, simulation.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := backtestResponse{
		RunID:       uuid.NewString(),
		DatasetName: datasetName,
		Backtest:    result,
		Duration:    elapsed.String(),
	}

	h.logger.Info("backtest computed",
		zap.String("op", op),
		zap.String("run_id", response.RunID),
		zap.Int("windows", result.WindowsRun),
		zap.Duration("elapsed", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
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

// decodeRequest reads a bounded JSON body into dst and reports whether the
// handler should proceed. Errors have already been written on false.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// resolveAnnualData converts posted annual data, or loads the embedded
// dataset when the request carries none. A years value of zero requests the
// whole aligned span.
func (h *handler) resolveAnnualData(w http.ResponseWriter, payload []annualDatumPayload, startYear, years int, op string) ([]domain.AnnualDatum, string, bool) {
	if len(payload) > 0 {
		data := make([]domain.AnnualDatum, 0, len(payload))
		for _, d := range payload {
			datum, err := simulation.AnnualDatumFromFloats(d.Year, d.ReturnPercent, d.InflationPercent)
			if err != nil {
				h.respondError(w, http.StatusBadRequest, err.Error(), op)
				return nil, "", false
			}
			data = append(data, datum)
		}
		return data, "", true
	}

	provider := dataset.NewProvider(domain.DataConfig{Source: dataset.SourceEmbedded, StartYear: startYear})
	if err := provider.Load(); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load embedded dataset: %v", err), op)
		return nil, "", false
	}

	var (
		data []domain.AnnualDatum
		err  error
	)
	if years > 0 {
		data, err = provider.AnnualData(years)
	} else {
		data, err = provider.AllData()
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return nil, "", false
	}
	return data, provider.Name(), true
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
