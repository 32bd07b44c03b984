package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationSummary provides the key metrics of a completed run.
type SimulationSummary struct {
	FinalWorth         decimal.Decimal `json:"final_worth"`
	TotalWithdrawn     decimal.Decimal `json:"total_withdrawn"`
	AverageWithdrawal  decimal.Decimal `json:"average_withdrawal"`
	MinWorth           decimal.Decimal `json:"min_worth"`
	MinWorthYear       int             `json:"min_worth_year"`
	MaxDrawdownPercent decimal.Decimal `json:"max_drawdown_percent"`
	WorthGrowthPercent decimal.Decimal `json:"worth_growth_percent"`
	RuleCounts         map[Rule]int    `json:"rule_counts"`
	GuardrailYears     int             `json:"guardrail_years"`
}

// PolicyRun pairs one withdrawal policy's projection with its summary.
// Depleted marks a run that hit a degenerate state before completing every
// year; Results then holds the years finished before the failure.
type PolicyRun struct {
	Policy   string            `json:"policy"`
	Results  []YearResult      `json:"results"`
	Summary  SimulationSummary `json:"summary"`
	Depleted bool              `json:"depleted,omitempty"`
}

// RunComparison collects the runs of all requested policies over the same
// parameters and annual data, in request order.
type RunComparison struct {
	Parameters SimulationParameters `json:"parameters"`
	Runs       []PolicyRun          `json:"runs"`
}

// SweepPoint is one sensitivity-sweep sample: a candidate initial withdrawal
// rate and the summary of the run at that rate. Depleted marks runs that hit
// a degenerate state before completing every year.
type SweepPoint struct {
	Rate     decimal.Decimal   `json:"rate"`
	Summary  SimulationSummary `json:"summary"`
	Depleted bool              `json:"depleted"`
}

// SweepResult holds an ordered rate sweep (ascending rate).
type SweepResult struct {
	Parameters SimulationParameters `json:"parameters"`
	Points     []SweepPoint         `json:"points"`
}

// WindowOutcome is the outcome of one rolling historical window in a backtest.
type WindowOutcome struct {
	StartYear     int               `json:"start_year"`
	EndYear       int               `json:"end_year"`
	Success       bool              `json:"success"`
	DepletionYear int               `json:"depletion_year"` // years survived before depletion; -1 when Success
	Summary       SimulationSummary `json:"summary"`
}

// BacktestResult aggregates a rolling-window backtest over a historical dataset.
// DepletionCounts is keyed by years survived before depletion and covers only
// failed windows.
type BacktestResult struct {
	Parameters      SimulationParameters `json:"parameters"`
	WindowYears     int                  `json:"window_years"`
	WindowsRun      int                  `json:"windows_run"`
	SuccessRate     decimal.Decimal      `json:"success_rate"`
	BestWindow      WindowOutcome        `json:"best_window"`
	WorstWindow     WindowOutcome        `json:"worst_window"`
	Windows         []WindowOutcome      `json:"windows"`
	DepletionCounts map[int]int          `json:"depletion_counts,omitempty"`
}

// SolverResult is the outcome of a sustainable-rate search.
type SolverResult struct {
	Rate       decimal.Decimal   `json:"rate"`
	Iterations int               `json:"iterations"`
	Converged  bool              `json:"converged"`
	Summary    SimulationSummary `json:"summary"`
}

// Report is the presenter input: everything a formatter may render for one
// invocation. Optional sections are nil when the operation did not run.
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	DatasetName string        `json:"dataset_name,omitempty"`
	Comparison  RunComparison `json:"comparison"`

	Backtest *BacktestResult `json:"backtest,omitempty"`
	Sweep    *SweepResult    `json:"sweep,omitempty"`
	Solver   *SolverResult   `json:"solver,omitempty"`

	Assumptions []string `json:"assumptions,omitempty"`
}

// PrimaryRun returns the first policy run, which by convention is the
// guardrails run; ok is false for an empty comparison.
func (r *Report) PrimaryRun() (PolicyRun, bool) {
	if len(r.Comparison.Runs) == 0 {
		return PolicyRun{}, false
	}
	return r.Comparison.Runs[0], true
}

// SpansYears returns the first and last simulated year labels of the primary
// run, or zeros when there are no results.
func (r *Report) SpansYears() (int, int) {
	run, ok := r.PrimaryRun()
	if !ok || len(run.Results) == 0 {
		return 0, 0
	}
	return run.Results[0].Year, run.Results[len(run.Results)-1].Year
}
