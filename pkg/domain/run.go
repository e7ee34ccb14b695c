package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies a simulation run.
// It wraps uuid.UUID to provide type safety at the domain layer.
type RunID uuid.UUID

// RunKind selects which experiment a run executes.
type RunKind string

const (
	// RunKindSimulate steps the multi-barangay model with fixed levers.
	RunKindSimulate RunKind = "SIMULATION"
	// RunKindTrain trains a Q-learning policy and stores it.
	RunKindTrain RunKind = "TRAINING"
	// RunKindEvaluate rolls out a stored policy (or fixed levers) for one episode.
	RunKindEvaluate RunKind = "EVALUATION"
	// RunKindScenarios compares the baseline, uniform static and learned scenarios.
	RunKindScenarios RunKind = "SCENARIO"
	// RunKindCalibrate searches behavior parameters with a genetic algorithm.
	RunKindCalibrate RunKind = "CALIBRATION"
	// RunKindSensitivity computes Sobol indices for the behavioral parameters.
	RunKindSensitivity RunKind = "SENSITIVITY"
)

// Valid reports whether k is a known run kind.
func (k RunKind) Valid() bool {
	switch k {
	case RunKindSimulate, RunKindTrain, RunKindEvaluate, RunKindScenarios, RunKindCalibrate, RunKindSensitivity:
		return true
	default:
		return false
	}
}

// RunStatus represents the lifecycle state of a run.
type RunStatus string

const (
	// RunStatusPending indicates the run has been enqueued but not processed yet.
	RunStatusPending RunStatus = "PENDING"
	// RunStatusRunning indicates a worker is currently executing the run.
	RunStatusRunning RunStatus = "RUNNING"
	// RunStatusCompleted indicates the run finished successfully and a result is available.
	RunStatusCompleted RunStatus = "COMPLETED"
	// RunStatusFailed indicates the run ended with an error; see LastError and Attempts for details.
	RunStatusFailed RunStatus = "FAILED"
)

// RunParams are the knobs of a run. Fields irrelevant to the run kind are ignored.
type RunParams struct {
	Seed      int64 `json:"seed"`
	Barangays []int `json:"barangays,omitempty"`

	Ticks           int `json:"ticks,omitempty"`
	Quarters        int `json:"quarters,omitempty"`
	TicksPerQuarter int `json:"ticksPerQuarter,omitempty"`

	// Levers are the fixed levers of a simulate run or a static evaluation.
	Levers *Levers `json:"levers,omitempty"`

	Episodes int       `json:"episodes,omitempty"`
	PolicyID *PolicyID `json:"policyId,omitempty"`

	Generations int `json:"generations,omitempty"`
	Population  int `json:"population,omitempty"`

	Samples int `json:"samples,omitempty"`
}

// BarangaySummary is the end state of one barangay.
type BarangaySummary struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Households     int     `json:"households"`
	ComplianceRate float64 `json:"complianceRate"`
	Improper       int     `json:"improper"`
	ImproperRate   float64 `json:"improperRate"`
	Collections    int     `json:"collections"`
	Fines          int     `json:"fines"`
	Incentives     int     `json:"incentives"`
}

// SimulationSummary summarises a fixed-lever simulation.
type SimulationSummary struct {
	Ticks int `json:"ticks"`
	// FinalCompliance is the household-weighted compliance after the last tick.
	FinalCompliance float64 `json:"finalCompliance"`
	// MeanCompliance is the unweighted mean of the barangay compliance rates.
	MeanCompliance float64           `json:"meanCompliance"`
	TotalImproper  int               `json:"totalImproper"`
	ImproperRate   float64           `json:"improperRate"`
	Barangays      []BarangaySummary `json:"barangays"`
}

// TrainingSummary summarises a training run.
type TrainingSummary struct {
	Episodes      int       `json:"episodes"`
	BestReward    float64   `json:"bestReward"`
	FinalEpsilon  float64   `json:"finalEpsilon"`
	StatesVisited int       `json:"statesVisited"`
	Rewards       []float64 `json:"rewards"`
}

// QuarterSummary is one decision step of an evaluated episode.
type QuarterSummary struct {
	Quarter        int     `json:"quarter"`
	Action         Action  `json:"action"`
	MeanCompliance float64 `json:"meanCompliance"`
	ImproperRate   float64 `json:"improperRate"`
	Reward         float64 `json:"reward"`
}

// EvaluationSummary summarises a single-episode policy rollout.
type EvaluationSummary struct {
	Policy          string           `json:"policy"`
	TotalReward     float64          `json:"totalReward"`
	FinalCompliance float64          `json:"finalCompliance"`
	Quarters        []QuarterSummary `json:"quarters"`
}

// ScenarioSummary compares one policy scenario with the others.
type ScenarioSummary struct {
	Name             string  `json:"name"`
	TotalReward      float64 `json:"totalReward"`
	FinalCompliance  float64 `json:"finalCompliance"`
	MeanImproperRate float64 `json:"meanImproperRate"`
}

// CalibrationSummary holds the best genome found by calibration.
type CalibrationSummary struct {
	Generations int                `json:"generations"`
	Fitness     float64            `json:"fitness"`
	Genes       map[string]float64 `json:"genes"`
	Compliance  float64            `json:"compliance"`
}

// SensitivityIndex holds the Sobol indices of a single parameter.
type SensitivityIndex struct {
	Parameter string  `json:"parameter"`
	S1        float64 `json:"s1"`
	S1Conf    float64 `json:"s1Conf"`
	ST        float64 `json:"st"`
	STConf    float64 `json:"stConf"`
}

// SensitivitySummary holds the result of a Sobol analysis.
type SensitivitySummary struct {
	Samples     int                `json:"samples"`
	Evaluations int                `json:"evaluations"`
	Indices     []SensitivityIndex `json:"indices"`
}

// RunResult holds the outcome of a run. Exactly the section matching the
// run kind is populated.
type RunResult struct {
	Simulation  *SimulationSummary  `json:"simulation,omitempty"`
	Training    *TrainingSummary    `json:"training,omitempty"`
	Evaluation  *EvaluationSummary  `json:"evaluation,omitempty"`
	Scenarios   []ScenarioSummary   `json:"scenarios,omitempty"`
	Calibration *CalibrationSummary `json:"calibration,omitempty"`
	Sensitivity *SensitivitySummary `json:"sensitivity,omitempty"`

	// PolicyID references the policy a training run produced.
	PolicyID *PolicyID `json:"policyId,omitempty"`
}

// Run represents a single experiment request and its current state.
// It tracks the parameters, status, result, error information, and timestamps.
type Run struct {
	// ID is the unique identifier of the run.
	ID RunID `json:"id"`
	// UserID is the identifier of the user who requested the run.
	UserID UserID `json:"userId"`

	Kind   RunKind   `json:"kind"`
	Params RunParams `json:"params"`
	// Status is the current lifecycle state of the run.
	Status RunStatus `json:"status"`
	// Result contains the latest known outcome of the run.
	Result RunResult `json:"result"`

	// Attempts is the number of times the system has tried to process this run.
	Attempts uint `json:"attempts"`
	// LastError stores the most recent error message, if any.
	LastError string `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the run was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}
