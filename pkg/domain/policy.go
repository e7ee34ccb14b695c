package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Levers are the three policy instruments an LGU can pull, each expressed
// as an intensity in [0, 1].
type Levers struct {
	// Fine is the efficacy of fines and enforcement patrols.
	Fine float64 `json:"fine"`
	// Incentive is the efficacy of rewards for compliant households.
	Incentive float64 `json:"incentive"`
	// IEC is the intensity of information, education and communication campaigns.
	IEC float64 `json:"iec"`
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Clamp returns a copy with every lever clamped to [0, 1].
func (l Levers) Clamp() Levers {
	return Levers{Fine: clamp01(l.Fine), Incentive: clamp01(l.Incentive), IEC: clamp01(l.IEC)}
}

// Cost is the budget pressure of the levers: their mean intensity.
func (l Levers) Cost() float64 {
	return (l.Fine + l.Incentive + l.IEC) / 3.0
}

// Action is the policy applied for one quarter. It holds either a single
// Levers value broadcast to every barangay or one value per barangay.
type Action []Levers

// Uniform returns an Action applying the same levers to every barangay.
func Uniform(l Levers) Action { return Action{l} }

// For returns the (clamped) levers for the i-th barangay.
func (a Action) For(i int) Levers {
	switch {
	case len(a) == 0:
		return Levers{}
	case len(a) == 1:
		return a[0].Clamp()
	case i < len(a):
		return a[i].Clamp()
	default:
		return Levers{}
	}
}

// Cost is the mean lever cost across n barangays.
func (a Action) Cost(n int) float64 {
	if n <= 0 {
		return 0
	}
	var total float64
	for i := range n {
		total += a.For(i).Cost()
	}

	return total / float64(n)
}

// PolicyID uniquely identifies a trained policy.
type PolicyID uuid.UUID

// Policy is a trained policy artifact produced by a training run.
type Policy struct {
	ID     PolicyID `json:"id"`
	UserID UserID   `json:"userId"`
	RunID  RunID    `json:"runId"`

	Name string `json:"name"`
	// Algorithm names the learner that produced Artifact, e.g. "q-learning".
	Algorithm string `json:"algorithm"`
	// Artifact is the serialized learner state.
	Artifact json.RawMessage `json:"artifact"`

	CreatedAt time.Time `json:"createdAt"`
}
