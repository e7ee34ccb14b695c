package rl

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Algorithm names the learner persisted by Snapshot.
const Algorithm = "q-learning"

// Snapshot is the persisted form of a QLearner.
type Snapshot struct {
	Algorithm   string      `json:"algorithm"`
	Config      Config      `json:"config"`
	Epsilon     float64     `json:"epsilon"`
	Discretizer Discretizer `json:"discretizer"`
	Actions     Catalogue   `json:"actions"`
	Q           [][]float64 `json:"q"`
	Visits      []int       `json:"visits"`
}

// Snapshot captures the learner state.
func (l *QLearner) Snapshot() Snapshot {
	q := make([][]float64, len(l.q))
	for i, row := range l.q {
		q[i] = append([]float64(nil), row...)
	}

	return Snapshot{
		Algorithm:   Algorithm,
		Config:      l.cfg,
		Epsilon:     l.epsilon,
		Discretizer: l.disc,
		Actions:     append(Catalogue(nil), l.actions...),
		Q:           q,
		Visits:      append([]int(nil), l.visits...),
	}
}

// MarshalJSON encodes the learner as a Snapshot.
func (l *QLearner) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Snapshot())
}

// Restore rebuilds a learner from a snapshot.
func Restore(s Snapshot, seed uint64) (*QLearner, error) {
	if s.Algorithm != Algorithm {
		return nil, fmt.Errorf("unsupported policy algorithm %q", s.Algorithm)
	}
	if len(s.Actions) == 0 {
		return nil, errors.New("policy has no actions")
	}
	if len(s.Q) != s.Discretizer.NumStates() {
		return nil, fmt.Errorf("q table has %d states, discretizer expects %d", len(s.Q), s.Discretizer.NumStates())
	}
	for i, row := range s.Q {
		if len(row) != len(s.Actions) {
			return nil, fmt.Errorf("q table row %d has %d actions, expected %d", i, len(row), len(s.Actions))
		}
	}

	l := NewQLearner(s.Config, s.Discretizer, s.Actions, seed)
	l.epsilon = s.Epsilon
	for i, row := range s.Q {
		copy(l.q[i], row)
	}
	if len(s.Visits) == len(l.visits) {
		copy(l.visits, s.Visits)
	}

	return l, nil
}

// Unmarshal decodes a learner persisted with MarshalJSON.
func Unmarshal(data []byte) (*QLearner, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode policy: %w", err)
	}

	return Restore(s, 0)
}
