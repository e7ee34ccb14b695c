package rl

import (
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/policyenv"
)

// Policy chooses the levers of the next quarter from the latest observation.
type Policy interface {
	Name() string
	Act(obs policyenv.Observation) domain.Action
}

// Greedy follows a learner's Q table without exploring.
type Greedy struct {
	Label   string
	Learner *QLearner
}

func (g Greedy) Name() string {
	if g.Label != "" {
		return g.Label
	}

	return "learned"
}

func (g Greedy) Act(obs policyenv.Observation) domain.Action {
	a := g.Learner.Greedy(g.Learner.State(obs))

	return domain.Uniform(g.Learner.Actions()[a])
}

// Static applies the same levers every quarter.
type Static struct {
	Label  string
	Levers domain.Levers
}

func (s Static) Name() string { return s.Label }

func (s Static) Act(policyenv.Observation) domain.Action {
	return domain.Uniform(s.Levers)
}

// None never pulls any lever.
func None() Static {
	return Static{Label: "baseline"}
}
