package rl

import (
	"math/rand/v2"

	"wastepolicy/pkg/policyenv"
)

// Config holds the Q-learning hyperparameters.
type Config struct {
	// Alpha is the learning rate.
	Alpha float64 `json:"alpha"`
	// Gamma is the discount factor.
	Gamma float64 `json:"gamma"`
	// Epsilon is the initial exploration rate, multiplied by EpsilonDecay
	// after every episode and never below MinEpsilon.
	Epsilon      float64 `json:"epsilon"`
	EpsilonDecay float64 `json:"epsilonDecay"`
	MinEpsilon   float64 `json:"minEpsilon"`
}

// DefaultConfig returns hyperparameters suited to a few hundred episodes.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.1,
		Gamma:        0.95,
		Epsilon:      1.0,
		EpsilonDecay: 0.99,
		MinEpsilon:   0.05,
	}
}

// QLearner is a tabular Q-learning agent.
type QLearner struct {
	cfg     Config
	epsilon float64
	disc    Discretizer
	actions Catalogue
	q       [][]float64
	visits  []int
	rng     *rand.Rand
}

// NewQLearner creates a learner with a zero-initialised table.
func NewQLearner(cfg Config, disc Discretizer, actions Catalogue, seed uint64) *QLearner {
	q := make([][]float64, disc.NumStates())
	for i := range q {
		q[i] = make([]float64, len(actions))
	}

	return &QLearner{
		cfg:     cfg,
		epsilon: cfg.Epsilon,
		disc:    disc,
		actions: actions,
		q:       q,
		visits:  make([]int, disc.NumStates()),
		rng:     rand.New(rand.NewPCG(seed, ^seed)), //nolint: gosec
	}
}

func (l *QLearner) Config() Config           { return l.cfg }
func (l *QLearner) Epsilon() float64         { return l.epsilon }
func (l *QLearner) Discretizer() Discretizer { return l.disc }
func (l *QLearner) Actions() Catalogue       { return l.actions }

// State discretises obs with the learner's discretizer.
func (l *QLearner) State(obs policyenv.Observation) State {
	return l.disc.State(obs)
}

// Act picks an action epsilon-greedily.
func (l *QLearner) Act(s State) int {
	if l.rng.Float64() < l.epsilon {
		return l.rng.IntN(len(l.actions))
	}

	return l.Greedy(s)
}

// Greedy returns the best known action for s. Ties resolve to the lowest index.
func (l *QLearner) Greedy(s State) int {
	row := l.q[s]
	best := 0
	for a := 1; a < len(row); a++ {
		if row[a] > row[best] {
			best = a
		}
	}

	return best
}

// Value returns Q(s, a).
func (l *QLearner) Value(s State, a int) float64 {
	return l.q[s][a]
}

// Update applies one temporal-difference step. Terminal transitions do not
// bootstrap from next.
func (l *QLearner) Update(s State, a int, reward float64, next State, terminal bool) {
	target := reward
	if !terminal {
		target += l.cfg.Gamma * l.q[next][l.Greedy(next)]
	}
	l.q[s][a] += l.cfg.Alpha * (target - l.q[s][a])
	l.visits[s]++
}

// DecayEpsilon applies the per-episode exploration decay.
func (l *QLearner) DecayEpsilon() {
	l.epsilon = max(l.cfg.MinEpsilon, l.epsilon*l.cfg.EpsilonDecay)
}

// StatesVisited counts the states updated at least once.
func (l *QLearner) StatesVisited() int {
	var n int
	for _, v := range l.visits {
		if v > 0 {
			n++
		}
	}

	return n
}

// Clone deep-copies the learner. The clone has its own random stream.
func (l *QLearner) Clone() *QLearner {
	c := &QLearner{
		cfg:     l.cfg,
		epsilon: l.epsilon,
		disc:    l.disc,
		actions: append(Catalogue(nil), l.actions...),
		q:       make([][]float64, len(l.q)),
		visits:  append([]int(nil), l.visits...),
		rng:     rand.New(rand.NewPCG(l.rng.Uint64(), l.rng.Uint64())), //nolint: gosec
	}
	for i, row := range l.q {
		c.q[i] = append([]float64(nil), row...)
	}

	return c
}
