package abm

// Snapshot holds the model-level variables recorded after every tick.
type Snapshot struct {
	Tick             int     `json:"tick"`
	ComplianceRate   float64 `json:"complianceRate"`
	ImproperDisposal int     `json:"improperDisposal"`
	ImproperRate     float64 `json:"improperRate"`
	Collections      int     `json:"collections"`
	Fines            int     `json:"fines"`
	Incentives       int     `json:"incentives"`
	MeanAttitude     float64 `json:"meanAttitude"`
	MeanNorm         float64 `json:"meanNorm"`
}

// Collector accumulates one Snapshot per tick.
type Collector struct {
	rows []Snapshot
}

func (c *Collector) collect(s Snapshot) {
	c.rows = append(c.rows, s)
}

// Rows returns every recorded snapshot in tick order.
func (c *Collector) Rows() []Snapshot {
	return c.rows
}

// Last returns up to the n most recent snapshots, or nil when n <= 0.
func (c *Collector) Last(n int) []Snapshot {
	if n <= 0 {
		return nil
	}
	if n >= len(c.rows) {
		return c.rows
	}

	return c.rows[len(c.rows)-n:]
}

// Series extracts one variable from every snapshot.
func Series(rows []Snapshot, f func(Snapshot) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f(r)
	}

	return out
}

// Compliance selects Snapshot.ComplianceRate.
func Compliance(s Snapshot) float64 { return s.ComplianceRate }
