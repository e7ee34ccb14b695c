// Package report renders run outputs as CSV files and terminal tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"wastepolicy/pkg/abm"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/rl"
	"wastepolicy/pkg/scenario"
)

// Series is the tick history of one barangay.
type Series struct {
	Profile domain.BarangayProfile
	Rows    []abm.Snapshot
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
func d(v int) string     { return strconv.Itoa(v) }

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("could not write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("could not write csv rows: %w", err)
	}

	return nil
}

// WriteTicks writes one row per barangay and tick.
func WriteTicks(w io.Writer, series []Series) error {
	header := []string{
		"barangay_id", "barangay", "tick", "compliance_rate", "improper_disposal", "improper_rate",
		"collections", "fines", "incentives", "mean_attitude", "mean_norm",
	}

	var rows [][]string
	for _, s := range series {
		for _, r := range s.Rows {
			rows = append(rows, []string{
				d(s.Profile.ID), s.Profile.Name, d(r.Tick), f(r.ComplianceRate), d(r.ImproperDisposal), f(r.ImproperRate),
				d(r.Collections), d(r.Fines), d(r.Incentives), f(r.MeanAttitude), f(r.MeanNorm),
			})
		}
	}

	return writeAll(w, header, rows)
}

func quarterHeader(n int) []string {
	header := []string{
		"scenario", "episode", "quarter", "mean_compliance", "improper_rate", "total_improper",
		"collections", "reward", "policy_cost",
	}
	for i := range n {
		header = append(header,
			fmt.Sprintf("compliance_b%d", i),
			fmt.Sprintf("fine_b%d", i),
			fmt.Sprintf("incentive_b%d", i),
			fmt.Sprintf("iec_b%d", i),
		)
	}

	return header
}

func quarterRows(label string, records []rl.QuarterRecord, n int) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		o := r.Observation
		row := []string{
			label, d(r.Episode), d(o.Quarter), f(o.MeanCompliance), f(o.ImproperRate), d(o.TotalImproper),
			d(o.QuarterCollections), f(r.Reward), f(r.PolicyCost),
		}
		for i := range n {
			var c float64
			if i < len(o.Barangays) {
				c = o.Barangays[i].Compliance
			}
			l := r.Action.For(i)
			row = append(row, f(c), f(l.Fine), f(l.Incentive), f(l.IEC))
		}
		rows = append(rows, row)
	}

	return rows
}

func barangays(records []rl.QuarterRecord) int {
	var n int
	for _, r := range records {
		n = max(n, len(r.Observation.Barangays))
	}

	return n
}

// WriteEvaluation writes one row per evaluated quarter.
func WriteEvaluation(w io.Writer, ev rl.Evaluation) error {
	n := barangays(ev.Records)

	return writeAll(w, quarterHeader(n), quarterRows(ev.Policy, ev.Records, n))
}

// WriteScenarios writes the quarters of every scenario into a single table.
func WriteScenarios(w io.Writer, outcomes []scenario.Outcome) error {
	var n int
	for _, o := range outcomes {
		n = max(n, barangays(o.Records))
	}

	var rows [][]string
	for _, o := range outcomes {
		rows = append(rows, quarterRows(o.Name, o.Records, n)...)
	}

	return writeAll(w, quarterHeader(n), rows)
}

// WriteEpisodes writes the training curve.
func WriteEpisodes(w io.Writer, stats []rl.EpisodeStats) error {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{d(s.Episode), f(s.Reward), f(s.Epsilon), f(s.FinalCompliance), d(s.StatesVisited)}
	}

	return writeAll(w, []string{"episode", "reward", "epsilon", "final_compliance", "states_visited"}, rows)
}

// WriteAnswers writes one row per probe and barangay.
func WriteAnswers(w io.Writer, answers []rl.Answer) error {
	var rows [][]string
	for _, a := range answers {
		for i, c := range a.Compliance {
			l := a.Action.For(i)
			rows = append(rows, []string{a.Probe, d(i), f(c), f(l.Fine), f(l.Incentive), f(l.IEC)})
		}
	}

	return writeAll(w, []string{"state_name", "barangay", "obs_compliance", "fine", "incentive", "iec"}, rows)
}

// WriteIndices writes Sobol indices.
func WriteIndices(w io.Writer, indices []domain.SensitivityIndex) error {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		rows[i] = []string{idx.Parameter, f(idx.S1), f(idx.S1Conf), f(idx.ST), f(idx.STConf)}
	}

	return writeAll(w, []string{"parameter", "S1", "S1_conf", "ST", "ST_conf"}, rows)
}

// WriteGenes writes a calibrated genome sorted by gene name.
func WriteGenes(w io.Writer, genes map[string]float64) error {
	names := sortedKeys(genes)
	rows := make([][]string, len(names))
	for i, k := range names {
		rows[i] = []string{k, f(genes[k])}
	}

	return writeAll(w, []string{"gene", "value"}, rows)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
