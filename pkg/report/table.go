package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/rl"
)

func newTable(header ...any) *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = 50
	t.Wrap = true
	t.AddRow(header...)

	return t
}

func pct(v float64) string   { return humanize.FtoaWithDigits(v*100, 2) + "%" }
func num(v float64) string   { return humanize.CommafWithDigits(v, 3) }
func lever(v float64) string { return humanize.FtoaWithDigits(v, 2) }

// PrintSimulation prints the final state of every barangay.
func PrintSimulation(w io.Writer, s domain.SimulationSummary) error {
	t := newTable("ID", "BARANGAY", "HOUSEHOLDS", "COMPLIANCE", "IMPROPER", "COLLECTIONS", "FINES", "INCENTIVES")
	for _, col := range []int{2, 3, 4, 5, 6, 7} {
		t.RightAlign(col)
	}
	for _, b := range s.Barangays {
		t.AddRow(b.ID, b.Name, humanize.Comma(int64(b.Households)), pct(b.ComplianceRate), pct(b.ImproperRate),
			humanize.Comma(int64(b.Collections)), humanize.Comma(int64(b.Fines)), humanize.Comma(int64(b.Incentives)))
	}
	t.AddRow("", "TOTAL", "", pct(s.MeanCompliance), pct(s.ImproperRate), "", "", "")

	_, err := fmt.Fprintln(w, t)

	return err
}

// PrintTraining prints the headline numbers of a training run.
func PrintTraining(w io.Writer, s domain.TrainingSummary, took time.Duration) error {
	t := newTable("EPISODES", "BEST REWARD", "FINAL EPSILON", "STATES", "TOOK")
	t.AddRow(humanize.Comma(int64(s.Episodes)), num(s.BestReward), lever(s.FinalEpsilon),
		humanize.Comma(int64(s.StatesVisited)), took.Round(time.Millisecond))

	_, err := fmt.Fprintln(w, t)

	return err
}

// PrintEvaluation prints one row per quarter.
func PrintEvaluation(w io.Writer, s domain.EvaluationSummary) error {
	t := newTable("QUARTER", "FINE", "INCENTIVE", "IEC", "COMPLIANCE", "IMPROPER", "REWARD")
	for _, q := range s.Quarters {
		l := q.Action.For(0)
		t.AddRow(q.Quarter, lever(l.Fine), lever(l.Incentive), lever(l.IEC),
			pct(q.MeanCompliance), pct(q.ImproperRate), num(q.Reward))
	}
	t.AddRow("", "", "", "", pct(s.FinalCompliance), "", num(s.TotalReward))

	_, err := fmt.Fprintf(w, "policy %s\n%s\n", s.Policy, t)

	return err
}

// PrintScenarios prints the scenario comparison.
func PrintScenarios(w io.Writer, sums []domain.ScenarioSummary) error {
	t := newTable("SCENARIO", "TOTAL REWARD", "FINAL COMPLIANCE", "MEAN IMPROPER")
	for _, s := range sums {
		t.AddRow(s.Name, num(s.TotalReward), pct(s.FinalCompliance), pct(s.MeanImproperRate))
	}

	_, err := fmt.Fprintln(w, t)

	return err
}

// PrintAnswers prints the levers chosen for every probe.
func PrintAnswers(w io.Writer, answers []rl.Answer) error {
	t := newTable("PROBE", "MEAN COMPLIANCE", "FINE", "INCENTIVE", "IEC")
	for _, a := range answers {
		var mean float64
		for _, c := range a.Compliance {
			mean += c / float64(len(a.Compliance))
		}
		l := a.Action.For(0)
		t.AddRow(a.Probe, pct(mean), lever(l.Fine), lever(l.Incentive), lever(l.IEC))
	}

	_, err := fmt.Fprintln(w, t)

	return err
}

// PrintCalibration prints the best genome.
func PrintCalibration(w io.Writer, s domain.CalibrationSummary) error {
	t := newTable("GENE", "VALUE")
	t.RightAlign(1)
	for _, k := range sortedKeys(s.Genes) {
		t.AddRow(k, humanize.FtoaWithDigits(s.Genes[k], 4))
	}

	_, err := fmt.Fprintf(w, "fitness %s, status quo compliance %s after %d generations\n%s\n",
		num(s.Fitness), pct(s.Compliance), s.Generations, t)

	return err
}

// PrintIndices prints Sobol indices.
func PrintIndices(w io.Writer, s domain.SensitivitySummary) error {
	t := newTable("PARAMETER", "S1", "S1 CONF", "ST", "ST CONF")
	for _, idx := range s.Indices {
		t.AddRow(idx.Parameter, lever(idx.S1), lever(idx.S1Conf), lever(idx.ST), lever(idx.STConf))
	}

	_, err := fmt.Fprintf(w, "%s model evaluations from %d samples\n%s\n",
		humanize.Comma(int64(s.Evaluations)), s.Samples, t)

	return err
}
