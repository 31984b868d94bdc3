package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/insight"
	"github.com/lazypower/halflife/internal/report"
)

var (
	reportDays  int
	reportMonth bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show which doses and times of day bring on symptoms",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		in, ok := a.tracker.Insights()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not enough data yet. Tag symptoms on a few drinks with `halflife tag`.")
			return nil
		}
		printInsight(cmd.OutOrStdout(), in)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize intake over the last week or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := reportDays
		if reportMonth {
			days = report.Month
		}

		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.tracker.Report(days)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVarP(&reportDays, "days", "d", report.Week, "Window length in days")
	reportCmd.Flags().BoolVar(&reportMonth, "month", false, "Report the last 30 days")
}

func printInsight(w io.Writer, in *insight.Insight) {
	fmt.Fprintf(w, "Drinks with symptoms:  %d\n", in.SymptomEventCount)
	fmt.Fprintf(w, "Avg dose with symptoms: %.0f mg\n", in.AvgSymptomDoseMg)
	fmt.Fprintf(w, "Avg dose without:       %.0f mg\n", in.AvgSafeDoseMg)
	fmt.Fprintf(w, "Riskiest time:          %s\n", in.RiskiestBucketLabel)
	fmt.Fprintf(w, "Most common symptom:    %s\n", in.TopSymptomLabel)
	fmt.Fprintf(w, "\n%s\n", in.Recommendation)
}

const barWidth = 30

func printReport(w io.Writer, rep report.Report) {
	s := rep.Summary
	fmt.Fprintf(w, "Last %d days: %.0f mg over %d drinks, %.0f mg/day, largest %.0f mg\n\n",
		s.Days, s.TotalMg, s.Count, s.AvgDailyMg, s.MaxDoseMg)

	peak := 0.0
	for _, d := range rep.Daily {
		peak = math.Max(peak, d.TotalMg)
	}
	for _, d := range rep.Daily {
		fmt.Fprintf(w, "%6s %s %.0f\n", d.Label, bar(d.TotalMg, peak), d.TotalMg)
	}

	fmt.Fprintln(w, "\nBy time of day:")
	for _, p := range rep.TimeOfDay {
		fmt.Fprintf(w, "  %-20s %5.0f mg\n", p.Label, p.TotalMg)
	}

	if len(rep.TopDrinks) > 0 {
		fmt.Fprintln(w, "\nTop drinks:")
		for i, d := range rep.TopDrinks {
			fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, d.Name, d.Count)
		}
	}

	if len(rep.Sources) > 0 {
		fmt.Fprintln(w, "\nLogged via:")
		for _, src := range rep.Sources {
			fmt.Fprintf(w, "  %-7s %d\n", src.Source, src.Count)
		}
	}
}

func bar(v, peak float64) string {
	if peak <= 0 {
		return strings.Repeat(".", barWidth)
	}
	n := int(math.Round(v / peak * barWidth))
	return strings.Repeat("#", n) + strings.Repeat(".", barWidth-n)
}
