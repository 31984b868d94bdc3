package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/intake"
)

var (
	setLimit     float64
	setHalfLife  float64
	setBedtime   string
	setWake      string
	setThreshold float64
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the daily limit, half-life and sleep times",
	Long: fmt.Sprintf("Without flags, prints the current settings. The half-life must be between %g and %g hours.",
		intake.MinHalfLifeHours, intake.MaxHalfLifeHours),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.tracker.Settings()
		flags := cmd.Flags()
		changed := false
		if flags.Changed("limit") {
			s.DailyLimitMg, changed = setLimit, true
		}
		if flags.Changed("half-life") {
			s.HalfLifeHours, changed = setHalfLife, true
		}
		if flags.Changed("bedtime") {
			s.Bedtime, changed = setBedtime, true
		}
		if flags.Changed("wake") {
			s.WakeTime, changed = setWake, true
		}
		if flags.Changed("threshold") {
			s.SleepThresholdMg, changed = setThreshold, true
		}
		if changed {
			if err := a.tracker.UpdateSettings(s); err != nil {
				return err
			}
		}
		printSettings(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	settingsCmd.Flags().Float64Var(&setLimit, "limit", 0, "Daily limit in mg")
	settingsCmd.Flags().Float64Var(&setHalfLife, "half-life", 0, "Caffeine half-life in hours")
	settingsCmd.Flags().StringVar(&setBedtime, "bedtime", "", "Bedtime, HH:MM")
	settingsCmd.Flags().StringVar(&setWake, "wake", "", "Wake time, HH:MM")
	settingsCmd.Flags().Float64Var(&setThreshold, "threshold", 0, "Level in mg considered safe for sleep")
}

func printSettings(w io.Writer, s intake.Settings) {
	fmt.Fprintf(w, "Daily limit:      %.0f mg\n", s.DailyLimitMg)
	fmt.Fprintf(w, "Half-life:        %g h\n", s.HalfLifeHours)
	fmt.Fprintf(w, "Bedtime:          %s\n", s.Bedtime)
	fmt.Fprintf(w, "Wake time:        %s\n", s.WakeTime)
	fmt.Fprintf(w, "Sleep threshold:  %.0f mg\n", s.SleepThresholdMg)
}
