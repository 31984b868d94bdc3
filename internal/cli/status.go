package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current caffeine level and sleep forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.tracker.Status()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), st, a.tracker.Settings())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the caffeine level on every refresh until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		a.tracker.StartRefresh(a.cfg.RefreshInterval(), func(st tracker.Status) {
			fmt.Fprintf(out, "%s  %6.1f mg  %-7s  today %4.0f mg\n",
				st.At.Format("15:04:05"), st.LevelMg, st.Band, st.TodayTotalMg)
		})

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done
		return nil
	},
}

func printStatus(w io.Writer, st tracker.Status, s intake.Settings) {
	fmt.Fprintf(w, "Level:    %.0f mg (%s)\n", st.LevelMg, st.Band)
	fmt.Fprintf(w, "Today:    %.0f of %.0f mg (%d drinks)\n", st.TodayTotalMg, st.DailyLimitMg, st.TodayCount)

	f := st.Sleep
	switch {
	case st.LevelMg <= s.SleepThresholdMg:
		fmt.Fprintf(w, "Sleep:    below %.0f mg now\n", s.SleepThresholdMg)
	case !f.Clears:
		fmt.Fprintf(w, "Sleep:    never drops below %.0f mg\n", s.SleepThresholdMg)
	default:
		verdict := "after"
		if f.Safe {
			verdict = "before"
		}
		fmt.Fprintf(w, "Sleep:    below %.0f mg at %s, %s your %s bedtime\n",
			s.SleepThresholdMg, f.ClearAt.In(st.At.Location()).Format("15:04"), verdict, s.Bedtime)
	}
}
