package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/alert"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/tracker"
)

var (
	addMg       float64
	addAt       string
	addAgo      time.Duration
	addSymptoms []string
	addBrand    string
	addDrink    string
	addSize     string

	logDate string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Log a caffeinated drink",
	Long: "Log a drink by name and dose, or pick one from the brand catalog with --brand, --drink and --size.\n" +
		"Examples:\n" +
		"  halflife add Latte --mg 150\n" +
		"  halflife add --brand starbucks --drink \"caffè latte\" --size grande --ago 2h",
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a logged drink",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.tracker.Remove(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%.0f mg)\n", e.Name, e.AmountMg)
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <id> [symptom...]",
	Short: "Set the symptoms felt after a drink (no symptoms clears them)",
	Long:  "Symptoms: " + symptomIDs(),
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.tracker.SetSymptoms(args[0], args[1:])
		if err != nil {
			return err
		}
		if len(e.Symptoms) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared symptoms on %s\n", e.Name)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s: %s\n", e.Name, strings.Join(e.Symptoms, ", "))
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List the drinks logged on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		loc := a.tracker.Location()
		day := time.Now().In(loc)
		if logDate != "" {
			d, err := time.ParseInLocation(time.DateOnly, logDate, loc)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			day = d
		}

		events, total := a.tracker.DayLog(day)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %.0f mg\n", day.Format("Mon Jan 2"), total)
		if len(events) == 0 {
			fmt.Fprintln(out, "  nothing logged")
			return nil
		}
		for _, e := range events {
			printEvent(out, e)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().Float64Var(&addMg, "mg", 0, "Caffeine dose in mg")
	addCmd.Flags().StringVar(&addAt, "at", "", "When it was drunk: HH:MM today or RFC 3339 (default now)")
	addCmd.Flags().DurationVar(&addAgo, "ago", 0, "How long ago it was drunk, e.g. 90m")
	addCmd.Flags().StringSliceVarP(&addSymptoms, "symptom", "s", nil, "Symptom felt afterwards (repeatable)")
	addCmd.Flags().StringVar(&addBrand, "brand", "", "Catalog brand")
	addCmd.Flags().StringVar(&addDrink, "drink", "", "Catalog drink")
	addCmd.Flags().StringVar(&addSize, "size", "", "Catalog size label")

	logCmd.Flags().StringVar(&logDate, "date", "", "Day to list, YYYY-MM-DD (default today)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	req := tracker.AddRequest{
		AmountMg: addMg,
		Symptoms: addSymptoms,
		Brand:    addBrand,
		Drink:    addDrink,
		Size:     addSize,
	}
	if len(args) > 0 {
		req.Name = args[0]
	}
	if req.Brand == "" && !cmd.Flags().Changed("mg") {
		return fmt.Errorf("--mg is required unless a catalog drink is given")
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now().In(a.tracker.Location())
	req.Timestamp, err = parseWhen(addAt, addAgo, now)
	if err != nil {
		return err
	}

	res, err := a.tracker.Add(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %s, %.0f mg at %s (id %s)\n",
		res.Event.Name, res.Event.AmountMg, res.Event.Timestamp.In(now.Location()).Format("15:04"), res.Event.ID)
	printAlert(out, res.Alert)
	return nil
}

// parseWhen resolves --at and --ago against now. Both empty means now.
func parseWhen(at string, ago time.Duration, now time.Time) (time.Time, error) {
	switch {
	case at != "" && ago != 0:
		return time.Time{}, fmt.Errorf("use either --at or --ago, not both")
	case ago < 0:
		return time.Time{}, fmt.Errorf("--ago must be positive")
	case ago > 0:
		return now.Add(-ago), nil
	case at == "":
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		return t, nil
	}
	t, err := intake.ClockOn(at, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t, nil
}

func printAlert(w io.Writer, a alert.Alert) {
	if !a.Fired() {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(a.Level.String()), a.Message)
}

func printEvent(w io.Writer, e intake.Event) {
	line := fmt.Sprintf("  %s  %-32s %5.0f mg  %-6s", e.Timestamp.Format("15:04"), e.Name, e.AmountMg, e.Source)
	if len(e.Symptoms) > 0 {
		line += "  [" + strings.Join(e.Symptoms, ", ") + "]"
	}
	fmt.Fprintf(w, "%s  %s\n", line, e.ID)
}

func symptomIDs() string {
	ids := make([]string, 0, len(intake.Symptoms()))
	for _, s := range intake.Symptoms() {
		ids = append(ids, s.ID)
	}
	return strings.Join(ids, ", ")
}
