package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"github.com/lazypower/halflife/internal/catalog"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/tracker"
)

var scanLog bool

var catalogCmd = &cobra.Command{
	Use:   "catalog [brand]",
	Short: "List the brand drinks that can be logged with add --brand",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fold := cases.Fold()
		found := false
		for _, b := range catalog.Brands() {
			if len(args) == 1 && fold.String(b.Name) != fold.String(args[0]) {
				continue
			}
			found = true
			fmt.Fprintln(out, b.Name)
			for _, d := range b.Drinks {
				fmt.Fprintf(out, "  %s\n", d.Name)
				for _, s := range d.Sizes {
					fmt.Fprintf(out, "    %-8s %4.0f mg  %4.0f ml\n", s.Label, s.Mg, s.Ml)
				}
			}
		}
		if !found {
			return fmt.Errorf("%w: brand %q", catalog.ErrNotFound, args[0])
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Estimate the caffeine in a drink from a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		est := a.tracker.Analyze(context.Background(), image, http.DetectContentType(image))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: about %.0f mg (%s confidence)\n", est.DrinkName, est.EstimatedMg, est.Confidence)
		if est.Reasoning != "" {
			fmt.Fprintf(out, "  %s\n", est.Reasoning)
		}
		if !scanLog {
			return nil
		}

		res, err := a.tracker.Add(tracker.AddRequest{
			Name:     est.DrinkName,
			AmountMg: est.EstimatedMg,
			Source:   string(intake.SourceAI),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged (id %s)\n", res.Event.ID)
		printAlert(out, res.Alert)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanLog, "log", false, "Log the estimate as a drink")
}
