package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "halflife",
	Short: "Track caffeine intake and how much is still in your system",
	Long: "Halflife logs the caffeine you drink, models how it decays, warns before you overdo it, " +
		"and learns which doses and times of day bring on symptoms.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $HALFLIFE_CONFIG or ~/.halflife/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(scanCmd)
}
