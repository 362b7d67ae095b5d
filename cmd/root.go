package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/config"
	"github.com/matheuskafuri/tradewire/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagEnvFile    string
	flagCategories []string
	flagUrgent     bool
)

// cfg is loaded once per invocation by PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tradewire",
	Short: "Terminal news wire for traders",
	Long: `tradewire pulls top headlines, tags each one with a market category,
a sentiment label and an urgency flag, and shows the filtered stream in a
live dashboard.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringSliceVarP(&flagCategories, "category", "c", nil, "only show these categories (repeatable; names or aliases like macro, crypto, tech, movers, other)")
	rootCmd.PersistentFlags().BoolVarP(&flagUrgent, "urgent", "u", false, "only show urgent headlines")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", flagEnvFile, err)
	}

	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, logPathFor(cmd)); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

// logPathFor returns the log file for cmd, or "" for stderr. The dashboard
// runs on the root command and owns the terminal, so it logs to a file.
func logPathFor(cmd *cobra.Command) string {
	if cmd.HasParent() {
		return ""
	}
	return config.LogPath()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("tradewire %s (commit: %s, built: %s)\n", version, commit, date)
		if r := checkForUpdate(cmd); r != "" {
			fmt.Printf("Update available: v%s\n", r)
		}
		return nil
	},
}

func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
