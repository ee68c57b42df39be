// Package commands implements sentinel's cobra command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/config"
	"github.com/sentinelfs/sentinel/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Bulk file reorganizer with a rule DSL and crash-safe executor",
	Long: `Sentinel stages file-organization operations against a shadow copy of a
directory tree, journals them to a write-ahead log, and replays the log
against the real filesystem with crash recovery.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.SetLevel(cfg.Log.Level)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: none; built-in defaults and environment overrides apply)")
}
