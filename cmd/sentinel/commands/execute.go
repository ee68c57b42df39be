package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/executor"
	"github.com/sentinelfs/sentinel/internal/wal"
)

var executeCmd = &cobra.Command{
	Use:   "execute <job-id>",
	Short: "Replay a committed journal against the real filesystem",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecute,
}

func init() {
	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}

	eng := executor.New(mgr, nil)
	result, err := eng.ExecuteJournal(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("completed: %d  failed: %d\n", result.CompletedCount, result.FailedCount)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	if !result.Success {
		return fmt.Errorf("execute: job %s finished with failures", args[0])
	}
	return nil
}
