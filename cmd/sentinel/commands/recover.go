package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/executor"
	"github.com/sentinelfs/sentinel/internal/recovery"
	"github.com/sentinelfs/sentinel/internal/wal"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "List journals eligible for recovery (active, or with an in-progress entry)",
	Args:  cobra.NoArgs,
	RunE:  runRecover,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Re-run a journal's pending and in-progress entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <job-id>",
	Short: "Undo a journal's completed entries in reverse order",
	Args:  cobra.ExactArgs(1),
	RunE:  runRollback,
}

var discardCmd = &cobra.Command{
	Use:   "discard <job-id>",
	Short: "Delete a journal without touching the filesystem",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscard,
}

func init() {
	rootCmd.AddCommand(recoverCmd, resumeCmd, rollbackCmd, discardCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}

	candidates, err := recovery.Scan(mgr)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("no journals need recovery")
		return nil
	}

	for _, c := range candidates {
		fmt.Printf("%s  target=%s  status=%s  in_progress=%d pending=%d completed=%d failed=%d\n",
			c.JobID, c.TargetFolder, c.Status, c.InProgress, c.Pending, c.Completed, c.Failed)
	}
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}
	eng := executor.New(mgr, nil)

	result, err := recovery.Resume(cmd.Context(), mgr, eng, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("completed: %d  failed: %d\n", result.CompletedCount, result.FailedCount)
	if !result.Success {
		return fmt.Errorf("resume: job %s finished with failures", args[0])
	}
	return nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}
	eng := executor.New(mgr, nil)

	result, err := recovery.Rollback(cmd.Context(), mgr, eng, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("undone: %d  skipped: %d\n", result.Undone, result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("rollback: job %s finished with errors", args[0])
	}
	return nil
}

func runDiscard(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}
	if err := recovery.Discard(mgr, args[0]); err != nil {
		return err
	}
	fmt.Printf("discarded job %s\n", args[0])
	return nil
}
