package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/wal"
)

var previewCmd = &cobra.Command{
	Use:   "preview <job-id>",
	Short: "Show a committed journal's operations grouped by kind and status",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	mgr, err := wal.NewManager(cfg.WAL.Directory)
	if err != nil {
		return err
	}

	journal, ok, err := mgr.LoadJournal(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("preview: job not found: %s", args[0])
	}

	byKind := make(map[string]int)
	byStatus := make(map[string]int)
	for _, e := range journal.Entries {
		byKind[e.Operation.Kind.String()]++
		byStatus[e.Status.String()]++
	}

	fmt.Printf("job %s  target=%s  status=%s  entries=%d\n",
		journal.JobID, journal.TargetFolder, journal.Status, len(journal.Entries))
	fmt.Println("by kind:")
	for _, k := range sortedStringKeys(byKind) {
		fmt.Printf("  %s: %d\n", k, byKind[k])
	}
	fmt.Println("by status:")
	for _, k := range sortedStringKeys(byStatus) {
		fmt.Printf("  %s: %d\n", k, byStatus[k])
	}
	return nil
}

func sortedStringKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
