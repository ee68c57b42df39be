package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/vfsx"
)

var scanCmd = &cobra.Command{
	Use:   "scan <root>",
	Short: "Scan a directory into the shadow VFS and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]

	vfs, err := vfsx.New(root, vfsx.Options{MaxOperations: cfg.Rules.MaxOperations})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", root, err)
	}

	fmt.Printf("scanned %s\n", root)
	fmt.Printf("  files:       %d\n", len(vfs.Files()))
	fmt.Printf("  directories: %d\n", vfs.DirectoryCount())
	fmt.Print(vfs.GenerateCompressedTree(20))
	return nil
}
