package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sentinelfs/sentinel/internal/vfsx"
)

var planCmd = &cobra.Command{
	Use:   "plan <root>",
	Short: "Apply a rule file against a scanned root and print the preview, without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

var planRulesFile string
var planOpsFile string

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planRulesFile, "rules", "", "YAML rule file")
	planCmd.Flags().StringVar(&planOpsFile, "ops", "", "JSON manual operation list")
	planCmd.MarkFlagsMutuallyExclusive("rules", "ops")
}

// stageFromSource picks --rules or --ops, preferring whichever was
// actually supplied; exactly one of the two is expected to be set since
// the flags are mutually exclusive.
func stageFromSource(root, rulesPath, opsPath string) (*vfsx.VFS, error) {
	switch {
	case opsPath != "":
		return stageFromOps(root, opsPath)
	case rulesPath != "":
		return stageFromRules(root, rulesPath)
	default:
		return nil, fmt.Errorf("one of --rules or --ops is required")
	}
}

func stageFromRules(root, rulesPath string) (*vfsx.VFS, error) {
	ruleSet, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	vfs, err := vfsx.New(root, vfsx.Options{MaxOperations: cfg.Rules.MaxOperations})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if _, err := vfs.ApplyRules(ruleSet, vfsx.ApplyReplace); err != nil {
		return nil, fmt.Errorf("applying rules: %w", err)
	}
	if err := vfs.ValidateStaged(); err != nil {
		return nil, fmt.Errorf("plan failed validation: %w", err)
	}
	return vfs, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	vfs, err := stageFromSource(args[0], planRulesFile, planOpsFile)
	if err != nil {
		return err
	}

	preview := vfs.PreviewOperations(vfsx.GroupByOperationType, true)
	fmt.Printf("plan: %d operations (%d files unchanged)\n", preview.TotalOperations, preview.UnchangedFiles)
	for _, key := range preview.GroupKeys {
		ops := preview.Groups[key]
		fmt.Printf("  %s: %d\n", key, len(ops))
		for _, op := range ops {
			fmt.Printf("    [%s] %s\n", op.OpID, describeOp(op))
		}
	}
	return nil
}

func describeOp(op vfsx.PlannedOperation) string {
	switch op.Type {
	case vfsx.OpCreateFolder, vfsx.OpDeleteFolder:
		return op.Path
	case vfsx.OpRename:
		return fmt.Sprintf("%s -> %s", op.Path, op.NewName)
	default:
		return fmt.Sprintf("%s -> %s", op.Source, op.Destination)
	}
}
