package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sentinelfs/sentinel/internal/vfsx"
)

// ruleFile is the YAML shape --rules files are parsed as: a flat list of
// organization rules, matching the Rule field names 1:1 so the file can
// be hand-written without an intermediate DTO.
type ruleFile struct {
	Rules []vfsx.Rule `yaml:"rules"`
}

func loadRules(path string) ([]vfsx.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}
	return rf.Rules, nil
}
