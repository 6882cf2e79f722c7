package results

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsbattles/versus/internal/battle"
)

// BattleConfig records what the battles were run against.
type BattleConfig struct {
	TierConfig string `yaml:"tierconfig"`
	Timestamp  string `yaml:"timestamp"`
}

// BattleEntry is one battle in the report.
type BattleEntry struct {
	First    string         `yaml:"first"`
	Second   string         `yaml:"second"`
	Outcomes map[string]int `yaml:"outcomes"`
	Skipped  []string       `yaml:"skipped,omitempty"`
	Verdict  int            `yaml:"verdict"`
	Winner   string         `yaml:"winner"`
	Score    string         `yaml:"score"`
}

// BattleSpec is the complete YAML report.
type BattleSpec struct {
	Config  BattleConfig  `yaml:"config"`
	Results []BattleEntry `yaml:"results"`
}

// NewEntry converts a battle result into its report form.
func NewEntry(r *battle.Result) BattleEntry {
	entry := BattleEntry{
		First:    r.First.Label(),
		Second:   r.Second.Label(),
		Outcomes: make(map[string]int, len(r.Outcomes)),
		Skipped:  r.Skipped,
		Verdict:  r.Verdict,
		Winner:   "tie",
		Score:    r.Score(),
	}
	for stat, o := range r.Outcomes {
		entry.Outcomes[stat] = int(o)
	}
	if w := r.Winner(); w != nil {
		entry.Winner = w.Label()
	}
	return entry
}

// SaveToYAML writes results to <dir>/battle-<timestamp>.yaml and returns the path.
func SaveToYAML(dir, tierConfig string, now time.Time, results ...*battle.Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := now.Format("2006-01-02_15-04-05")
	spec := BattleSpec{
		Config: BattleConfig{
			TierConfig: tierConfig,
			Timestamp:  timestamp,
		},
		Results: make([]BattleEntry, 0, len(results)),
	}
	for _, r := range results {
		spec.Results = append(spec.Results, NewEntry(r))
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("battle-%s.yaml", timestamp))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	slog.Info("Battle report saved", "path", filename, "battles", len(results))
	return filename, nil
}

// LoadYAML reads a report written by SaveToYAML.
func LoadYAML(path string) (*BattleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var spec BattleSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &spec, nil
}
