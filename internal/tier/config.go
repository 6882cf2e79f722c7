package tier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const statNamesKey = "statNames"

// Config is the tier configuration: the ordered stat names plus one entry per stat that
// defines its own tiers. The DefaultKey entry supplies tiers for every other stat.
//
// On disk every stat entry is a top-level key next to "statNames":
//
//	{"statNames": ["Speed"], "tier": {"tiers": ["Low", ["Mid", "Medium"]]}}
type Config struct {
	StatNames []string              `validate:"required,min=1,unique,dive,required"`
	Stats     map[string]StatConfig `validate:"dive,keys,required,endkeys"`
}

// StatConfig lists the tiers of one stat, weakest first.
type StatConfig struct {
	Tiers []Spec `json:"tiers" yaml:"tiers" validate:"required,min=1,dive,min=1,dive,required"`
}

// Spec is one tier's synonyms. In config files it is either a bare string or a list of
// strings whose first element is the canonical name.
type Spec []string

func (s *Spec) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Spec{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("tier must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = Spec{single}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return fmt.Errorf("tier must be a string or a list of strings: %w", err)
	}
	*s = many
	return nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Stats = make(map[string]StatConfig, len(raw))
	for key, msg := range raw {
		switch {
		case key == statNamesKey:
			if err := json.Unmarshal(msg, &c.StatNames); err != nil {
				return fmt.Errorf("failed to parse %s: %w", statNamesKey, err)
			}
		case strings.HasPrefix(key, "$"):
		default:
			var sc StatConfig
			if err := json.Unmarshal(msg, &sc); err != nil {
				return fmt.Errorf("failed to parse stat %q: %w", key, err)
			}
			c.Stats[key] = sc
		}
	}
	return nil
}

func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Stats = make(map[string]StatConfig, len(raw))
	for key, node := range raw {
		switch {
		case key == statNamesKey:
			if err := node.Decode(&c.StatNames); err != nil {
				return fmt.Errorf("failed to parse %s: %w", statNamesKey, err)
			}
		case strings.HasPrefix(key, "$"):
		default:
			var sc StatConfig
			if err := node.Decode(&sc); err != nil {
				return fmt.Errorf("failed to parse stat %q: %w", key, err)
			}
			c.Stats[key] = sc
		}
	}
	return nil
}

// LoadConfigFile reads a tier configuration from a JSON or YAML file, chosen by extension.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s (supported: .json, .yaml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tier config %s: %w", path, err)
	}

	slog.Debug("Loaded tier config", "path", path, "stats", len(cfg.StatNames), "entries", len(cfg.Stats))
	return &cfg, nil
}

// LoadFile reads, validates and builds the tier set described by the file at path.
func LoadFile(path string) (*Set, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return Load(cfg)
}

// Load validates cfg and builds its tier set. Ranks are the 1-based positions in each
// stat's tier list. Stats without their own entry receive an independent copy of the
// DefaultKey tiers relabelled with the stat's name.
func Load(cfg *Config) (*Set, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	var defaults []Tier
	if sc, ok := cfg.Stats[DefaultKey]; ok {
		defaults = buildTiers(DefaultKey, sc)
		if _, err := indexSynonyms(DefaultKey, defaults); err != nil {
			return nil, err
		}
	}

	set := &Set{
		statNames: slices.Clone(cfg.StatNames),
		tiers:     make(map[string][]Tier, len(cfg.StatNames)),
		index:     make(map[string]map[string]int, len(cfg.StatNames)),
	}

	for _, stat := range cfg.StatNames {
		var tiers []Tier
		if sc, ok := cfg.Stats[stat]; ok {
			tiers = buildTiers(stat, sc)
		} else {
			tiers = relabel(defaults, stat)
			slog.Debug("Using default tiers", "stat", stat, "tiers", len(tiers))
		}

		idx, err := indexSynonyms(stat, tiers)
		if err != nil {
			return nil, err
		}

		set.tiers[stat] = tiers
		set.index[stat] = idx
	}

	return set, nil
}

// indexSynonyms maps every synonym to its tier's position, rejecting a synonym shared by
// two ranks.
func indexSynonyms(stat string, tiers []Tier) (map[string]int, error) {
	idx := make(map[string]int)
	for i, t := range tiers {
		for _, syn := range t.Synonyms {
			if prev, dup := idx[syn]; dup && prev != i {
				return nil, fmt.Errorf("stat %q: synonym %q is shared by ranks %d and %d", stat, syn, tiers[prev].Rank, t.Rank)
			}
			idx[syn] = i
		}
	}
	return idx, nil
}

func buildTiers(stat string, sc StatConfig) []Tier {
	tiers := make([]Tier, 0, len(sc.Tiers))
	for i, spec := range sc.Tiers {
		tiers = append(tiers, Tier{
			Stat:     stat,
			Rank:     i + 1,
			Synonyms: slices.Clone([]string(spec)),
		})
	}
	return tiers
}

// relabel deep-copies tiers onto stat so no two stats share synonym storage.
func relabel(tiers []Tier, stat string) []Tier {
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		c := t.Clone()
		c.Stat = stat
		out[i] = c
	}
	return out
}
