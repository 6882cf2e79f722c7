package tier

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const speedJSON = `{
	"$schema": "./tier-config.schema.json",
	"statNames": ["Speed", "Intelligence", "Durability"],
	"Speed": {"tiers": ["Slow", ["Average", "Normal"], "Peak Human"]},
	"tier": {"tiers": ["Low", ["Mid", "Medium"], "High"]}
}`

const speedYAML = `
statNames: [Speed, Intelligence, Durability]
Speed:
  tiers:
    - Slow
    - [Average, Normal]
    - Peak Human
tier:
  tiers: [Low, [Mid, Medium], High]
`

func TestConfigUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		decode func(*Config) error
	}{
		{
			name:   "json",
			decode: func(c *Config) error { return json.Unmarshal([]byte(speedJSON), c) },
		},
		{
			name:   "yaml",
			decode: func(c *Config) error { return yaml.Unmarshal([]byte(speedYAML), c) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			require.NoError(t, tt.decode(&cfg))

			assert.Equal(t, []string{"Speed", "Intelligence", "Durability"}, cfg.StatNames)
			require.Contains(t, cfg.Stats, "Speed")
			require.Contains(t, cfg.Stats, DefaultKey)
			assert.NotContains(t, cfg.Stats, "$schema")
			assert.Equal(t, []Spec{{"Slow"}, {"Average", "Normal"}, {"Peak Human"}}, cfg.Stats["Speed"].Tiers)
			assert.Equal(t, []Spec{{"Low"}, {"Mid", "Medium"}, {"High"}}, cfg.Stats[DefaultKey].Tiers)
		})
	}
}

func TestSpecRejectsObjects(t *testing.T) {
	var s Spec
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x"}`), &s))
}

func TestLoadAssignsRanksInOrder(t *testing.T) {
	set := mustLoad(t, speedJSON)

	tiers := set.Tiers("Speed")
	require.Len(t, tiers, 3)
	for i, tr := range tiers {
		assert.Equal(t, i+1, tr.Rank)
		assert.Equal(t, "Speed", tr.Stat)
	}
	assert.Equal(t, "Average", tiers[1].Name())
	assert.Equal(t, []string{"Average", "Normal"}, tiers[1].Synonyms)
}

func TestLoadFallbackIsRelabelledCopy(t *testing.T) {
	set := mustLoad(t, speedJSON)

	intel := set.Tiers("Intelligence")
	dura := set.Tiers("Durability")
	require.Len(t, intel, 3)
	require.Len(t, dura, 3)

	for i := range intel {
		assert.Equal(t, "Intelligence", intel[i].Stat)
		assert.Equal(t, "Durability", dura[i].Stat)
		assert.Equal(t, intel[i].Rank, dura[i].Rank)
		assert.False(t, intel[i].Equal(dura[i]), "tiers of different stats must not be equal")
	}

	// Storage inside the set must not be shared between fallback stats.
	assert.NotSame(t, &set.tiers["Intelligence"][1].Synonyms[0], &set.tiers["Durability"][1].Synonyms[0])
	set.tiers["Intelligence"][1].Synonyms[0] = "Changed"
	assert.Equal(t, "Mid", set.tiers["Durability"][1].Synonyms[0])
}

func TestTiersReturnsCopies(t *testing.T) {
	set := mustLoad(t, speedJSON)

	tiers := set.Tiers("Speed")
	tiers[0].Synonyms[0] = "Mutated"

	got, err := set.LookupByName("Speed", "Slow")
	require.NoError(t, err)
	assert.Equal(t, "Slow", got.Name())
}

func TestLoadRejectsDuplicateSynonym(t *testing.T) {
	_, err := Load(&Config{
		StatNames: []string{"Speed"},
		Stats: map[string]StatConfig{
			"Speed": {Tiers: []Spec{{"Fast"}, {"Faster", "Fast"}}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Fast"`)
}

func TestLoadRejectsDuplicateSynonymInUnusedDefault(t *testing.T) {
	_, err := Load(&Config{
		StatNames: []string{"Speed"},
		Stats: map[string]StatConfig{
			"Speed":    {Tiers: []Spec{{"Slow"}, {"Fast"}}},
			DefaultKey: {Tiers: []Spec{{"Low"}, {"High", "Low"}}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stat "tier": synonym "Low"`)
}

func TestLoadAllowsSynonymRepeatedWithinTier(t *testing.T) {
	set, err := Load(&Config{
		StatNames: []string{"Speed"},
		Stats: map[string]StatConfig{
			"Speed": {Tiers: []Spec{{"Fast", "Fast"}}},
		},
	})
	require.NoError(t, err)
	assert.True(t, set.IsValidTier("Speed", "Fast"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantTag string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantTag: "required",
		},
		{
			name:    "no stat names",
			cfg:     &Config{Stats: map[string]StatConfig{DefaultKey: {Tiers: []Spec{{"A"}}}}},
			wantTag: "required",
		},
		{
			name: "duplicate stat names",
			cfg: &Config{
				StatNames: []string{"Speed", "Speed"},
				Stats:     map[string]StatConfig{DefaultKey: {Tiers: []Spec{{"A"}}}},
			},
			wantTag: "unique",
		},
		{
			name: "empty tier list",
			cfg: &Config{
				StatNames: []string{"Speed"},
				Stats:     map[string]StatConfig{"Speed": {}},
			},
			wantTag: "required",
		},
		{
			name: "empty synonym list",
			cfg: &Config{
				StatNames: []string{"Speed"},
				Stats:     map[string]StatConfig{"Speed": {Tiers: []Spec{{}}}},
			},
			wantTag: "min",
		},
		{
			name: "empty synonym",
			cfg: &Config{
				StatNames: []string{"Speed"},
				Stats:     map[string]StatConfig{"Speed": {Tiers: []Spec{{"Fast", ""}}}},
			},
			wantTag: "required",
		},
		{
			name: "missing fallback",
			cfg: &Config{
				StatNames: []string{"Speed", "Range"},
				Stats:     map[string]StatConfig{"Speed": {Tiers: []Spec{{"Fast"}}}},
			},
			wantTag: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			tags := make([]string, 0, len(verr.Fields))
			for _, fe := range verr.Fields {
				tags = append(tags, fe.Tag)
			}
			assert.Contains(t, tags, tt.wantTag)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "tier-config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(speedJSON), 0644))
	yamlPath := filepath.Join(dir, "tier-config.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(speedYAML), 0644))

	fromJSON, err := LoadFile(jsonPath)
	require.NoError(t, err)
	fromYAML, err := LoadFile(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.StatNames(), fromYAML.StatNames())
	for _, stat := range fromJSON.StatNames() {
		assert.Equal(t, fromJSON.Tiers(stat), fromYAML.Tiers(stat))
	}

	_, err = LoadConfigFile(filepath.Join(dir, "tier-config.toml"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(badPath, []byte("x"), 0644))
	_, err = LoadConfigFile(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func mustLoad(t *testing.T, raw string) *Set {
	t.Helper()
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	set, err := Load(&cfg)
	require.NoError(t, err)
	return set
}
