// Package character models fictional characters and the named versions whose stats are
// rated in tiers.
package character

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vsbattles/versus/internal/tier"
)

// Variant is one named version of a character with at most one tier per stat.
// Stats keep the order in which they were first set.
type Variant struct {
	Character string
	Name      string

	stats map[string]tier.Tier
	order []string
}

// NewVariant returns a variant with no stats.
func NewVariant(characterName, name string) *Variant {
	return &Variant{
		Character: characterName,
		Name:      name,
		stats:     make(map[string]tier.Tier),
	}
}

// Set assigns t to stat, replacing any earlier value without changing the stat's position.
func (v *Variant) Set(stat string, t tier.Tier) {
	if v.stats == nil {
		v.stats = make(map[string]tier.Tier)
	}
	if _, ok := v.stats[stat]; !ok {
		v.order = append(v.order, stat)
	}
	v.stats[stat] = t
}

// Get returns the tier of stat.
func (v *Variant) Get(stat string) (tier.Tier, bool) {
	t, ok := v.stats[stat]
	return t, ok
}

// Remove deletes stat from the variant.
func (v *Variant) Remove(stat string) {
	if _, ok := v.stats[stat]; !ok {
		return
	}
	delete(v.stats, stat)
	v.order = slices.DeleteFunc(v.order, func(s string) bool { return s == stat })
}

// StatNames returns the variant's stats in insertion order.
func (v *Variant) StatNames() []string {
	return slices.Clone(v.order)
}

// Len returns the number of stats with a tier.
func (v *Variant) Len() int {
	return len(v.order)
}

// Label is the display name "<character> <version>".
func (v *Variant) Label() string {
	return strings.TrimSpace(v.Character + " " + v.Name)
}

func (v *Variant) String() string {
	parts := make([]string, 0, len(v.order))
	for _, stat := range v.order {
		parts = append(parts, v.stats[stat].String())
	}
	return fmt.Sprintf("Character Version: %s\n[%s]", v.Name, strings.Join(parts, ", "))
}

// StatValue is the serialised form of one stat of a variant.
type StatValue struct {
	Stat string `json:"stat"`
	Tier string `json:"tier"`
	Rank int    `json:"rank"`
}

type variantJSON struct {
	Character string      `json:"character"`
	Name      string      `json:"name"`
	Stats     []StatValue `json:"stats"`
}

// Values returns the variant's stats in order.
func (v *Variant) Values() []StatValue {
	out := make([]StatValue, 0, len(v.order))
	for _, stat := range v.order {
		t := v.stats[stat]
		out = append(out, StatValue{Stat: stat, Tier: t.Name(), Rank: t.Rank})
	}
	return out
}

func (v *Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(variantJSON{
		Character: v.Character,
		Name:      v.Name,
		Stats:     v.Values(),
	})
}

// Character is a named subject with an ordered list of variants.
type Character struct {
	Name     string     `json:"name"`
	Variants []*Variant `json:"variants"`
}

// New returns a character owning variants in the given order.
func New(name string, variants ...*Variant) *Character {
	return &Character{Name: name, Variants: variants}
}

// NewWithVersions returns a character with one empty variant per version name.
func NewWithVersions(name string, versions []string) *Character {
	c := New(name)
	for _, version := range versions {
		c.Add(NewVariant(name, version))
	}
	return c
}

// Add appends v.
func (c *Character) Add(v *Variant) {
	c.Variants = append(c.Variants, v)
}

// Remove drops v, compared by identity. It reports whether v was present.
func (c *Character) Remove(v *Variant) bool {
	i := slices.Index(c.Variants, v)
	if i < 0 {
		return false
	}
	c.Variants = slices.Delete(c.Variants, i, i+1)
	return true
}

// Variant returns the first variant called name.
func (c *Character) Variant(name string) (*Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// VersionNames returns the variant names in order.
func (c *Character) VersionNames() []string {
	names := make([]string, len(c.Variants))
	for i, v := range c.Variants {
		names[i] = v.Name
	}
	return names
}

// StatNames returns every stat set on any variant, ordered by first appearance.
func (c *Character) StatNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, v := range c.Variants {
		for _, stat := range v.order {
			if !seen[stat] {
				seen[stat] = true
				names = append(names, stat)
			}
		}
	}
	return names
}

// Merge appends other's variants after c's. Variants are not deduplicated.
func (c *Character) Merge(other *Character) {
	if other == nil {
		return
	}
	c.Variants = append(c.Variants, other.Variants...)
}

func (c *Character) String() string {
	parts := make([]string, len(c.Variants))
	for i, v := range c.Variants {
		parts[i] = v.String()
	}
	return fmt.Sprintf("Character: %s\n%s", c.Name, strings.Join(parts, "\n"))
}
