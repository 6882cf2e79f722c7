// Package tier holds the ranked tier model: the ordered grades of each stat and the
// synonyms used to recognise them in text.
package tier

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hbollon/go-edlib"
)

var (
	ErrUnknownStat  = errors.New("unknown stat")
	ErrTierNotFound = errors.New("tier not found")
)

// DefaultKey is the reserved config key whose tiers back every stat without its own entry.
const DefaultKey = "tier"

// Tier is one ranked grade of a stat. Rank starts at 1 and a higher rank is stronger.
// Synonyms[0] is the canonical display name.
type Tier struct {
	Stat     string   `json:"stat" yaml:"stat"`
	Rank     int      `json:"rank" yaml:"rank"`
	Synonyms []string `json:"synonyms" yaml:"synonyms"`
}

// Name returns the canonical display name.
func (t Tier) Name() string {
	if len(t.Synonyms) == 0 {
		return ""
	}
	return t.Synonyms[0]
}

// Equal reports whether both tiers belong to the same stat and share a rank.
func (t Tier) Equal(other Tier) bool {
	return t.Stat == other.Stat && t.Rank == other.Rank
}

// MatchesSynonym reports whether text is exactly one of the tier's synonyms.
func (t Tier) MatchesSynonym(text string) bool {
	return slices.Contains(t.Synonyms, text)
}

// Clone returns a copy whose synonym slice is not shared with t.
func (t Tier) Clone() Tier {
	t.Synonyms = slices.Clone(t.Synonyms)
	return t
}

func (t Tier) String() string {
	return fmt.Sprintf("Tier(stat: %s, tier: %s, rank: %d)", t.Stat, t.Name(), t.Rank)
}

// Set maps stat names to their ordered tiers. It is immutable once built and safe for
// concurrent readers.
type Set struct {
	statNames []string
	tiers     map[string][]Tier
	// stat -> synonym -> index into tiers[stat]
	index map[string]map[string]int
}

// LookupByName returns the tier of stat that has text as one of its synonyms.
func (s *Set) LookupByName(stat, text string) (Tier, error) {
	idx, ok := s.index[stat]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	i, ok := idx[text]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q is not a tier of %s", ErrTierNotFound, text, stat)
	}
	return s.tiers[stat][i].Clone(), nil
}

// LookupByRank returns the tier of stat at the given 1-based rank.
func (s *Set) LookupByRank(stat string, rank int) (Tier, error) {
	tiers, ok := s.tiers[stat]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	if rank < 1 || rank > len(tiers) {
		return Tier{}, fmt.Errorf("%w: %s has no rank %d", ErrTierNotFound, stat, rank)
	}
	return tiers[rank-1].Clone(), nil
}

// IsValidTier reports whether text names a tier of stat.
func (s *Set) IsValidTier(stat, text string) bool {
	_, err := s.LookupByName(stat, text)
	return err == nil
}

// HasStat reports whether stat is configured.
func (s *Set) HasStat(stat string) bool {
	_, ok := s.tiers[stat]
	return ok
}

// StatNames returns the configured stat names in config order.
func (s *Set) StatNames() []string {
	return slices.Clone(s.statNames)
}

// Tiers returns the tiers of stat by ascending rank, or nil when stat is unknown.
func (s *Set) Tiers(stat string) []Tier {
	tiers, ok := s.tiers[stat]
	if !ok {
		return nil
	}
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[i] = t.Clone()
	}
	return out
}

// Synonyms returns every synonym of every tier of stat, in rank order.
func (s *Set) Synonyms(stat string) []string {
	var out []string
	for _, t := range s.tiers[stat] {
		out = append(out, t.Synonyms...)
	}
	return out
}

// Suggest returns the synonym of stat closest to text, or "" when nothing is close enough
// to be a plausible typo.
func (s *Set) Suggest(stat, text string) string {
	return Closest(text, s.Synonyms(stat))
}

// minSuggestSimilarity is the Jaro-Winkler floor below which no suggestion is made.
const minSuggestSimilarity = 0.8

// Closest returns the candidate most similar to query by Jaro-Winkler similarity, or ""
// when none reaches minSuggestSimilarity.
func Closest(query string, candidates []string) string {
	var best string
	var bestSim float32
	for _, candidate := range candidates {
		sim := edlib.JaroWinklerSimilarity(query, candidate)
		if sim >= minSuggestSimilarity && sim > bestSim {
			best, bestSim = candidate, sim
		}
	}
	return best
}
