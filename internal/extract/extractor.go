// Package extract turns raw per-stat text into tier values and assigns them to
// character variants.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/matcher"
	"github.com/vsbattles/versus/internal/tier"
)

// FragmentSeparator splits a stat's raw text into per-variant fragments.
const FragmentSeparator = "|"

// Extractor finds tier mentions for every stat of a tier set. It is read-only after
// New and safe for concurrent use.
type Extractor struct {
	tiers       *tier.Set
	matchers    map[string]*matcher.Matcher
	concurrency int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConcurrency bounds how many stats Populate extracts at once.
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New builds one matcher per stat of set.
func New(set *tier.Set, opts ...Option) *Extractor {
	e := &Extractor{
		tiers:       set,
		matchers:    make(map[string]*matcher.Matcher),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, stat := range set.StatNames() {
		e.matchers[stat] = matcher.New(set.Synonyms(stat))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tiers returns the tier set the extractor was built from.
func (e *Extractor) Tiers() *tier.Set {
	return e.tiers
}

func (e *Extractor) matcherFor(stat string) (*matcher.Matcher, error) {
	m, ok := e.matchers[stat]
	if !ok {
		return nil, fmt.Errorf("%w: %q", tier.ErrUnknownStat, stat)
	}
	return m, nil
}

// FindTiers returns a tier for every mention of stat in text, left to right. Mentions
// that do not resolve are logged and skipped.
func (e *Extractor) FindTiers(stat, text string) ([]tier.Tier, error) {
	m, err := e.matcherFor(stat)
	if err != nil {
		return nil, err
	}

	var out []tier.Tier
	for mention := range m.Scan(text) {
		t, err := e.resolve(stat, mention, -1)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (e *Extractor) resolve(stat, mention string, fragment int) (tier.Tier, error) {
	t, err := e.tiers.LookupByName(stat, mention)
	if err == nil {
		return t, nil
	}
	issue := &StatError{Stat: stat, Fragment: fragment, Detail: fmt.Sprintf("%q: %v", mention, err), Err: ErrUnresolvedMention}
	slog.Warn("Matched text does not resolve to a tier", "stat", stat, "mention", mention, "err", err)
	return tier.Tier{}, issue
}

// StatResult is the outcome of extracting one stat.
type StatResult struct {
	Stat string
	// Fragments is the number of pipe-separated fragments in the raw text.
	Fragments int
	// Values holds the first tier of every fragment that had one, in fragment order.
	Values []tier.Tier
	// Issues lists recoverable problems; each is a *StatError.
	Issues []error
}

// ExtractStat splits raw into fragments and takes the first tier mentioned in each.
// Fragments without a mention are skipped, so Values may be shorter than Fragments.
// Only an unknown stat is returned as an error.
func (e *Extractor) ExtractStat(stat, raw string) (*StatResult, error) {
	m, err := e.matcherFor(stat)
	if err != nil {
		return nil, err
	}

	fragments := strings.Split(raw, FragmentSeparator)
	res := &StatResult{Stat: stat, Fragments: len(fragments)}

	for i, fragment := range fragments {
		mention, ok := m.First(fragment)
		if !ok {
			slog.Debug("No tier mentioned in fragment", "stat", stat, "fragment", i)
			continue
		}
		t, err := e.resolve(stat, mention, i)
		if err != nil {
			res.Issues = append(res.Issues, err)
			continue
		}
		res.Values = append(res.Values, t)
	}

	if len(res.Values) == 0 {
		res.Issues = append(res.Issues, &StatError{Stat: stat, Fragment: -1, Detail: "no tier found in text", Err: ErrEmptyExtraction})
	}
	return res, nil
}

// Report collects the per-stat results of Populate in stat order.
type Report struct {
	Character string
	Variants  int
	Stats     []*StatResult
}

// Issues returns every recoverable problem found, in stat order.
func (r *Report) Issues() []error {
	var out []error
	for _, s := range r.Stats {
		out = append(out, s.Issues...)
	}
	return out
}

// Assigned returns the stats that received values.
func (r *Report) Assigned() []string {
	var out []string
	for _, s := range r.Stats {
		if len(s.Values) > 0 {
			out = append(out, s.Stat)
		}
	}
	return out
}

// Populate extracts every configured stat from blocks (stat name -> raw text) and
// assigns the aligned values to c's variants. Stats are extracted concurrently into
// separate results and written to the variants afterwards, one stat at a time.
// A stat missing from blocks or without any value is left unset on every variant and
// reported as ErrEmptyExtraction.
func (e *Extractor) Populate(c *character.Character, blocks map[string]string) (*Report, error) {
	stats := e.tiers.StatNames()
	results := make([]*StatResult, len(stats))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, stat := range stats {
		raw, ok := blocks[stat]
		if !ok {
			results[i] = &StatResult{
				Stat:   stat,
				Issues: []error{&StatError{Stat: stat, Fragment: -1, Detail: "stat not found in text", Err: ErrEmptyExtraction}},
			}
			continue
		}
		g.Go(func() error {
			res, err := e.ExtractStat(stat, raw)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Character: c.Name, Variants: len(c.Variants), Stats: results}
	for _, res := range results {
		for _, issue := range res.Issues {
			if errors.Is(issue, ErrEmptyExtraction) {
				slog.Warn("Information for stat could not be parsed", "character", c.Name, "stat", res.Stat, "err", issue)
			}
		}

		aligned := Align(res.Values, len(c.Variants))
		if len(res.Values) > 0 && len(res.Values) != len(c.Variants) {
			slog.Debug("Tiling stat values over variants", "stat", res.Stat, "values", len(res.Values), "variants", len(c.Variants))
		}
		for i, t := range aligned {
			c.Variants[i].Set(res.Stat, t)
		}
	}

	return report, nil
}
