// Package matcher finds known phrases inside free text with a character trie.
//
// Scanning is greedy and left to right. At each position the trie is followed for as
// long as the text keeps matching an edge, remembering the longest prefix that ended on
// a complete phrase. That phrase is emitted and scanning resumes right after it, so
// matches never overlap. Following stops at the first character without an edge, which
// means a longer phrase hidden behind a dead end is never considered.
package matcher

import (
	"iter"
	"unicode/utf8"
)

type node struct {
	children map[rune]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Match is one phrase found in a text. Start and End are byte offsets into the scanned
// string and Text is text[Start:End].
type Match struct {
	Start int
	End   int
	Text  string
}

// Matcher recognises a fixed set of phrases. It holds no scan state, so one Matcher may
// be shared by any number of goroutines.
type Matcher struct {
	root     *node
	patterns int
}

// New builds a Matcher for patterns. Empty patterns are ignored and duplicates collapse.
func New(patterns []string) *Matcher {
	m := &Matcher{root: newNode()}
	for _, p := range patterns {
		m.insert(p)
	}
	return m
}

func (m *Matcher) insert(pattern string) {
	if pattern == "" {
		return
	}
	n := m.root
	for _, r := range pattern {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if !n.terminal {
		n.terminal = true
		m.patterns++
	}
}

// Len returns the number of distinct patterns.
func (m *Matcher) Len() int {
	return m.patterns
}

// Matches yields every match in text in ascending offset order.
func (m *Matcher) Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		i := 0
		for i < len(text) {
			end := m.longestAt(text, i)
			if end > i {
				if !yield(Match{Start: i, End: end, Text: text[i:end]}) {
					return
				}
				i = end
				continue
			}
			_, width := utf8.DecodeRuneInString(text[i:])
			i += width
		}
	}
}

// Scan yields the matched phrases of text, left to right.
func (m *Matcher) Scan(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for match := range m.Matches(text) {
			if !yield(match.Text) {
				return
			}
		}
	}
}

// FindAll returns every matched phrase of text.
func (m *Matcher) FindAll(text string) []string {
	var out []string
	for s := range m.Scan(text) {
		out = append(out, s)
	}
	return out
}

// First returns the leftmost match of text.
func (m *Matcher) First(text string) (string, bool) {
	for s := range m.Scan(text) {
		return s, true
	}
	return "", false
}

// longestAt follows the trie from byte offset start and returns the end offset of the
// longest phrase found along the way, or start when none was found.
func (m *Matcher) longestAt(text string, start int) int {
	n := m.root
	end := start
	for j := start; j < len(text); {
		r, width := utf8.DecodeRuneInString(text[j:])
		child, ok := n.children[r]
		if !ok {
			break
		}
		n = child
		j += width
		if n.terminal {
			end = j
		}
	}
	return end
}
