package extract

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const keyLabel = "Key"

// Sheet is the plain-text stat sheet of one character: the version names from the Key
// line and the raw text block of every recognised stat.
//
//	Key: Base | Super Saiyan
//	Speed: Peak Human | Superhuman,
//	  possibly higher
//	Intelligence: Average
//
// A line starting with a known label opens that block; other lines continue the open
// block and a blank line closes it. A stat listed twice has its blocks joined with the
// fragment separator.
type Sheet struct {
	Versions []string
	Blocks   map[string]string
}

// ParseSheet reads a stat sheet, recognising the labels in statNames.
func ParseSheet(r io.Reader, statNames []string) (*Sheet, error) {
	labels := make(map[string]string, len(statNames))
	for _, stat := range statNames {
		labels[strings.ToLower(strings.TrimSpace(stat))] = stat
	}

	sheet := &Sheet{Blocks: make(map[string]string)}
	var current string
	hasKey := false

	scanner := bufio.NewScanner(r)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			current = ""
			continue
		}

		label, rest, found := strings.Cut(line, ":")
		label = strings.TrimSpace(label)
		if found && strings.EqualFold(label, keyLabel) {
			sheet.Versions = splitVersions(rest)
			hasKey = true
			current = ""
			continue
		}
		if found {
			if stat, ok := labels[strings.ToLower(label)]; ok {
				rest = strings.TrimSpace(rest)
				if prev, exists := sheet.Blocks[stat]; exists {
					rest = prev + " " + FragmentSeparator + " " + rest
				}
				sheet.Blocks[stat] = rest
				current = stat
				continue
			}
		}
		if current != "" {
			sheet.Blocks[current] += " " + line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading stat sheet at line %d: %w", lineNum, err)
	}
	if !hasKey {
		return nil, ErrMissingKey
	}

	return sheet, nil
}

func splitVersions(s string) []string {
	var out []string
	for _, part := range strings.Split(s, FragmentSeparator) {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
