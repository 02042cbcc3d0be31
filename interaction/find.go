package interaction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FindMatch is one literal match location, in row/column terms matching a
// snapshot or scrollback line's rune indices.
type FindMatch struct {
	Row      int
	StartCol int
	EndCol   int
}

// Find implements the find-in-buffer panel (spec.md §4.9e): Closed -> Open
// (seeded from the current selection) -> Typing -> Next/Prev -> Closed.
// Matching is literal, not regex, so user queries containing regex
// metacharacters behave as plain substring search.
type Find struct {
	Open        bool
	Query       string
	Matches     []FindMatch
	ActiveIndex int
}

// OpenWith opens the panel, seeding the query from the first non-empty
// selected line, trimmed of surrounding whitespace. An empty seed opens
// with an empty query.
func (f *Find) OpenWith(seedLines []string) {
	f.Open = true
	f.Query = ""
	for _, line := range seedLines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			f.Query = trimmed
			break
		}
	}
	f.Matches = nil
	f.ActiveIndex = -1
}

// Close resets the panel to its zero state.
func (f *Find) Close() {
	*f = Find{}
}

// SetQuery updates the query text; callers re-run Search afterward with the
// current buffer contents.
func (f *Find) SetQuery(q string) {
	f.Query = q
}

// Search scans lines (topmost first, so Matches and ActiveIndex count down
// from the top of the buffer) for literal, case-sensitive occurrences of
// the query and rebuilds the match list from scratch, so re-scanning the
// same lines never accumulates old matches. A match identical (same row
// and columns) to the one recorded just before it is skipped.
func (f *Find) Search(lines []string) {
	f.Matches = nil
	f.ActiveIndex = -1
	if f.Query == "" {
		return
	}
	pattern := regexp.MustCompile(regexp.QuoteMeta(f.Query))

	var last FindMatch
	haveLast := false
	for row, line := range lines {
		for _, loc := range pattern.FindAllStringIndex(line, -1) {
			start := utf8.RuneCountInString(line[:loc[0]])
			m := FindMatch{Row: row, StartCol: start, EndCol: start + utf8.RuneCountInString(line[loc[0]:loc[1]])}
			if haveLast && m == last {
				continue
			}
			f.Matches = append(f.Matches, m)
			last = m
			haveLast = true
		}
	}
	if len(f.Matches) > 0 {
		f.ActiveIndex = 0
	}
}

// Next advances to the next match, wrapping to the first after the last.
// Returns the match and ok=false if there are no matches at all.
func (f *Find) Next() (FindMatch, bool) {
	if len(f.Matches) == 0 {
		return FindMatch{}, false
	}
	f.ActiveIndex = (f.ActiveIndex + 1) % len(f.Matches)
	return f.Matches[f.ActiveIndex], true
}

// Prev moves to the previous match, wrapping to the last before the first.
func (f *Find) Prev() (FindMatch, bool) {
	if len(f.Matches) == 0 {
		return FindMatch{}, false
	}
	f.ActiveIndex = (f.ActiveIndex - 1 + len(f.Matches)) % len(f.Matches)
	return f.Matches[f.ActiveIndex], true
}

// DisplayOffsetForMatch returns the display offset that brings m onscreen,
// aligning it to the top of the viewport when it sits in scrollback. m.Row
// is an absolute buffer row, 0 = oldest scrollback line,
// historySize+numLines-1 = the newest live row.
func DisplayOffsetForMatch(m FindMatch, numLines, historySize int) int {
	if m.Row >= historySize {
		return 0
	}
	offset := historySize - m.Row
	if offset > historySize {
		offset = historySize
	}
	return offset
}
