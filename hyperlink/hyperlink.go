// Package hyperlink implements the hyperlink resolver (spec.md §4.4): given
// a hovered grid point, it returns the target string under the pointer —
// an explicit OSC-8 hyperlink, a detected URL, or a user-configured path
// pattern match — along with whether the target is a URL and the grid
// range it covers. The "hovered range" concept mirrors the underline-on-
// hover painting the teacher's renderer drives from SetHoverURL/ClearHoverURL.
package hyperlink

import (
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Cell is the minimal per-cell information the resolver needs.
type Cell struct {
	Char       rune
	Hyperlink  string // OSC-8 URI, empty if none
	WideSpacer bool   // second cell of a wide character, carries no position
}

// LineSource gives the resolver read access to the grid, wrapped-line aware.
type LineSource interface {
	// Cell returns the cell at (line, col); ok is false out of bounds.
	Cell(line, col int) (Cell, bool)
	NumCols() int
	// Wrapped reports whether line continues onto line+1 without a hard
	// newline (the line is part of the same logical line as the next).
	Wrapped(line int) bool
}

// Range identifies the grid cells a resolved target spans.
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Result is what Resolve returns for a successful hit.
type Result struct {
	Target string
	IsURL  bool
	Range  Range
}

// urlRegex matches the IRI schemes spec.md §4.4 recognizes.
var urlRegex = buildURLRegex()

func buildURLRegex() *regexp.Regexp {
	schemes := strings.Join([]string{
		"ipfs:", "ipns:", "magnet:", "mailto:", "gemini://", "gopher://",
		"https://", "http://", "news:", "file://", "git://", "ssh:", "ftp://",
	}, "|")
	// Terminator class: control chars, whitespace, and <>"{}^⟨⟩`'.
	terminators := "\\s<>\"{}^`'\u27e8\u27e9\x00-\x1f\x7f"
	return regexp.MustCompile(`(?:` + schemes + `)[^` + terminators + `]+`)
}

// Resolve locates the hyperlink target at (line, col), if any.
func Resolve(src LineSource, line, col int, pathRegexes []*regexp.Regexp, pathRegexTimeout time.Duration) (Result, bool) {
	if res, ok := resolveExplicitHyperlink(src, line, col); ok {
		return res, true
	}
	if res, ok := resolveURLMatch(src, line, col); ok {
		return downgradeFileURL(res), true
	}
	if len(pathRegexes) > 0 && pathRegexTimeout > 0 {
		if res, ok := resolvePathMatch(src, line, col, pathRegexes, pathRegexTimeout); ok {
			return res, true
		}
	}
	return Result{}, false
}

// --- Step 1: explicit OSC-8 hyperlink ---

func resolveExplicitHyperlink(src LineSource, line, col int) (Result, bool) {
	cell, ok := src.Cell(line, col)
	if !ok || cell.Hyperlink == "" {
		return Result{}, false
	}
	uri := cell.Hyperlink

	startLine, startCol := line, col
	for {
		pl, pc, ok := prevPos(src, startLine, startCol)
		if !ok {
			break
		}
		c, ok2 := src.Cell(pl, pc)
		if !ok2 || c.Hyperlink != uri {
			break
		}
		startLine, startCol = pl, pc
	}

	endLine, endCol := line, col
	for {
		nl, nc, ok := nextPos(src, endLine, endCol)
		if !ok {
			break
		}
		c, ok2 := src.Cell(nl, nc)
		if !ok2 || c.Hyperlink != uri {
			break
		}
		endLine, endCol = nl, nc
	}

	return Result{
		Target: uri,
		IsURL:  true,
		Range:  Range{startLine, startCol, endLine, endCol},
	}, true
}

func prevPos(src LineSource, line, col int) (int, int, bool) {
	if col > 0 {
		return line, col - 1, true
	}
	if line > 0 && src.Wrapped(line-1) {
		return line - 1, src.NumCols() - 1, true
	}
	return 0, 0, false
}

func nextPos(src LineSource, line, col int) (int, int, bool) {
	if col < src.NumCols()-1 {
		return line, col + 1, true
	}
	if src.Wrapped(line) {
		return line + 1, 0, true
	}
	return 0, 0, false
}

// --- Step 2: URL regex over the logical line ---

type runePos struct {
	line, col int
}

// logicalLine flattens every physical line that wraps into (or out of)
// hoverLine into one string, recording the grid position each byte offset
// originated from.
type logicalLine struct {
	text       string
	byteStarts []int
	positions  []runePos
}

func buildLogicalLine(src LineSource, hoverLine int) logicalLine {
	startLine := hoverLine
	for startLine > 0 && src.Wrapped(startLine-1) {
		startLine--
	}

	var sb strings.Builder
	var byteStarts []int
	var positions []runePos

	line := startLine
	for {
		for col := 0; col < src.NumCols(); col++ {
			cell, ok := src.Cell(line, col)
			if !ok {
				break
			}
			if cell.WideSpacer {
				continue
			}
			byteStarts = append(byteStarts, sb.Len())
			positions = append(positions, runePos{line, col})
			sb.WriteRune(cell.Char)
		}
		if !src.Wrapped(line) {
			break
		}
		line++
	}

	return logicalLine{text: sb.String(), byteStarts: byteStarts, positions: positions}
}

// byteOffsetFor returns the byte offset of (line, col) within the
// flattened text, or -1 if that position isn't part of it.
func (ll logicalLine) byteOffsetFor(line, col int) int {
	for i, p := range ll.positions {
		if p.line == line && p.col == col {
			return ll.byteStarts[i]
		}
	}
	return -1
}

// rangeForByteSpan maps a [start, end) byte span in the flattened text back
// to a grid Range, inclusive of the last covered column.
func (ll logicalLine) rangeForByteSpan(start, end int) (Range, bool) {
	var first, last runePos
	found := false
	for i, off := range ll.byteStarts {
		if off >= start && off < end {
			if !found {
				first = ll.positions[i]
				found = true
			}
			last = ll.positions[i]
		}
	}
	if !found {
		return Range{}, false
	}
	return Range{first.line, first.col, last.line, last.col}, true
}

func resolveURLMatch(src LineSource, line, col int) (Result, bool) {
	ll := buildLogicalLine(src, line)
	hoverOffset := ll.byteOffsetFor(line, col)
	if hoverOffset < 0 {
		return Result{}, false
	}

	for _, m := range urlRegex.FindAllStringIndex(ll.text, -1) {
		start, end := m[0], m[1]
		if hoverOffset < start || hoverOffset >= end {
			continue
		}
		matchText := ll.text[start:end]
		sanitized, trimmed := sanitizeTrailingPunctuation(matchText)
		rng, ok := ll.rangeForByteSpan(start, end-trimmed)
		if !ok {
			return Result{}, false
		}
		return Result{Target: sanitized, IsURL: true, Range: rng}, true
	}
	return Result{}, false
}

// sanitizeTrailingPunctuation strips trailing `.,:;`, then trailing `(`,
// then a trailing `)` only when the match has more closing than opening
// parens, repeating until none of these apply.
func sanitizeTrailingPunctuation(s string) (string, int) {
	trimmed := 0
	for s != "" {
		last := s[len(s)-1]
		switch last {
		case '.', ',', ':', ';', '(':
			s = s[:len(s)-1]
			trimmed++
		case ')':
			opens := strings.Count(s, "(")
			closes := strings.Count(s, ")")
			if closes <= opens {
				return s, trimmed
			}
			s = s[:len(s)-1]
			trimmed++
		default:
			return s, trimmed
		}
	}
	return s, trimmed
}

// --- Step 3: user-configured path regexes ---

func resolvePathMatch(src LineSource, line, col int, pathRegexes []*regexp.Regexp, timeout time.Duration) (Result, bool) {
	text, byteStarts, positions, hoverOffset := flattenForPathSearch(src, line, col)
	if hoverOffset < 0 {
		return Result{}, false
	}
	wordStart, wordEnd := hoveredWordBounds(text, hoverOffset)

	deadline := time.Now().Add(timeout)
	for _, re := range pathRegexes {
		if time.Now().After(deadline) {
			log.Printf("hyperlink: path regex scan exceeded %s, aborting", timeout)
			return Result{}, false
		}

		if res, ok := tryPathRegex(re, text, byteStarts, positions, hoverOffset, 0, len(text)); ok {
			return res, true
		}
		if res, ok := tryPathRegex(re, text, byteStarts, positions, hoverOffset, wordStart, wordEnd); ok {
			return res, true
		}
	}
	return Result{}, false
}

// flattenForPathSearch is buildLogicalLine's path-matching sibling: it
// additionally collapses runs of blank cells to a single space, per
// spec.md §4.4 step 3.
func flattenForPathSearch(src LineSource, hoverLine, hoverCol int) (text string, byteStarts []int, positions []runePos, hoverOffset int) {
	ll := buildLogicalLine(src, hoverLine)

	var sb strings.Builder
	lastWasSpace := false
	for _, p := range ll.positions {
		cell, ok := src.Cell(p.line, p.col)
		if !ok {
			continue
		}
		if cell.Char == 0 || cell.Char == ' ' {
			if lastWasSpace {
				continue
			}
			byteStarts = append(byteStarts, sb.Len())
			positions = append(positions, p)
			sb.WriteByte(' ')
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		byteStarts = append(byteStarts, sb.Len())
		positions = append(positions, p)
		sb.WriteRune(cell.Char)
	}

	text = sb.String()
	hoverOffset = -1
	for i, p := range positions {
		if p.line == hoverLine && p.col == hoverCol {
			hoverOffset = byteStarts[i]
			break
		}
	}
	return text, byteStarts, positions, hoverOffset
}

func hoveredWordBounds(text string, offset int) (int, int) {
	isBoundary := func(b byte) bool { return b == ' ' }
	start, end := offset, offset
	for start > 0 && !isBoundary(text[start-1]) {
		start--
	}
	for end < len(text) && !isBoundary(text[end]) {
		end++
	}
	return start, end
}

func tryPathRegex(re *regexp.Regexp, text string, byteStarts []int, positions []runePos, hoverOffset, searchStart, searchEnd int) (Result, bool) {
	if searchStart < 0 || searchEnd > len(text) || searchStart >= searchEnd {
		return Result{}, false
	}
	slice := text[searchStart:searchEnd]
	loc := re.FindStringSubmatchIndex(slice)
	if loc == nil {
		return Result{}, false
	}
	matchStart, matchEnd := searchStart+loc[0], searchStart+loc[1]
	if hoverOffset < matchStart || hoverOffset >= matchEnd {
		return Result{}, false
	}

	path := re.ExpandString(nil, "$0", slice, loc)
	names := re.SubexpNames()
	lineCapture, colCapture := "", ""
	for i, name := range names {
		if i == 0 || 2*i+1 >= len(loc) || loc[2*i] < 0 {
			continue
		}
		val := slice[loc[2*i]:loc[2*i+1]]
		switch name {
		case "line":
			lineCapture = val
		case "column":
			colCapture = val
		}
	}

	target := string(path)
	if lineCapture != "" {
		target += ":" + lineCapture
		if colCapture != "" {
			target += ":" + colCapture
		}
	}

	rng, ok := rangeForSpan(byteStarts, positions, matchStart, matchEnd)
	if !ok {
		return Result{}, false
	}
	return Result{Target: target, IsURL: false, Range: rng}, true
}

func rangeForSpan(byteStarts []int, positions []runePos, start, end int) (Range, bool) {
	var first, last runePos
	found := false
	for i, off := range byteStarts {
		if off >= start && off < end {
			if !found {
				first = positions[i]
				found = true
			}
			last = positions[i]
		}
	}
	if !found {
		return Range{}, false
	}
	return Range{first.line, first.col, last.line, last.col}, true
}

// --- Step 4: file:// URL downgrade ---

func downgradeFileURL(res Result) Result {
	if !res.IsURL || !strings.HasPrefix(res.Target, "file://") {
		return res
	}
	u, err := url.Parse(res.Target)
	if err != nil {
		res.Target = strings.TrimPrefix(res.Target, "file://")
		res.IsURL = false
		return res
	}
	res.Target = u.Path
	res.IsURL = false
	return res
}
