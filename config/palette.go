package config

import (
	"fmt"
	"image/color"
)

// Palette is the resolved 256-entry color table plus the named colors a
// theme supplies (spec.md §3's "Color snapshot"): entries 0-15 come from
// the theme's ANSI table, 16-231 are the standard 6x6x6 color cube, and
// 232-255 are a 24-step grayscale ramp, generated the same way
// go-headless-term's DefaultPalette is, so indexed colors render
// identically regardless of which table resolves them.
type Palette struct {
	Entries    [256]color.RGBA
	Foreground color.RGBA
	Background color.RGBA
	Cursor     color.RGBA
	Selection  color.RGBA
}

var fallbackPalette = BuildPalette(nil)

// BuildPalette resolves a theme's hex strings into a Palette. A nil or
// partially-populated tc falls back to go-headless-term's stock ANSI
// colors for any entry that fails to parse.
func BuildPalette(tc *ThemeColors) Palette {
	var p Palette

	for i := 0; i < 16; i++ {
		hex := ""
		if tc != nil {
			hex = tc.Ansi[i]
		}
		p.Entries[i] = parseHexColorOr(hex, stockANSI[i])
	}

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.Entries[i] = color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255}
				i++
			}
		}
	}

	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		p.Entries[232+j] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}

	fg, bg, cursor, selection := "", "", "", ""
	if tc != nil {
		fg, bg, cursor, selection = tc.Foreground, tc.Background, tc.Cursor, tc.Selection
	}
	p.Foreground = parseHexColorOr(fg, color.RGBA{229, 229, 229, 255})
	p.Background = parseHexColorOr(bg, color.RGBA{0, 0, 0, 255})
	p.Cursor = parseHexColorOr(cursor, p.Foreground)
	p.Selection = parseHexColorOr(selection, color.RGBA{82, 82, 138, 255})

	return p
}

// stockANSI mirrors go-headless-term's DefaultPalette entries 0-15, used
// whenever a theme omits (or mis-sizes) its ansi table.
var stockANSI = [16]color.RGBA{
	{0, 0, 0, 255}, {205, 49, 49, 255}, {13, 188, 121, 255}, {229, 229, 16, 255},
	{36, 114, 200, 255}, {188, 63, 188, 255}, {17, 168, 205, 255}, {229, 229, 229, 255},
	{102, 102, 102, 255}, {241, 76, 76, 255}, {35, 209, 139, 255}, {245, 245, 67, 255},
	{59, 142, 234, 255}, {214, 112, 214, 255}, {41, 184, 219, 255}, {255, 255, 255, 255},
}

// parseHexColorOr parses "#rrggbb" (the "#" is optional); any malformed or
// empty input falls back to def.
func parseHexColorOr(s string, def color.RGBA) color.RGBA {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return def
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s[0:2], "%02x", &r); err != nil {
		return def
	}
	if _, err := fmt.Sscanf(s[2:4], "%02x", &g); err != nil {
		return def
	}
	if _, err := fmt.Sscanf(s[4:6], "%02x", &b); err != nil {
		return def
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// FallbackPalette is the palette used when no theme has loaded yet.
func FallbackPalette() Palette {
	return fallbackPalette
}
