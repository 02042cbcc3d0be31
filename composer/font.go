package composer

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// systemFontDirs are the common installation paths searched for a font file
// matching a configured family name. The teacher embeds its fonts directly
// via go:embed (src/assets/fonts); this workspace's copy carries that
// package's loader but not the .ttf files it embeds, since the retrieval
// pack captured source and build files only, not binary assets. Resolving
// an installed system font by name is the closest equivalent with no
// embedded bytes to fabricate.
var systemFontDirs = []string{
	"/usr/share/fonts",
	"/usr/local/share/fonts",
	"/Library/Fonts",
	"/System/Library/Fonts",
}

// ResolveFontFile searches systemFontDirs (plus the user's own font
// directories) for a .ttf/.otf file whose name loosely matches family,
// ignoring case, spaces, and hyphens.
func ResolveFontFile(family string) (string, bool) {
	needle := normalizeFontName(family)
	if needle == "" {
		return "", false
	}

	dirs := systemFontDirs
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
	}

	var found string
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || found != "" || d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf":
			default:
				return nil
			}
			if strings.Contains(normalizeFontName(filepath.Base(path)), needle) {
				found = path
			}
			return nil
		})
		if found != "" {
			break
		}
	}
	return found, found != ""
}

func normalizeFontName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// LoadFace resolves fontFamily, then each of fontFallback in turn, to an
// installed font file and opens it at size points, DPI 96, mirroring the
// teacher's loadFontData (render.go). A family that resolves to no system
// file, or whose file fails to parse, falls through to the next fallback;
// if none work out, LoadFace returns basicfont.Face7x13, a fixed bitmap
// face carried by golang.org/x/image itself, so composer always has
// something to build a glyph atlas from.
func LoadFace(fontFamily string, fontFallback []string, size float64) font.Face {
	candidates := append([]string{fontFamily}, fontFallback...)
	for _, name := range candidates {
		path, ok := ResolveFontFile(name)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     96,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}

// CellMetrics derives the fixed cell width/height a monospace grid should
// use from face, the same Ascent+Descent / 'M'-advance measurement the
// teacher's loadFontData performs.
func CellMetrics(face font.Face) (width, height float32) {
	metrics := face.Metrics()
	height = float32((metrics.Ascent + metrics.Descent).Ceil())
	advance, _ := face.GlyphAdvance('M')
	width = float32(advance.Ceil())
	if width <= 0 {
		width = 8
	}
	if height <= 0 {
		height = 13
	}
	return width, height
}
