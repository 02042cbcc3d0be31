package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ThemeOption describes an available UI theme.
type ThemeOption struct {
	Name  string
	Label string
}

// builtinThemes lists the theme names shipped with the application. Each
// theme's palette is loaded from "<Name>.toml" under the settings
// directory's "themes" subdir (main.go's loadPalette).
var builtinThemes = []ThemeOption{
	{Name: "raven-blue", Label: "Slate Blue"},
	{Name: "crow-black", Label: "Carbon Black"},
	{Name: "magpie-black-white-grey", Label: "Magpie Mono"},
	{Name: "catppuccin-mocha", Label: "Catppuccin Mocha"},
}

// ThemeOptions lists the themes available for selection.
func ThemeOptions() []ThemeOption {
	return builtinThemes
}

// ThemeLabel returns the display label for a theme name, falling back to
// the name itself (or the default theme's label when name is empty).
func ThemeLabel(name string) string {
	for _, opt := range builtinThemes {
		if opt.Name == name {
			return opt.Label
		}
	}
	if name == "" {
		return builtinThemes[0].Label
	}
	return name
}

// ThemeColors is the palette a theme TOML file provides, in "#rrggbb"
// hex-string form as written on disk.
type ThemeColors struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Cursor     string `toml:"cursor"`
	Selection  string `toml:"selection"`
	TabBar     string `toml:"tab_bar"`
	Ansi       [16]string `toml:"ansi"`
}

// LoadThemeFile parses a theme TOML file from disk.
func LoadThemeFile(path string) (*ThemeColors, error) {
	var tc ThemeColors
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("config: decode theme %s: %w", path, err)
	}
	return &tc, nil
}
