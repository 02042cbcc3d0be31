// Package config defines the terminal's typed settings record, its JSON
// load/save, and the sanitization rules applied to values read from disk.
package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
)

// ShellKind selects how the child shell is invoked.
type ShellKind string

const (
	ShellSystem       ShellKind = "system"
	ShellProgram      ShellKind = "program"
	ShellWithArguments ShellKind = "with_arguments"
)

// CursorShape selects the cursor's paint style (composer's C10 variants).
type CursorShape string

const (
	CursorBlock     CursorShape = "block"
	CursorUnderline CursorShape = "underline"
	CursorBar       CursorShape = "bar"
	CursorHollow    CursorShape = "hollow"
)

// CursorBlinking selects when the cursor blinks.
type CursorBlinking string

const (
	BlinkOff               CursorBlinking = "off"
	BlinkTerminalControlled CursorBlinking = "terminal_controlled"
	BlinkOn                CursorBlinking = "on"
)

// LineHeightKind selects a preset or custom line-height multiplier.
type LineHeightKind string

const (
	LineHeightComfortable LineHeightKind = "comfortable"
	LineHeightStandard    LineHeightKind = "standard"
	LineHeightCustom      LineHeightKind = "custom"
)

const (
	lineHeightComfortableValue = 1.618
	lineHeightStandardValue    = 1.3
)

// LineHeight is the resolved line-height setting.
type LineHeight struct {
	Kind  LineHeightKind `json:"kind"`
	Value float64        `json:"value,omitempty"` // only meaningful when Kind == Custom
}

// Resolve returns the effective multiplier for this setting.
func (lh LineHeight) Resolve() float64 {
	switch lh.Kind {
	case LineHeightComfortable:
		return lineHeightComfortableValue
	case LineHeightStandard:
		return lineHeightStandardValue
	case LineHeightCustom:
		return lh.Value
	default:
		return lineHeightStandardValue
	}
}

// Shell describes how to start the child process.
type Shell struct {
	Kind    ShellKind `json:"kind"`
	Program string    `json:"program,omitempty"`
	Args    []string  `json:"args,omitempty"`
}

// WindowPlacement records a per-monitor saved window geometry.
type WindowPlacement struct {
	Monitor string   `json:"monitor"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
}

// Settings is the full typed configuration record (spec.md §4.1).
type Settings struct {
	Shell Shell `json:"shell"`
	// WorkingDirectoryPolicy selects how the initial cwd is chosen:
	// "home", "last_session", or an explicit path.
	WorkingDirectoryPolicy string `json:"working_directory_policy"`

	FontFamily   string   `json:"font_family"`
	FontFallback []string `json:"font_fallback"`
	FontSize     float64  `json:"font_size"`
	LineHeight   LineHeight `json:"line_height"`

	Env map[string]string `json:"env"`

	CursorShape    CursorShape    `json:"cursor_shape"`
	CursorBlinking CursorBlinking `json:"cursor_blinking"`

	AlternateScroll    bool `json:"alternate_scroll"`
	OptionAsMeta       bool `json:"option_as_meta"`
	CopyOnSelect       bool `json:"copy_on_select"`
	KeepSelectionOnCopy bool `json:"keep_selection_on_copy"`

	Theme string `json:"theme"`

	GlobalHotkey string `json:"global_hotkey"`
	PinHotkey    string `json:"pin_hotkey"`

	AutoHideOnOutsideClick bool `json:"auto_hide_on_outside_click"`

	DefaultWidth  float64 `json:"default_width"`
	DefaultHeight float64 `json:"default_height"`

	ScrollbackCap    int     `json:"scrollback_cap"`
	ScrollMultiplier float64 `json:"scroll_multiplier"`
	MinimumContrast  float64 `json:"minimum_contrast"`

	PathRegexes       []string `json:"path_regexes"`
	PathRegexTimeoutMs int     `json:"path_regex_timeout_ms"`

	PanelInset float64 `json:"panel_inset"`

	WindowPlacements []WindowPlacement `json:"window_placements"`
}

const (
	minFontSize = 6.0
	maxFontSize = 72.0
	defaultFontSize = 13.0

	minLineHeightValue = 0.5
	maxLineHeightValue = 3.0

	maxDefaultWidth  = 8192.0
	maxDefaultHeight = 4320.0
	defaultWidth     = 900.0
	defaultHeight    = 600.0

	maxPanelInset = 64.0

	defaultGlobalHotkey = "command+Backquote"
	defaultPinHotkey    = "command+F4"

	maxScrollbackHardCap = 100000
	defaultScrollbackCap = 10000
)

// Default returns the default settings record.
func Default() *Settings {
	return &Settings{
		Shell:                  Shell{Kind: ShellSystem},
		WorkingDirectoryPolicy: "home",
		FontFamily:             "monospace",
		FontFallback:           []string{"DejaVu Sans Mono", "Menlo", "Consolas"},
		FontSize:               defaultFontSize,
		LineHeight:             LineHeight{Kind: LineHeightStandard},
		Env:                    map[string]string{},
		CursorShape:            CursorBlock,
		CursorBlinking:         BlinkTerminalControlled,
		AlternateScroll:        true,
		OptionAsMeta:           false,
		CopyOnSelect:           false,
		KeepSelectionOnCopy:    true,
		Theme:                  "raven-blue",
		GlobalHotkey:           defaultGlobalHotkey,
		PinHotkey:              defaultPinHotkey,
		DefaultWidth:           defaultWidth,
		DefaultHeight:          defaultHeight,
		ScrollbackCap:          defaultScrollbackCap,
		ScrollMultiplier:       1.0,
		MinimumContrast:        1.0,
		PathRegexTimeoutMs:     500,
	}
}

// ConfigPath returns the settings file path, $HOME/.simple-term/settings.json.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".simple-term/settings.json"
	}
	return filepath.Join(home, ".simple-term", "settings.json")
}

// ReadError wraps a failure to read or parse the settings file. Per
// spec.md §7, this is logged as a warning and defaults are used; it is
// never fatal.
type ReadError struct{ Err error }

func (e *ReadError) Error() string { return "config: read settings: " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

// SerializationError wraps a failure to write the settings file.
type SerializationError struct{ Err error }

func (e *SerializationError) Error() string { return "config: write settings: " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

// Load reads settings.json, filling missing fields with defaults and
// sanitizing whatever values are present. A missing file is not an error:
// it returns the defaults and nil. Any other read failure, or a parse
// failure, returns the defaults alongside a *ReadError for the caller to log.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Default(), &ReadError{Err: err}
	}

	if err := json.Unmarshal(data, s); err != nil {
		return Default(), &ReadError{Err: err}
	}

	sanitize(s)
	return s, nil
}

// Save creates the parent directory if needed and writes pretty JSON.
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &SerializationError{Err: err}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &SerializationError{Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &SerializationError{Err: err}
	}
	return nil
}

// sanitize clamps and repairs fields that may hold invalid values after
// JSON decode (Load decodes over Default(), so missing fields keep their
// defaults; explicit zero values in the file are treated as "unset" where
// that matters).
func sanitize(s *Settings) {
	if math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) || s.FontSize == 0 {
		s.FontSize = defaultFontSize
	}
	s.FontSize = clamp(s.FontSize, minFontSize, maxFontSize)

	if s.LineHeight.Kind == LineHeightCustom {
		if math.IsNaN(s.LineHeight.Value) || math.IsInf(s.LineHeight.Value, 0) {
			s.LineHeight.Value = lineHeightStandardValue
		}
		s.LineHeight.Value = clamp(s.LineHeight.Value, minLineHeightValue, maxLineHeightValue)
	}

	if s.DefaultWidth <= 0 || math.IsNaN(s.DefaultWidth) {
		s.DefaultWidth = defaultWidth
	}
	s.DefaultWidth = clamp(s.DefaultWidth, 1, maxDefaultWidth)

	if s.DefaultHeight <= 0 || math.IsNaN(s.DefaultHeight) {
		s.DefaultHeight = defaultHeight
	}
	s.DefaultHeight = clamp(s.DefaultHeight, 1, maxDefaultHeight)

	if s.GlobalHotkey == "" {
		s.GlobalHotkey = defaultGlobalHotkey
	}
	if s.PinHotkey == "" {
		s.PinHotkey = defaultPinHotkey
	}

	if s.PanelInset < 0 {
		s.PanelInset = 0
	}
	if s.PanelInset > maxPanelInset {
		s.PanelInset = maxPanelInset
	}

	if s.ScrollbackCap <= 0 {
		s.ScrollbackCap = defaultScrollbackCap
	}
	if s.ScrollbackCap > maxScrollbackHardCap {
		s.ScrollbackCap = maxScrollbackHardCap
	}

	if math.IsNaN(s.ScrollMultiplier) || math.IsInf(s.ScrollMultiplier, 0) {
		s.ScrollMultiplier = 1.0
	}

	sanitizedPlacements := make([]WindowPlacement, 0, len(s.WindowPlacements))
	for _, wp := range s.WindowPlacements {
		if wp.X != nil && (math.IsNaN(*wp.X) || math.IsInf(*wp.X, 0)) {
			wp.X = nil
		}
		if wp.Y != nil && (math.IsNaN(*wp.Y) || math.IsInf(*wp.Y, 0)) {
			wp.Y = nil
		}
		if wp.Width != nil && (*wp.Width <= 0 || math.IsNaN(*wp.Width)) {
			wp.Width = nil
		}
		if wp.Height != nil && (*wp.Height <= 0 || math.IsNaN(*wp.Height)) {
			wp.Height = nil
		}
		sanitizedPlacements = append(sanitizedPlacements, wp)
	}
	s.WindowPlacements = sanitizedPlacements

	cleanEnv := make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		if k == "" {
			continue
		}
		cleanEnv[k] = v
	}
	s.Env = cleanEnv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
