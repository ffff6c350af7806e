package ui

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ThemeMode represents the CLI color scheme mode.
type ThemeMode string

const (
	// ThemeModeAuto lets the terminal background guide color selection.
	ThemeModeAuto ThemeMode = "auto"
	// ThemeModeDark forces dark mode colors.
	ThemeModeDark ThemeMode = "dark"
	// ThemeModeLight forces light mode colors.
	ThemeModeLight ThemeMode = "light"
)

var (
	themeMode         ThemeMode
	hasDarkBackground bool
)

// InitTheme initializes the theme mode. Call this early in main.
// configTheme is the value from the config file (may be empty).
func InitTheme(configTheme string) {
	themeMode = resolveThemeMode(configTheme)
	hasDarkBackground = detectDarkBackground(themeMode)
}

// HasDarkBackground returns true if we're displaying on a dark background.
func HasDarkBackground() bool {
	return hasDarkBackground
}

// resolveThemeMode determines the theme mode from env and config.
// Priority: STOICH_THEME environment variable, then the config value,
// then auto.
func resolveThemeMode(configTheme string) ThemeMode {
	for _, candidate := range []string{os.Getenv("STOICH_THEME"), configTheme} {
		switch strings.ToLower(candidate) {
		case "dark":
			return ThemeModeDark
		case "light":
			return ThemeModeLight
		case "auto":
			return ThemeModeAuto
		}
	}
	return ThemeModeAuto
}

func detectDarkBackground(mode ThemeMode) bool {
	switch mode {
	case ThemeModeDark:
		return true
	case ThemeModeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects NO_COLOR (https://no-color.org/), CLICOLOR, and CLICOLOR_FORCE conventions.
func ShouldUseColor() bool {
	// NO_COLOR takes precedence - any value disables color
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	// CLICOLOR_FORCE enables color even in non-TTY
	if _, exists := os.LookupEnv("CLICOLOR_FORCE"); exists {
		return true
	}

	return IsTerminal()
}

// IsPlainMode returns true when output should be undecorated text for
// machine consumption. Triggered by STOICH_PLAIN=1 or a non-TTY stdout.
func IsPlainMode() bool {
	if os.Getenv("STOICH_PLAIN") == "1" {
		return true
	}
	return !IsTerminal()
}

// TerminalWidth returns the terminal width for wrapping, capped at 100
// for readability. Falls back to 80 when detection fails.
func TerminalWidth() int {
	const (
		defaultWidth = 80
		maxWidth     = 100
	)

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}
