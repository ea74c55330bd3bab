package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The palette must stay readable on light and dark backgrounds, so colors are
// adaptive and faint styling is only used on dark terminals.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted        lipgloss.TerminalColor = ac("240", "243")
	colorChromeFg     lipgloss.TerminalColor = ac("240", "245")
	colorSelectedBg   lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg   lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceBg    lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg    lipgloss.TerminalColor = ac("235", "252")
	colorControlBg    lipgloss.TerminalColor = ac("252", "235")
	colorInputBg      lipgloss.TerminalColor = ac("254", "234")
	colorAccent       lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg     lipgloss.TerminalColor = ac("255", "235")
	colorBorder       lipgloss.TerminalColor = ac("250", "243")
	colorErrorFg      lipgloss.TerminalColor = ac("160", "203")
	colorParentMarker lipgloss.TerminalColor = ac("130", "214")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM and
// COLORTERM when they claim more than the detector found.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference picks the light or dark palette.
//
// Priority:
// 1) IMGEDIT_TUI_THEME=light|dark|auto
// 2) the configured theme
// 3) COLORFGBG ("fg;bg"), then lipgloss's own detection
func applyThemePreference(configured string) {
	for _, v := range []string{os.Getenv("IMGEDIT_TUI_THEME"), configured} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			lipgloss.SetHasDarkBackground(false)
			return
		case "dark":
			lipgloss.SetHasDarkBackground(true)
			return
		}
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

func toggleTheme() bool {
	dark := !lipgloss.HasDarkBackground()
	lipgloss.SetHasDarkBackground(dark)
	return dark
}

func themeName() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
