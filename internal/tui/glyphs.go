package tui

import (
	"os"
	"strings"
	"sync"
)

// Some fonts render box and arrow glyphs poorly, so every affordance has an
// ASCII fallback.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads IMGEDIT_TUI_GLYPHS, falling back to configured.
// Unknown values leave the current set alone.
func applyGlyphPreference(configured string) {
	v := strings.TrimSpace(os.Getenv("IMGEDIT_TUI_GLYPHS"))
	if v == "" {
		v = configured
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphTwistyCollapsed() string { return pick("▸", ">") }
func glyphTwistyExpanded() string  { return pick("▾", "v") }
func glyphParentMarker() string    { return pick("◆", "*") }
func glyphHRule() string           { return pick("─", "-") }
func glyphSliderFill() string      { return pick("█", "#") }
func glyphSliderEmpty() string     { return pick("░", ".") }
func glyphSliderKnob() string      { return pick("┃", "|") }
