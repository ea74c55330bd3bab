// Package tui is the interactive front end: an activity log pane, an image
// preview and the adjustment sliders, all driven through the editor.
package tui

import (
	"log/slog"

	"imgedit/internal/editor"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Theme  string
	Glyphs string
	// InitialPath is opened as soon as the program starts.
	InitialPath string
	Logger      *slog.Logger
}

// Run blocks until the user quits.
func Run(ed *editor.Editor, dec Decoder, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)

	m := newAppModel(ed, dec, opts.Logger)
	if opts.InitialPath != "" {
		m.loading = opts.InitialPath
		m.initCmd = m.decodeCmd(opts.InitialPath)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
