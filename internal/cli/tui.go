package cli

import (
	"imgedit/internal/imaging"
	"imgedit/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App, path string) error {
	rt, err := openRuntime(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer rt.Close()

	proc := imaging.NewProcessor()
	ed, err := rt.newEditor(proc)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(ed, proc, tui.Options{
		Theme:       rt.cfg.Theme,
		Glyphs:      rt.cfg.Glyphs,
		InitialPath: path,
		Logger:      rt.logger,
	})
}
