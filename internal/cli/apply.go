package cli

import (
	"imgedit/internal/editor"
	"imgedit/internal/imaging"

	"github.com/spf13/cobra"
)

func newApplyCmd(app *App) *cobra.Command {
	var (
		steps []string
		out   string
		fmtIn string
	)

	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Open an image, run edit steps without the TUI, and print the resulting log",
		Long: `Steps run in order, exactly as the interactive editor would run them:

  grayscale | blur | sharpen | negative
  brightness=N | contrast=N | saturation=N   (0..200, 100 = unchanged)
  undo | redo | save | save=PATH | open=PATH`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parse every step first so a typo fails before anything is written.
			actions := make([]editor.Action, 0, len(steps)+1)
			for _, s := range steps {
				a, err := editor.ParseAction(s)
				if err != nil {
					return writeErr(cmd, err)
				}
				actions = append(actions, a)
			}
			if out != "" {
				actions = append(actions, editor.Action{Kind: editor.ActionSaveAs, Path: out, Format: fmtIn})
			}

			rt, err := openRuntime(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			ed, err := rt.newEditor(imaging.NewProcessor())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ed.Open(args[0]); err != nil {
				return writeErr(cmd, err)
			}
			for _, a := range actions {
				if err := ed.Do(a); err != nil {
					return writeErr(cmd, err)
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": ed.State(),
				"meta": map[string]any{
					"session": rt.session.ID,
					"steps":   len(actions),
				},
				"_hints": []string{"imgedit journal list --session " + rt.session.ID},
			})
		},
	}

	cmd.Flags().StringArrayVar(&steps, "do", nil, "Edit step (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "Save the result here after the steps")
	cmd.Flags().StringVar(&fmtIn, "out-format", "", "Output image format (default: from --out extension)")
	return cmd
}
