package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"imgedit/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	PrettyJSON bool
	Format     string

	// Overrides for config.yaml; empty means "use the file".
	DeleteMode string
	MaxHistory string
	Journal    string
	LogLevel   string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "imgedit [image]",
		Short:        "Terminal image editor with an editable activity log",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Start the interactive editor
  imgedit

  # Open an image straight away
  imgedit photo.png

  # Headless: apply steps and save
  imgedit apply photo.png --do grayscale --do contrast=140 --out out.png

  # Review what earlier sessions did
  imgedit journal sessions
  imgedit journal list --session <id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runTUI(cmd, app, path)
		},
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("IMGEDIT_FORMAT", format.JSON), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.DeleteMode, "delete-mode", envOr("IMGEDIT_DELETE_MODE", ""), "How deleting a log entry picks the history entry to drop (positional|linked)")
	cmd.PersistentFlags().StringVar(&app.MaxHistory, "max-history", envOr("IMGEDIT_MAX_HISTORY", ""), "Max retained snapshots (0 = unbounded)")
	cmd.PersistentFlags().StringVar(&app.Journal, "journal", "", "Journal backend (sqlite|jsonl|off); IMGEDIT_JOURNAL also works")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("IMGEDIT_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newApplyCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func parseNonNegative(flag, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("--%s: expected a non-negative integer, got %q", flag, v)
	}
	return n, nil
}
