package cli

import (
	"context"

	"imgedit/internal/config"
	"imgedit/internal/journal"

	"github.com/spf13/cobra"
)

func openJournal(ctx context.Context, app *App) (journal.Store, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, err
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return journal.Open(ctx, journal.ResolveBackend(cfg.Journal, dir), dir)
}

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded editing sessions",
	}

	var (
		session string
		typ     string
		limit   int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journal events (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openJournal(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			evs, err := st.List(cmd.Context(), journal.Filter{SessionID: session, Type: typ, Limit: limit})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": evs,
				"meta": map[string]any{"count": len(evs)},
			})
		},
	}
	listCmd.Flags().StringVar(&session, "session", "", "Only events from this session")
	listCmd.Flags().StringVar(&typ, "type", "", "Only events of this type (e.g. log.deleted)")
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return, newest kept (0 = all)")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openJournal(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			infos, err := st.Sessions(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": infos})
		},
	}

	cmd.AddCommand(listCmd, sessionsCmd)
	return cmd
}
