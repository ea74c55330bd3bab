package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"imgedit/internal/applog"
	"imgedit/internal/config"
	"imgedit/internal/editor"
	"imgedit/internal/journal"
)

// runtime is everything an editing command needs: config, logger and an
// open journal session.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   journal.Store
	session *journal.Session
	closers []io.Closer
}

// loadConfig reads config.yaml and layers the command-line overrides on top.
func loadConfig(app *App) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if app.MaxHistory != "" {
		n, err := parseNonNegative("max-history", app.MaxHistory)
		if err != nil {
			return nil, err
		}
		app.MaxHistory = strconv.Itoa(n)
	}
	overrides := []struct{ key, value string }{
		{"delete_mode", app.DeleteMode},
		{"max_history", app.MaxHistory},
		{"journal", app.Journal},
		{"log_level", app.LogLevel},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := cfg.Set(o.key, o.value); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func openRuntime(ctx context.Context, app *App) (*runtime, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	logPath, err := config.ResolvePath(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logger, closer, err := applog.OpenFile(logPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	rt.logger = logger
	rt.closers = append(rt.closers, closer)

	dir, err := config.Dir()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	backend := journal.ResolveBackend(cfg.Journal, dir)
	st, err := journal.Open(ctx, backend, dir)
	if err != nil {
		// A broken journal must not stop editing.
		logger.Warn("journal unavailable", "backend", backend, "err", err)
		st = journal.Nop{}
	}
	rt.store = st
	rt.closers = append(rt.closers, st)
	rt.session = journal.NewSession(st)
	logger.Info("session started", "session", rt.session.ID, "journal", backend)
	return rt, nil
}

func (rt *runtime) newEditor(img editor.Imager) (*editor.Editor, error) {
	mode, err := editor.ParseDeleteMode(rt.cfg.DeleteMode)
	if err != nil {
		return nil, err
	}
	return editor.New(img, editor.Options{
		MaxLogRoots:     rt.cfg.MaxLogRoots,
		MaxHistory:      rt.cfg.MaxHistory,
		DeleteMode:      mode,
		DefaultSavePath: rt.cfg.DefaultSavePath,
		Logger:          rt.logger,
		Journal:         rt.session,
	}), nil
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
