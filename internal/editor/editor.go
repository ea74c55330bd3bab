// Package editor keeps the linear image history and the user-editable
// activity log in step. Every method runs on the caller's event loop; the
// Editor does no locking of its own.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"imgedit/internal/applog"
	"imgedit/internal/history"
	"imgedit/internal/imaging"
	"imgedit/internal/journal"
	"imgedit/internal/logtree"
)

// Imager is the imaging collaborator.
type Imager interface {
	Open(path string) (imaging.Snapshot, error)
	Encode(s imaging.Snapshot, path, format string) error
	Apply(s imaging.Snapshot, f imaging.Filter) (imaging.Snapshot, error)
	Adjust(s imaging.Snapshot, a imaging.Adjustment, value int) (imaging.Snapshot, error)
}

// Observer receives state changes for presentation.
type Observer interface {
	LogChanged(tree []logtree.NodeView)
	// HistoryChanged receives the current snapshot, or nil when no image is loaded.
	HistoryChanged(current *imaging.Snapshot)
}

type DeleteMode string

const (
	// DeletePositional removes the history entry whose index equals the
	// node's pre-order position in the log.
	DeletePositional DeleteMode = "positional"
	// DeleteLinked removes the history entry the node was logged against.
	DeleteLinked DeleteMode = "linked"
)

func ParseDeleteMode(s string) (DeleteMode, error) {
	switch DeleteMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePositional:
		return DeletePositional, nil
	case DeleteLinked:
		return DeleteLinked, nil
	}
	return "", &InvalidArgError{Arg: "delete mode", Value: s}
}

const (
	LabelOpen       = "Open Image"
	LabelSave       = "Save Image"
	LabelSaveAs     = "Save Image As"
	DefaultSavePath = "temp_image.png"
)

type Options struct {
	MaxLogRoots     int
	MaxHistory      int
	DeleteMode      DeleteMode
	DefaultSavePath string

	Logger   *slog.Logger
	Journal  *journal.Session
	Observer Observer
	Clock    func() time.Time
}

type Editor struct {
	img      Imager
	history  *history.Stack[imaging.Snapshot]
	log      *logtree.Tree
	selected *logtree.Node

	current    imaging.Snapshot
	hasCurrent bool
	path       string

	deleteMode DeleteMode
	savePath   string

	logger   *slog.Logger
	journal  *journal.Session
	observer Observer
}

func New(img Imager, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.DeleteMode == "" {
		opts.DeleteMode = DeletePositional
	}
	if strings.TrimSpace(opts.DefaultSavePath) == "" {
		opts.DefaultSavePath = DefaultSavePath
	}
	treeOpts := []logtree.Option{logtree.WithMaxRoots(opts.MaxLogRoots)}
	if opts.Clock != nil {
		treeOpts = append(treeOpts, logtree.WithClock(opts.Clock))
	}
	return &Editor{
		img:        img,
		history:    history.New[imaging.Snapshot](opts.MaxHistory),
		log:        logtree.New(treeOpts...),
		deleteMode: opts.DeleteMode,
		savePath:   opts.DefaultSavePath,
		logger:     opts.Logger,
		journal:    opts.Journal,
		observer:   opts.Observer,
	}
}

// SetObserver replaces the presentation observer.
func (e *Editor) SetObserver(o Observer) { e.observer = o }

func (e *Editor) DeleteMode() DeleteMode { return e.deleteMode }

// Current returns the image being edited.
func (e *Editor) Current() (imaging.Snapshot, bool) { return e.current, e.hasCurrent }

func (e *Editor) HasImage() bool { return e.hasCurrent }

// Path is the file the current session was last opened from.
func (e *Editor) Path() string { return e.path }

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

func (e *Editor) HistoryLen() int    { return e.history.Len() }
func (e *Editor) HistoryCursor() int { return e.history.Cursor() }

// HistoryIDs lists retained history entry ids, oldest first.
func (e *Editor) HistoryIDs() []string {
	entries := e.history.Entries()
	out := make([]string, 0, len(entries))
	for _, en := range entries {
		out = append(out, en.ID)
	}
	return out
}

func (e *Editor) Log() []logtree.NodeView { return e.log.Snapshot() }

// SelectedID is the node the next logged action will nest under, if any.
func (e *Editor) SelectedID() string {
	if e.selected == nil {
		return ""
	}
	return e.selected.ID
}

// State is a serializable summary for CLI output.
type State struct {
	Path          string             `json:"path,omitempty"`
	HistoryLength int                `json:"historyLength"`
	Cursor        int                `json:"cursor"`
	CanUndo       bool               `json:"canUndo"`
	CanRedo       bool               `json:"canRedo"`
	Selected      string             `json:"selected,omitempty"`
	DeleteMode    DeleteMode         `json:"deleteMode"`
	Log           []logtree.NodeView `json:"log"`
}

func (e *Editor) State() State {
	return State{
		Path:          e.path,
		HistoryLength: e.history.Len(),
		Cursor:        e.history.Cursor(),
		CanUndo:       e.history.CanUndo(),
		CanRedo:       e.history.CanRedo(),
		Selected:      e.SelectedID(),
		DeleteMode:    e.deleteMode,
		Log:           e.log.Snapshot(),
	}
}

func (e *Editor) record(typ, nodeID, label string, payload any) {
	if e.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.journal.Record(ctx, typ, nodeID, label, payload); err != nil {
		e.logger.Warn("journal write failed", "type", typ, "err", err)
	}
}

func (e *Editor) notifyLog() {
	if e.observer != nil {
		e.observer.LogChanged(e.log.Snapshot())
	}
}

func (e *Editor) notifyHistory() {
	if e.observer == nil {
		return
	}
	if !e.hasCurrent {
		e.observer.HistoryChanged(nil)
		return
	}
	cur := e.current
	e.observer.HistoryChanged(&cur)
}

// syncCurrent points the current image at the history cursor.
func (e *Editor) syncCurrent() {
	entry, ok := e.history.Current()
	if !ok {
		e.current = imaging.Snapshot{}
		e.hasCurrent = false
		return
	}
	e.current = entry.Snapshot
	e.hasCurrent = true
}

// logAction appends a log node for label, consuming the selected parent.
func (e *Editor) logAction(label, historyRef string) *logtree.Node {
	parent := e.selected
	e.selected = nil
	n, evicted := e.log.Log(label, historyRef, parent)

	payload := map[string]any{}
	if historyRef != "" {
		payload["historyRef"] = historyRef
	}
	if p := n.Parent(); p != nil {
		payload["parentId"] = p.ID
	}
	e.record(journal.TypeLogAdded, n.ID, label, payload)
	for _, ev := range evicted {
		e.logger.Debug("log root evicted", "node", ev.ID, "label", ev.Label)
		e.record(journal.TypeLogEvicted, ev.ID, ev.Label, nil)
	}
	return n
}

// commit appends snap to the history and logs label against it, in that order.
func (e *Editor) commit(label string, snap imaging.Snapshot) *logtree.Node {
	entry := e.history.Append(snap)
	n := e.logAction(label, entry.ID)
	e.current = snap
	e.hasCurrent = true
	e.notifyHistory()
	e.notifyLog()
	return n
}
