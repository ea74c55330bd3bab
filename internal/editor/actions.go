package editor

import (
	"strings"

	"imgedit/internal/imaging"
	"imgedit/internal/journal"
)

// Open decodes path and makes it the current image. On failure neither the
// history nor the log is touched.
func (e *Editor) Open(path string) error {
	e.logger.Info("opening image", "path", path)
	snap, err := e.img.Open(path)
	if err != nil {
		e.logger.Error("error opening image", "path", path, "err", err)
		return err
	}
	e.Load(path, snap)
	return nil
}

// Load commits an image that was decoded elsewhere, as Open does after a
// successful decode.
func (e *Editor) Load(path string, snap imaging.Snapshot) {
	e.path = path
	n := e.commit(LabelOpen, snap)
	w, h := snap.Size()
	e.record(journal.TypeImageOpened, n.ID, path, map[string]any{"width": w, "height": h, "format": snap.Format})
}

// ApplyFilter is a silent no-op when no image is loaded.
func (e *Editor) ApplyFilter(f imaging.Filter) error {
	if !e.hasCurrent {
		e.logger.Debug("filter ignored: no image", "filter", f)
		return nil
	}
	snap, err := e.img.Apply(e.current, f)
	if err != nil {
		e.logger.Error("error applying filter", "filter", f, "err", err)
		return err
	}
	e.commit(f.Label(), snap)
	return nil
}

// Adjust applies an enhancement with factor value/100. A silent no-op when
// no image is loaded.
func (e *Editor) Adjust(a imaging.Adjustment, value int) error {
	if !e.hasCurrent {
		e.logger.Debug("adjustment ignored: no image", "adjustment", a)
		return nil
	}
	snap, err := e.img.Adjust(e.current, a, value)
	if err != nil {
		e.logger.Error("error adjusting image", "adjustment", a, "value", value, "err", err)
		return err
	}
	e.commit(a.Label(), snap)
	return nil
}

// Undo moves the history cursor back. The log is not modified.
func (e *Editor) Undo() bool {
	entry, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.current = entry.Snapshot
	e.hasCurrent = true
	e.record(journal.TypeHistoryUndo, "", "", map[string]any{"cursor": e.history.Cursor(), "entry": entry.ID})
	e.notifyHistory()
	return true
}

// Redo moves the history cursor forward. The log is not modified.
func (e *Editor) Redo() bool {
	entry, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.current = entry.Snapshot
	e.hasCurrent = true
	e.record(journal.TypeHistoryRedo, "", "", map[string]any{"cursor": e.history.Cursor(), "entry": entry.ID})
	e.notifyHistory()
	return true
}

// Save writes the current image to the default save path and returns it.
func (e *Editor) Save() (string, error) {
	if !e.hasCurrent {
		return "", nil
	}
	if err := e.save(e.savePath, "", LabelSave); err != nil {
		return "", err
	}
	return e.savePath, nil
}

// SaveAs writes the current image to path. An empty format is derived from
// the file extension.
func (e *Editor) SaveAs(path, format string) error {
	if !e.hasCurrent {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return &InvalidArgError{Arg: "path", Value: path}
	}
	return e.save(path, format, LabelSaveAs)
}

// save logs the action without a history reference; nothing is appended to
// the history.
func (e *Editor) save(path, format, label string) error {
	if err := e.img.Encode(e.current, path, format); err != nil {
		e.logger.Error("error saving image", "path", path, "err", err)
		return err
	}
	e.logger.Info("image saved", "path", path)
	n := e.logAction(label, "")
	e.record(journal.TypeImageSaved, n.ID, path, map[string]any{"format": format})
	e.notifyLog()
	return nil
}
