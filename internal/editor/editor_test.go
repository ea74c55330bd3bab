package editor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"imgedit/internal/imaging"
	"imgedit/internal/journal"
	"imgedit/internal/logtree"

	"github.com/stretchr/testify/require"
)

// fakeImager names every produced snapshot after the operation chain so
// tests can tell snapshots apart without pixels.
type fakeImager struct {
	failOpen   map[string]bool
	failEncode bool
	encoded    []string
}

func (f *fakeImager) Open(path string) (imaging.Snapshot, error) {
	if f.failOpen[path] {
		return imaging.Snapshot{}, &imaging.DecodeError{Path: path, Err: errors.New("corrupt")}
	}
	return imaging.Snapshot{ID: path, Path: path}, nil
}

func (f *fakeImager) Encode(s imaging.Snapshot, path, format string) error {
	if f.failEncode {
		return &imaging.IOError{Path: path, Err: errors.New("disk full")}
	}
	f.encoded = append(f.encoded, path)
	return nil
}

func (f *fakeImager) Apply(s imaging.Snapshot, flt imaging.Filter) (imaging.Snapshot, error) {
	return imaging.Snapshot{ID: s.ID + "+" + string(flt), Path: s.Path}, nil
}

func (f *fakeImager) Adjust(s imaging.Snapshot, a imaging.Adjustment, v int) (imaging.Snapshot, error) {
	return imaging.Snapshot{ID: s.ID + "+" + string(a), Path: s.Path}, nil
}

type recordingObserver struct {
	logs    int
	history []*imaging.Snapshot
	last    []logtree.NodeView
}

func (o *recordingObserver) LogChanged(tree []logtree.NodeView) {
	o.logs++
	o.last = tree
}

func (o *recordingObserver) HistoryChanged(cur *imaging.Snapshot) {
	o.history = append(o.history, cur)
}

func newTestEditor(t *testing.T, opts Options) (*Editor, *fakeImager) {
	t.Helper()
	img := &fakeImager{failOpen: map[string]bool{"broken.png": true}}
	return New(img, opts), img
}

func currentID(t *testing.T, e *Editor) string {
	t.Helper()
	cur, ok := e.Current()
	if !ok {
		return ""
	}
	return cur.ID
}

func rootLabels(e *Editor) []string {
	var out []string
	for _, v := range e.Log() {
		out = append(out, v.Label)
	}
	return out
}

func TestEditor_OpenAppendsHistoryThenLog(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))

	require.Equal(t, 1, e.HistoryLen())
	require.Equal(t, 0, e.HistoryCursor())
	require.Equal(t, "cat.png", currentID(t, e))
	require.Equal(t, []string{LabelOpen}, rootLabels(e))
	require.Equal(t, e.HistoryIDs()[0], e.Log()[0].HistoryRef)
	require.Equal(t, "cat.png", e.Path())
}

func TestEditor_FailedOpenLeavesStateUntouched(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	before := e.State()

	err := e.Open("broken.png")
	var de *imaging.DecodeError
	require.ErrorAs(t, err, &de)

	require.Equal(t, before, e.State())
	require.Equal(t, "cat.png+blur", currentID(t, e))
}

func TestEditor_NoImageActionsAreSilentNoops(t *testing.T) {
	e, img := newTestEditor(t, Options{})
	require.NoError(t, e.ApplyFilter(imaging.FilterGrayscale))
	require.NoError(t, e.Adjust(imaging.AdjustContrast, 150))
	require.False(t, e.Undo())
	require.False(t, e.Redo())
	p, err := e.Save()
	require.NoError(t, err)
	require.Empty(t, p)
	require.NoError(t, e.SaveAs("out.png", ""))

	require.Zero(t, e.HistoryLen())
	require.Empty(t, e.Log())
	require.Empty(t, img.encoded)
}

func TestEditor_UndoRedoLeaveLogAlone(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.ApplyFilter(imaging.FilterGrayscale))
	require.NoError(t, e.Adjust(imaging.AdjustBrightness, 120))
	logBefore := e.Log()

	require.True(t, e.Undo())
	require.Equal(t, "cat.png+grayscale", currentID(t, e))
	require.True(t, e.Undo())
	require.False(t, e.Undo())
	require.True(t, e.Redo())
	require.Equal(t, "cat.png+grayscale", currentID(t, e))

	require.Equal(t, logBefore, e.Log())

	// A new action drops the redo branch but keeps every log entry.
	require.NoError(t, e.ApplyFilter(imaging.FilterNegative))
	require.False(t, e.CanRedo())
	require.Equal(t, 3, e.HistoryLen())
	require.Equal(t, []string{LabelOpen, "Grayscale", "Brightness", "Negative"}, rootLabels(e))
}

func TestEditor_SelectedParentIsConsumedByNextAction(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	openID := e.Log()[0].ID

	require.NoError(t, e.SelectNode(openID))
	require.Equal(t, openID, e.SelectedID())
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	require.Empty(t, e.SelectedID())

	require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))

	roots := e.Log()
	require.Len(t, roots, 2)
	require.Equal(t, "Sharpen", roots[1].Label)
	require.Len(t, roots[0].Children, 1)
	require.Equal(t, "Blur", roots[0].Children[0].Label)
	require.True(t, roots[0].Expanded)

	require.ErrorAs(t, e.SelectNode("missing"), &NotFoundError{})
}

func TestEditor_SelectingReplacesPreviousMark(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	first, second := e.Log()[0].ID, e.Log()[1].ID

	require.NoError(t, e.SelectNode(first))
	require.NoError(t, e.SelectNode(second))
	require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))

	roots := e.Log()
	require.Empty(t, roots[0].Children)
	require.Len(t, roots[1].Children, 1)
}

func TestEditor_DeletePositional(t *testing.T) {
	cases := []struct {
		name       string
		undos      int
		deletePos  int
		wantLen    int
		wantCursor int
		wantCur    string
	}{
		{name: "at or before cursor shifts cursor down", undos: 0, deletePos: 2, wantLen: 3, wantCursor: 2, wantCur: "cat.png+blur+sharpen+negative"},
		{name: "after cursor keeps cursor", undos: 2, deletePos: 2, wantLen: 3, wantCursor: 1, wantCur: "cat.png+blur"},
		{name: "current entry falls back to previous", undos: 1, deletePos: 2, wantLen: 3, wantCursor: 1, wantCur: "cat.png+blur"},
		{name: "first entry keeps a current image", undos: 3, deletePos: 0, wantLen: 3, wantCursor: 0, wantCur: "cat.png+blur"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestEditor(t, Options{})
			require.NoError(t, e.Open("cat.png"))
			require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
			require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))
			require.NoError(t, e.ApplyFilter(imaging.FilterNegative))
			for i := 0; i < tc.undos; i++ {
				e.Undo()
			}

			id, ok := e.NodeByPosition(tc.deletePos)
			require.True(t, ok)
			require.NoError(t, e.DeleteNode(id))

			require.Equal(t, tc.wantLen, e.HistoryLen())
			require.Equal(t, tc.wantCursor, e.HistoryCursor())
			require.Equal(t, tc.wantCur, currentID(t, e))
			require.Len(t, e.Log(), 3)
		})
	}
}

func TestEditor_DeletePositionalUsesPreOrderAcrossNesting(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	// Pre-order: Open, Blur (child of Open), Sharpen.
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.SelectNode(e.Log()[0].ID))
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))
	ids := e.HistoryIDs()

	sharpenID, ok := e.FindByLabel("Sharpen")
	require.True(t, ok)
	require.NoError(t, e.DeleteNode(sharpenID))
	require.Equal(t, ids[:2], e.HistoryIDs())

	// Deleting a parent takes its subtree from the log but only one history entry.
	require.NoError(t, e.DeleteNode(e.Log()[0].ID))
	require.Empty(t, e.Log())
	require.Equal(t, ids[1:2], e.HistoryIDs())
	require.Equal(t, "cat.png+blur", currentID(t, e))
}

func TestEditor_DeleteLastEntryClearsImage(t *testing.T) {
	obs := &recordingObserver{}
	e, _ := newTestEditor(t, Options{Observer: obs})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.DeleteNode(e.Log()[0].ID))

	require.False(t, e.HasImage())
	require.Zero(t, e.HistoryLen())
	require.Equal(t, -1, e.HistoryCursor())
	require.Nil(t, obs.history[len(obs.history)-1])
}

func TestEditor_DeleteModesAfterUndoDivergence(t *testing.T) {
	// History: [open, sharpen]; log: Open, Blur, Sharpen.
	setup := func(t *testing.T, mode DeleteMode) *Editor {
		e, _ := newTestEditor(t, Options{DeleteMode: mode})
		require.NoError(t, e.Open("cat.png"))
		require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
		require.True(t, e.Undo())
		require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))
		require.Equal(t, 2, e.HistoryLen())
		require.Len(t, e.Log(), 3)
		return e
	}

	t.Run("positional keeps observed behavior", func(t *testing.T) {
		e := setup(t, DeletePositional)
		id, _ := e.FindByLabel("Sharpen")
		require.NoError(t, e.DeleteNode(id))
		// Pre-order position 2 has no history entry, so the history is unchanged.
		require.Equal(t, 2, e.HistoryLen())
		require.Equal(t, "cat.png+sharpen", currentID(t, e))
	})

	t.Run("linked drops the entry the node was logged against", func(t *testing.T) {
		e := setup(t, DeleteLinked)
		id, _ := e.FindByLabel("Sharpen")
		require.NoError(t, e.DeleteNode(id))
		require.Equal(t, 1, e.HistoryLen())
		require.Equal(t, "cat.png", currentID(t, e))

		// Blur's entry was already discarded by the redo truncation.
		blur, _ := e.FindByLabel("Blur")
		require.NoError(t, e.DeleteNode(blur))
		require.Equal(t, 1, e.HistoryLen())
	})
}

func TestEditor_DeleteClearsMarkInsideRemovedSubtree(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	root := e.Log()[0].ID
	require.NoError(t, e.SelectNode(root))
	require.NoError(t, e.DeleteNode(root))
	require.Empty(t, e.SelectedID())
	require.ErrorAs(t, e.DeleteNode(root), &NotFoundError{})
}

func TestEditor_RenameNode(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	v := e.Log()[0]

	ok, err := e.RenameNode(v.ID, "Base image")
	require.NoError(t, err)
	require.True(t, ok)
	got := e.Log()[0]
	require.Equal(t, "Base image", got.Label)
	require.Equal(t, v.Timestamp, got.Timestamp)

	ok, err = e.RenameNode(v.ID, "")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "Base image", e.Log()[0].Label)

	_, err = e.RenameNode("nope", "x")
	require.ErrorAs(t, err, &NotFoundError{})
}

func TestEditor_SaveLogsWithoutHistory(t *testing.T) {
	e, img := newTestEditor(t, Options{DefaultSavePath: "out/default.png"})
	require.NoError(t, e.Open("cat.png"))

	path, err := e.Save()
	require.NoError(t, err)
	require.Equal(t, "out/default.png", path)
	require.NoError(t, e.SaveAs("copy.jpg", ""))

	require.Equal(t, []string{"out/default.png", "copy.jpg"}, img.encoded)
	require.Equal(t, 1, e.HistoryLen())
	require.Equal(t, []string{LabelOpen, LabelSave, LabelSaveAs}, rootLabels(e))
	require.Empty(t, e.Log()[1].HistoryRef)

	var iae *InvalidArgError
	require.ErrorAs(t, e.SaveAs("  ", ""), &iae)
}

func TestEditor_FailedSaveLogsNothing(t *testing.T) {
	e, img := newTestEditor(t, Options{})
	require.NoError(t, e.Open("cat.png"))
	img.failEncode = true

	_, err := e.Save()
	var ioe *imaging.IOError
	require.ErrorAs(t, err, &ioe)
	require.Len(t, e.Log(), 1)
}

func TestEditor_RootEvictionBound(t *testing.T) {
	e, _ := newTestEditor(t, Options{MaxLogRoots: 3})
	require.NoError(t, e.Open("cat.png"))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	}
	require.Len(t, e.Log(), 3)
	// The history stays unbounded unless MaxHistory is set.
	require.Equal(t, 6, e.HistoryLen())
}

func TestEditor_BoundedHistory(t *testing.T) {
	e, _ := newTestEditor(t, Options{MaxHistory: 2})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	require.NoError(t, e.ApplyFilter(imaging.FilterSharpen))
	require.Equal(t, 2, e.HistoryLen())
	require.Equal(t, 1, e.HistoryCursor())
	require.Len(t, e.Log(), 3)
}

func TestEditor_ObserverNotifications(t *testing.T) {
	obs := &recordingObserver{}
	e, _ := newTestEditor(t, Options{Observer: obs})
	require.NoError(t, e.Open("cat.png"))
	require.Equal(t, 1, obs.logs)
	require.Len(t, obs.history, 1)
	require.Equal(t, "cat.png", obs.history[0].ID)

	e.Undo() // nothing to undo: no notification
	require.Len(t, obs.history, 1)

	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	require.True(t, e.Undo())
	require.Len(t, obs.history, 3)
	require.Equal(t, 2, obs.logs)
	require.Len(t, obs.last, 2)
}

func TestEditor_JournalRecordsSession(t *testing.T) {
	ctx := context.Background()
	st, err := journal.OpenJSONL(filepath.Join(t.TempDir(), "journal"))
	require.NoError(t, err)
	sess := journal.NewSession(st)

	e, _ := newTestEditor(t, Options{Journal: sess})
	require.NoError(t, e.Open("cat.png"))
	require.NoError(t, e.ApplyFilter(imaging.FilterBlur))
	require.True(t, e.Undo())
	id := e.Log()[1].ID
	_, err = e.RenameNode(id, "Soft")
	require.NoError(t, err)
	require.NoError(t, e.DeleteNode(id))

	evs, err := st.List(ctx, journal.Filter{SessionID: sess.ID})
	require.NoError(t, err)
	var types []string
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	require.Equal(t, []string{
		journal.TypeLogAdded,
		journal.TypeImageOpened,
		journal.TypeLogAdded,
		journal.TypeHistoryUndo,
		journal.TypeLogRenamed,
		journal.TypeLogDeleted,
		journal.TypeHistoryRemoved,
	}, types)
}

func TestEditor_DoDispatches(t *testing.T) {
	e, img := newTestEditor(t, Options{})
	steps := []string{"open=cat.png", "grayscale", "brightness=150", "undo", "redo", "save=out.png"}
	for _, s := range steps {
		a, err := ParseAction(s)
		require.NoError(t, err, s)
		require.NoError(t, e.Do(a), s)
	}
	require.Equal(t, "cat.png+grayscale+brightness", currentID(t, e))
	require.Equal(t, []string{"out.png"}, img.encoded)
	require.Equal(t, []string{LabelOpen, "Grayscale", "Brightness", LabelSaveAs}, rootLabels(e))

	var iae *InvalidArgError
	require.ErrorAs(t, e.Do(Action{Kind: "rotate"}), &iae)
}

func TestParseAction(t *testing.T) {
	good := map[string]Action{
		"open=a.png":     {Kind: ActionOpen, Path: "a.png"},
		"Blur":           {Kind: ActionFilter, Filter: imaging.FilterBlur},
		"contrast=0":     {Kind: ActionAdjust, Adjustment: imaging.AdjustContrast, Value: 0},
		"saturation=200": {Kind: ActionAdjust, Adjustment: imaging.AdjustSaturation, Value: 200},
		"save":           {Kind: ActionSave},
		"save=b.jpg":     {Kind: ActionSaveAs, Path: "b.jpg"},
		"redo":           {Kind: ActionRedo},
	}
	for in, want := range good {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "open", "brightness", "brightness=201", "contrast=x", "blur=3", "rotate"} {
		_, err := ParseAction(bad)
		require.Error(t, err, bad)
	}
}

func TestParseDeleteMode(t *testing.T) {
	m, err := ParseDeleteMode("")
	require.NoError(t, err)
	require.Equal(t, DeletePositional, m)
	m, err = ParseDeleteMode("LINKED")
	require.NoError(t, err)
	require.Equal(t, DeleteLinked, m)
	_, err = ParseDeleteMode("fuzzy")
	require.Error(t, err)
}
