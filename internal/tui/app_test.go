package tui

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"imgedit/internal/editor"
	"imgedit/internal/imaging"

	tea "github.com/charmbracelet/bubbletea"
)

type stubDecoder struct{}

func (stubDecoder) Open(path string) (imaging.Snapshot, error) {
	if strings.HasSuffix(path, ".bad") {
		return imaging.Snapshot{}, &imaging.DecodeError{Path: path, Err: errors.New("corrupt")}
	}
	return imaging.FromImage(solid(4, 4), path), nil
}

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func newTestModel(t *testing.T) appModel {
	t.Helper()
	ed := editor.New(imaging.NewProcessor(), editor.Options{DefaultSavePath: t.TempDir() + "/out.png"})
	return newAppModel(ed, stubDecoder{}, nil)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		mm, ok := next.(appModel)
		if !ok {
			t.Fatalf("expected appModel; got %T", next)
		}
		m = mm
	}
	return m
}

func opened(t *testing.T) appModel {
	t.Helper()
	m := newTestModel(t)
	snap, _ := stubDecoder{}.Open("cat.png")
	return send(t, m, imageDecodedMsg{path: "cat.png", snap: snap})
}

func TestOpenPromptDecodesInCommand(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("o"))
	if m.modal != modalOpen {
		t.Fatalf("expected open prompt; got %v", m.modal)
	}
	m.input.SetValue("cat.png")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a decode command")
	}
	if m.ed.HasImage() {
		t.Fatalf("image must not be loaded before the decode result arrives")
	}
	if m.loading != "cat.png" {
		t.Fatalf("expected loading status; got %q", m.loading)
	}

	m = send(t, m, cmd())
	if !m.ed.HasImage() || len(m.st.rows) != 1 || m.st.rows[0].Node.Label != editor.LabelOpen {
		t.Fatalf("expected opened image with one log row; rows=%v", m.st.rows)
	}
	if m.st.current == nil {
		t.Fatalf("expected observer to receive the current snapshot")
	}
}

func TestDecodeErrorShowsStatusAndKeepsState(t *testing.T) {
	m := opened(t)
	m = send(t, m, imageDecodedMsg{path: "x.bad", err: &imaging.DecodeError{Path: "x.bad", Err: errors.New("corrupt")}})
	if !m.statusErr || !strings.Contains(m.status, "Error opening image") {
		t.Fatalf("expected error status; got %q", m.status)
	}
	if m.ed.HistoryLen() != 1 || len(m.st.rows) != 1 {
		t.Fatalf("failed open must not change state")
	}
}

func TestFilterKeysAndUndoRedo(t *testing.T) {
	m := opened(t)
	m = send(t, m, runes("1"), runes("4"))
	if got := m.ed.HistoryLen(); got != 3 {
		t.Fatalf("expected 3 history entries; got %d", got)
	}
	if got := m.st.rows[2].Node.Label; got != "Negative" {
		t.Fatalf("expected Negative logged last; got %q", got)
	}

	m = send(t, m, runes("u"), tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := m.ed.HistoryCursor(); got != 0 {
		t.Fatalf("expected cursor 0 after two undos; got %d", got)
	}
	if len(m.st.rows) != 3 {
		t.Fatalf("undo must not change the log")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if got := m.ed.HistoryCursor(); got != 1 {
		t.Fatalf("expected cursor 1 after redo; got %d", got)
	}
}

func TestSliderAppliesAdjustment(t *testing.T) {
	m := opened(t)
	m = send(t, m, runes("c"))
	if m.focus != focusSliders || m.slider != 1 {
		t.Fatalf("expected contrast slider focus; got focus=%v slider=%d", m.focus, m.slider)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.values[1]; got != imaging.NeutralValue+2*sliderStep {
		t.Fatalf("unexpected slider value %d", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.st.rows[len(m.st.rows)-1].Node.Label; got != "Contrast" {
		t.Fatalf("expected Contrast logged; got %q", got)
	}

	for i := 0; i < 50; i++ {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if got := m.values[1]; got != imaging.MaxValue {
		t.Fatalf("slider must clamp at %d; got %d", imaging.MaxValue, got)
	}
}

func TestEnterMarksParentForNextAction(t *testing.T) {
	m := opened(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.ed.SelectedID() != m.st.rows[0].Node.ID {
		t.Fatalf("expected first row marked as parent")
	}
	m = send(t, m, runes("2"))
	if m.ed.SelectedID() != "" {
		t.Fatalf("mark must be consumed by the next action")
	}
	if len(m.st.tree) != 1 || len(m.st.tree[0].Children) != 1 {
		t.Fatalf("expected Blur nested under Open; tree=%v", m.st.tree)
	}
	if m.st.rows[1].Depth != 1 {
		t.Fatalf("expected nested row depth 1; got %d", m.st.rows[1].Depth)
	}

	// Collapse hides the child row but keeps the node.
	m = send(t, m, runes(" "))
	if len(m.st.rows) != 1 || !m.st.rows[0].Collapsed {
		t.Fatalf("expected collapsed parent row; rows=%v", m.st.rows)
	}
}

func TestRenamePrompt(t *testing.T) {
	m := opened(t)
	m = send(t, m, runes("r"))
	if m.modal != modalRename || m.input.Value() != editor.LabelOpen {
		t.Fatalf("expected rename prompt prefilled with label; got modal=%v value=%q", m.modal, m.input.Value())
	}
	m.input.SetValue("Base image")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.st.rows[0].Node.Label; got != "Base image" {
		t.Fatalf("expected renamed row; got %q", got)
	}

	m = send(t, m, runes("r"))
	m.input.SetValue("")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.st.rows[0].Node.Label; got != "Base image" {
		t.Fatalf("empty rename must be ignored; got %q", got)
	}

	m = send(t, m, runes("r"))
	m.input.SetValue("  ")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.st.rows[0].Node.Label; got != "  " {
		t.Fatalf("whitespace label should be kept; got %q", got)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m := opened(t)
	m = send(t, m, runes("1"), runes("2"), runes("3"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("expected cursor on row 2; got %d", m.cursor)
	}

	// Cancel first.
	m = send(t, m, runes("x"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalNone || m.ed.HistoryLen() != 4 {
		t.Fatalf("cancel must not delete; len=%d", m.ed.HistoryLen())
	}

	m = send(t, m, runes("x"))
	if m.modal != modalConfirmDelete {
		t.Fatalf("expected confirm modal")
	}
	if !strings.Contains(m.View(), "Delete entry") {
		t.Fatalf("expected confirm modal in view")
	}
	m = send(t, m, runes("y"))
	if m.ed.HistoryLen() != 3 || len(m.st.rows) != 3 {
		t.Fatalf("expected one entry removed; history=%d rows=%d", m.ed.HistoryLen(), len(m.st.rows))
	}
	if got := m.ed.HistoryCursor(); got != 2 {
		t.Fatalf("expected cursor shifted to 2; got %d", got)
	}
}

func TestSaveKeysLogWithoutHistory(t *testing.T) {
	m := opened(t)
	m = send(t, m, runes("s"))
	if m.statusErr || !strings.HasPrefix(m.status, "Saved to") {
		t.Fatalf("expected saved status; got %q", m.status)
	}
	if m.ed.HistoryLen() != 1 || len(m.st.rows) != 2 || m.st.rows[1].Node.Label != editor.LabelSave {
		t.Fatalf("save must log without a history entry")
	}

	m = send(t, m, runes("S"))
	if m.modal != modalSaveAs {
		t.Fatalf("expected save-as prompt")
	}
	m.input.SetValue(t.TempDir() + "/copy.bmp")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.st.rows[len(m.st.rows)-1].Node.Label; got != editor.LabelSaveAs {
		t.Fatalf("expected save-as logged; got %q", got)
	}
}

func TestNoImageKeysAreIgnored(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("1"), runes("u"), runes("s"), runes("S"), runes("x"), runes("r"))
	if m.modal != modalNone || m.ed.HistoryLen() != 0 || len(m.st.rows) != 0 {
		t.Fatalf("expected nothing to happen without an image")
	}
	if !strings.Contains(m.View(), "No image loaded") {
		t.Fatalf("expected empty preview placeholder")
	}
}

func TestHelpModalRendersKeys(t *testing.T) {
	m := newTestModel(t)
	m.width, m.height = 100, 40
	m = send(t, m, runes("?"))
	if m.modal != modalHelp {
		t.Fatalf("expected help modal")
	}
	if !strings.Contains(m.View(), "rename") {
		t.Fatalf("expected key help in view")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != modalNone {
		t.Fatalf("esc must close help")
	}
}

func TestStatusExpiresBySequence(t *testing.T) {
	m := newTestModel(t)
	m.setStatus("first", false)
	m.setStatus("second", false)
	m = send(t, m, statusExpiredMsg{seq: 1})
	if m.status != "second" {
		t.Fatalf("stale expiry must not clear newer status")
	}
	m = send(t, m, statusExpiredMsg{seq: 2})
	if m.status != "" {
		t.Fatalf("expected status cleared")
	}
}
