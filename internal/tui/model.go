package tui

import (
	"log/slog"
	"time"

	"imgedit/internal/applog"
	"imgedit/internal/editor"
	"imgedit/internal/imaging"
	"imgedit/internal/logtree"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Decoder reads an image off the update loop.
type Decoder interface {
	Open(path string) (imaging.Snapshot, error)
}

type focusArea int

const (
	focusLog focusArea = iota
	focusSliders
)

type modal int

const (
	modalNone modal = iota
	modalOpen
	modalSaveAs
	modalRename
	modalConfirmDelete
	modalHelp
)

const (
	sliderStep     = 5
	statusLifetime = 4 * time.Second
)

// viewState is the Observer side of the model. The editor calls it
// synchronously from inside Update, so it needs no locking.
type viewState struct {
	tree    []logtree.NodeView
	rows    []logtree.Row
	current *imaging.Snapshot
	preview previewCache
}

func (v *viewState) LogChanged(tree []logtree.NodeView) {
	v.tree = tree
	v.rows = logtree.Flatten(tree)
}

func (v *viewState) HistoryChanged(current *imaging.Snapshot) {
	v.current = current
}

type appModel struct {
	ed      *editor.Editor
	decoder Decoder
	logger  *slog.Logger
	st      *viewState
	keys    keyMap

	width  int
	height int

	focus  focusArea
	cursor int
	slider int
	values [3]int

	modal        modal
	input        textinput.Model
	confirmFocus confirmModalFocus
	targetID     string

	loading   string
	status    string
	statusErr bool
	statusSeq int

	initCmd tea.Cmd
}

type imageDecodedMsg struct {
	path string
	snap imaging.Snapshot
	err  error
}

type statusExpiredMsg struct{ seq int }

func newAppModel(ed *editor.Editor, dec Decoder, logger *slog.Logger) appModel {
	if logger == nil {
		logger = applog.Discard()
	}
	st := &viewState{}
	ed.SetObserver(st)
	st.LogChanged(ed.Log())
	if cur, ok := ed.Current(); ok {
		st.HistoryChanged(&cur)
	}

	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 4096
	in.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)

	m := appModel{
		ed:      ed,
		decoder: dec,
		logger:  logger,
		st:      st,
		keys:    defaultKeyMap(),
		input:   in,
		width:   100,
		height:  30,
	}
	m.resetSliders()
	return m
}

func (m *appModel) resetSliders() {
	for i := range m.values {
		m.values[i] = imaging.NeutralValue
	}
}

func (m appModel) Init() tea.Cmd { return m.initCmd }

// decodeCmd decodes path on a tea goroutine; the editor is only touched when
// the result comes back through Update.
func (m appModel) decodeCmd(path string) tea.Cmd {
	dec := m.decoder
	return func() tea.Msg {
		snap, err := dec.Open(path)
		return imageDecodedMsg{path: path, snap: snap, err: err}
	}
}

func (m *appModel) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusLifetime, func(time.Time) tea.Msg { return statusExpiredMsg{seq: seq} })
}

func (m *appModel) clampCursor() {
	n := len(m.st.rows)
	switch {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}

func (m appModel) selectedRow() (logtree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.st.rows) {
		return logtree.Row{}, false
	}
	return m.st.rows[m.cursor], true
}

// openPrompt switches to a text prompt modal prefilled with value.
func (m *appModel) openPrompt(kind modal, value string) tea.Cmd {
	m.modal = kind
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.targetID = ""
	m.input.Blur()
	m.input.SetValue("")
}
