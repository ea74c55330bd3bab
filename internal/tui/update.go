package tui

import (
	"fmt"
	"strings"

	"imgedit/internal/imaging"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case imageDecodedMsg:
		m.loading = ""
		if msg.err != nil {
			m.logger.Error("error opening image", "path", msg.path, "err", msg.err)
			return m, m.setStatus("Error opening image: "+msg.err.Error(), true)
		}
		m.ed.Load(msg.path, msg.snap)
		m.resetSliders()
		w, h := msg.snap.Size()
		return m, m.setStatus(fmt.Sprintf("Opened %s (%dx%d)", msg.path, w, h), false)

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.modal = modalHelp
		return m, nil

	case key.Matches(msg, k.Theme):
		toggleTheme()
		return m, m.setStatus("Theme: "+themeName(), false)

	case key.Matches(msg, k.Open):
		return m, m.openPrompt(modalOpen, m.ed.Path())

	case key.Matches(msg, k.Save):
		return m, m.save()

	case key.Matches(msg, k.SaveAs):
		if !m.ed.HasImage() {
			return m, nil
		}
		return m, m.openPrompt(modalSaveAs, m.ed.Path())

	case key.Matches(msg, k.Undo):
		if m.ed.Undo() {
			return m, m.setStatus("Undo", false)
		}
		return m, nil

	case key.Matches(msg, k.Redo):
		if m.ed.Redo() {
			return m, m.setStatus("Redo", false)
		}
		return m, nil

	case key.Matches(msg, k.Filter):
		filters := imaging.Filters
		i := int(msg.String()[0] - '1')
		if i < 0 || i >= len(filters) {
			return m, nil
		}
		if err := m.ed.ApplyFilter(filters[i]); err != nil {
			return m, m.setStatus("Error applying filter: "+err.Error(), true)
		}
		m.clampCursor()
		return m, nil

	case key.Matches(msg, k.Slider):
		m.focus = focusSliders
		m.slider = strings.Index("bct", msg.String())
		return m, nil

	case key.Matches(msg, k.Focus):
		if m.focus == focusLog {
			m.focus = focusSliders
		} else {
			m.focus = focusLog
		}
		return m, nil

	case key.Matches(msg, k.Back):
		m.focus = focusLog
		return m, nil
	}

	if m.focus == focusSliders {
		return m.updateSliders(msg)
	}
	return m.updateLog(msg)
}

func (m appModel) updateSliders(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		m.slider = (m.slider + len(m.values) - 1) % len(m.values)
	case key.Matches(msg, k.Down):
		m.slider = (m.slider + 1) % len(m.values)
	case key.Matches(msg, k.Decrease):
		m.values[m.slider] = imaging.ClampValue(m.values[m.slider] - sliderStep)
	case key.Matches(msg, k.Increase):
		m.values[m.slider] = imaging.ClampValue(m.values[m.slider] + sliderStep)
	case key.Matches(msg, k.Enter):
		adj := imaging.Adjustments[m.slider]
		if err := m.ed.Adjust(adj, m.values[m.slider]); err != nil {
			return m, m.setStatus("Error adjusting image: "+err.Error(), true)
		}
		m.clampCursor()
	}
	return m, nil
}

func (m appModel) updateLog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, k.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, k.Enter):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if m.ed.SelectedID() == row.Node.ID {
			m.ed.ClearSelection()
			return m, m.setStatus("Parent cleared", false)
		}
		if err := m.ed.SelectNode(row.Node.ID); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, m.setStatus("Next action nests under "+row.Node.Label, false)
	case key.Matches(msg, k.Expand):
		row, ok := m.selectedRow()
		if !ok || !row.HasChildren {
			return m, nil
		}
		_ = m.ed.SetExpanded(row.Node.ID, row.Collapsed)
		m.clampCursor()
	case key.Matches(msg, k.Rename):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.targetID = row.Node.ID
		return m, m.openPrompt(modalRename, row.Node.Label)
	case key.Matches(msg, k.Delete):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.modal = modalConfirmDelete
		m.targetID = row.Node.ID
		m.confirmFocus = confirmFocusConfirm
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.modal = modalNone
		}
		return m, nil
	case modalConfirmDelete:
		return m.updateConfirm(msg)
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlG:
		m.closeModal()
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.closeModal()
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "y":
		m.confirmFocus = confirmFocusConfirm
		fallthrough
	case "enter":
		id := m.targetID
		confirmed := m.confirmFocus == confirmFocusConfirm
		m.closeModal()
		if !confirmed {
			return m, nil
		}
		if err := m.ed.DeleteNode(id); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.clampCursor()
		return m, m.setStatus("Entry deleted", false)
	}
	return m, nil
}

func (m appModel) submitPrompt() (tea.Model, tea.Cmd) {
	kind, value, id := m.modal, strings.TrimSpace(m.input.Value()), m.targetID
	m.closeModal()

	switch kind {
	case modalOpen:
		if value == "" {
			return m, nil
		}
		m.loading = value
		return m, m.decodeCmd(value)
	case modalSaveAs:
		if value == "" {
			return m, nil
		}
		if err := m.ed.SaveAs(value, ""); err != nil {
			return m, m.setStatus("Error saving image: "+err.Error(), true)
		}
		m.clampCursor()
		return m, m.setStatus("Saved to "+value, false)
	case modalRename:
		ok, err := m.ed.RenameNode(id, m.input.Value())
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		if !ok {
			return m, nil
		}
		return m, m.setStatus("Renamed to "+value, false)
	}
	return m, nil
}

func (m *appModel) save() tea.Cmd {
	path, err := m.ed.Save()
	if err != nil {
		return m.setStatus("Error saving image: "+err.Error(), true)
	}
	if path == "" {
		return nil
	}
	m.clampCursor()
	return m.setStatus("Saved to "+path, false)
}
