package tui

import (
	"fmt"
	"strings"

	"imgedit/internal/imaging"
	"imgedit/internal/logtree"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const slidersPanelHeight = 5

func (m appModel) View() string {
	bodyH := max(m.height-2, 4)

	var body string
	if m.modal != modalNone {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.viewModal())
	} else {
		leftW := min(max(m.width*2/5, 28), m.width)
		rightW := max(m.width-leftW-1, 0)
		left := normalizePane(m.viewLog(leftW, bodyH), leftW, bodyH)
		sep := normalizePane(strings.TrimRight(strings.Repeat("│\n", bodyH), "\n"), 1, bodyH)
		right := normalizePane(m.viewImagePane(rightW, bodyH), rightW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, styleMuted().Render(sep), right)
	}
	return strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n")
}

func (m appModel) viewHeader() string {
	path := m.ed.Path()
	if path == "" {
		path = "no image"
	}
	info := fmt.Sprintf("history %d/%d", m.ed.HistoryCursor()+1, m.ed.HistoryLen())
	if m.ed.DeleteMode() != "" {
		info += "  delete: " + string(m.ed.DeleteMode())
	}
	title := lipgloss.NewStyle().Bold(true).Render("imgedit")
	line := title + "  " + path + "  " + styleMuted().Render(info)
	return fitWidth(line, m.width)
}

func (m appModel) viewFooter() string {
	switch {
	case m.loading != "":
		return fitWidth(styleMuted().Render("Opening "+m.loading+"…"), m.width)
	case m.status != "":
		st := lipgloss.NewStyle()
		if m.statusErr {
			st = st.Foreground(colorErrorFg).Bold(true)
		}
		return fitWidth(st.Render(m.status), m.width)
	}
	return fitWidth(styleMuted().Render(m.keys.shortHelp()), m.width)
}

func (m appModel) viewLog(w, h int) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg).Render("Activity")
	lines := []string{head, strings.Repeat(glyphHRule(), w)}

	rows := m.st.rows
	if len(rows) == 0 {
		lines = append(lines, styleMuted().Render("No actions yet. Press o to open an image."))
		return strings.Join(lines, "\n")
	}

	visible := max(h-len(lines), 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(rows))
	selected := m.ed.SelectedID()
	for i := start; i < end; i++ {
		lines = append(lines, renderLogRow(rows[i], w, i == m.cursor && m.focus == focusLog, rows[i].Node.ID == selected))
	}
	return strings.Join(lines, "\n")
}

func renderLogRow(r logtree.Row, w int, active, parent bool) string {
	twisty := " "
	if r.HasChildren {
		twisty = glyphTwistyExpanded()
		if r.Collapsed {
			twisty = glyphTwistyCollapsed()
		}
	}
	marker := " "
	if parent {
		marker = lipgloss.NewStyle().Foreground(colorParentMarker).Render(glyphParentMarker())
	}
	left := strings.Repeat("  ", r.Depth) + twisty + " " + marker + " " + r.Node.Label
	ts := r.Node.Time

	gap := w - xansi.StringWidth(left) - xansi.StringWidth(ts)
	var line string
	if gap >= 1 {
		line = left + strings.Repeat(" ", gap) + styleMuted().Render(ts)
	} else {
		line = fitWidth(left, w)
	}
	if active {
		return lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true).
			Render(fitWidth(line, w))
	}
	return line
}

func (m appModel) viewImagePane(w, h int) string {
	previewH := max(h-slidersPanelHeight-1, 1)
	var preview string
	if m.st.current == nil {
		preview = lipgloss.Place(w, previewH, lipgloss.Center, lipgloss.Center, styleMuted().Render("No image loaded"))
	} else {
		preview = lipgloss.Place(w, previewH, lipgloss.Center, lipgloss.Center, m.st.preview.render(m.st.current, w, previewH))
	}
	return strings.Join([]string{preview, strings.Repeat(glyphHRule(), w), m.viewSliders(w)}, "\n")
}

func (m appModel) viewSliders(w int) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg).Render("Adjustments")
	lines := []string{head}
	barW := max(min(w-18, 30), 5)
	for i, adj := range imaging.Adjustments {
		active := m.focus == focusSliders && i == m.slider
		lines = append(lines, renderSlider(adj.Label(), m.values[i], barW, active))
	}
	lines = append(lines, styleMuted().Render("←/→ move   enter apply   esc back"))
	return strings.Join(lines, "\n")
}

func renderSlider(label string, value, barW int, active bool) string {
	filled := value * barW / imaging.MaxValue
	knob := imaging.NeutralValue * barW / imaging.MaxValue
	var bar strings.Builder
	for i := 0; i < barW; i++ {
		switch {
		case i == knob:
			bar.WriteString(glyphSliderKnob())
		case i < filled:
			bar.WriteString(glyphSliderFill())
		default:
			bar.WriteString(glyphSliderEmpty())
		}
	}
	line := fmt.Sprintf("%-10s %s %3d", label, bar.String(), value)
	if active {
		return lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Render(line)
	}
	return line
}

func (m appModel) viewModal() string {
	bodyW := modalBodyWidth(m.width)
	switch m.modal {
	case modalHelp:
		return renderModalBox(m.width, "Help", renderMarkdown(m.keys.helpMarkdown(), bodyW))
	case modalConfirmDelete:
		label := m.targetID
		if n, ok := findRow(m.st.rows, m.targetID); ok {
			label = n.Node.Label
		}
		body := fmt.Sprintf("Delete %q and everything nested under it?\nOne snapshot is also removed from the undo history.", label)
		return renderConfirmModal(m.width, "Delete entry", body, "Delete", "Cancel", m.confirmFocus)
	}

	var title, hint string
	switch m.modal {
	case modalOpen:
		title, hint = "Open image", "Path to a png, jpeg, bmp, gif or tiff file"
	case modalSaveAs:
		title, hint = "Save image as", "The extension picks the format"
	case modalRename:
		title, hint = "Rename entry", "Empty names are ignored"
	}
	help := styleMuted().Render("enter: confirm   esc: cancel")
	return renderModalBox(m.width, title, strings.Join([]string{hint, "", renderInputLine(bodyW, m.input.View()), "", help}, "\n"))
}

func findRow(rows []logtree.Row, id string) (logtree.Row, bool) {
	for _, r := range rows {
		if r.Node.ID == id {
			return r, true
		}
	}
	return logtree.Row{}, false
}
