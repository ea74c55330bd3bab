package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines so panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	width = max(width, 0)
	height = max(height, 0)

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitWidth(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates with an ellipsis or pads with spaces to width columns.
func fitWidth(ln string, width int) string {
	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width <= 0:
			return ""
		case width == 1:
			ln = xansi.Truncate(ln, 1, "")
		default:
			ln = xansi.Truncate(ln, width, "…")
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// renderInputLine keeps a text input on one visual line of bodyW columns.
func renderInputLine(bodyW int, inputView string) string {
	bodyW = max(bodyW, 10)
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Truncate(line, bodyW, "") + "\x1b[0m"
	}
	return line
}

func modalWidth(screenW int) int {
	return min(max(screenW-8, 30), 72)
}

func modalBodyWidth(screenW int) int {
	return modalWidth(screenW) - 4
}

// renderModalBox draws a titled, bordered box sized for screenW.
func renderModalBox(screenW int, title, body string) string {
	w := modalWidth(screenW)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent).
		Padding(0, 1).
		Width(w - 2).
		Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(w - 2)
	content := lipgloss.NewStyle().Padding(1, 1).Width(w - 2).Render(body)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}
