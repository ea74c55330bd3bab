package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Open     key.Binding
	Save     key.Binding
	SaveAs   key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Filter   key.Binding
	Slider   key.Binding
	Decrease key.Binding
	Increase key.Binding
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Enter    key.Binding
	Expand   key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Help     key.Binding
	Theme    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open an image")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to the default path")),
		SaveAs:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "save as")),
		Undo:     key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u/ctrl+z", "undo")),
		Redo:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
		Filter:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "grayscale, blur, sharpen, negative")),
		Slider:   key.NewBinding(key.WithKeys("b", "c", "t"), key.WithHelp("b/c/t", "brightness, contrast, saturation slider")),
		Decrease: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "lower slider")),
		Increase: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "raise slider")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous entry")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next entry")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch between log and sliders")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply slider, or nest the next action under the entry")),
		Expand:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "expand/collapse entry")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename entry")),
		Delete:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete entry")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Theme:    key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "toggle light/dark theme")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Open, k.Save, k.SaveAs, k.Undo, k.Redo, k.Filter, k.Slider,
		k.Decrease, k.Increase, k.Up, k.Down, k.Focus, k.Enter, k.Expand,
		k.Rename, k.Delete, k.Theme, k.Help, k.Quit,
	}
}

// helpMarkdown renders the key map as a markdown table for glamour.
func (k keyMap) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n\n| key | action |\n| --- | --- |\n")
	for _, kb := range k.bindings() {
		h := kb.Help()
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	b.WriteString("\nActions nest under the marked entry (enter); the mark is used once. ")
	b.WriteString("Deleting an entry also drops one snapshot from the undo history.\n")
	return b.String()
}

func (k keyMap) shortHelp() string {
	parts := []string{}
	for _, kb := range []key.Binding{k.Open, k.Save, k.Undo, k.Filter, k.Slider, k.Rename, k.Delete, k.Help, k.Quit} {
		h := kb.Help()
		parts = append(parts, h.Key+" "+firstWord(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " ,/"); i > 0 {
		return s[:i]
	}
	return s
}
