package editor

import (
	"strconv"
	"strings"

	"imgedit/internal/imaging"
)

type ActionKind string

const (
	ActionOpen   ActionKind = "open"
	ActionFilter ActionKind = "filter"
	ActionAdjust ActionKind = "adjust"
	ActionUndo   ActionKind = "undo"
	ActionRedo   ActionKind = "redo"
	ActionSave   ActionKind = "save"
	ActionSaveAs ActionKind = "save-as"
)

// Action is one user request routed through Do.
type Action struct {
	Kind       ActionKind
	Path       string
	Format     string
	Filter     imaging.Filter
	Adjustment imaging.Adjustment
	Value      int
}

// Do dispatches a on its kind.
func (e *Editor) Do(a Action) error {
	switch a.Kind {
	case ActionOpen:
		return e.Open(a.Path)
	case ActionFilter:
		return e.ApplyFilter(a.Filter)
	case ActionAdjust:
		return e.Adjust(a.Adjustment, a.Value)
	case ActionUndo:
		e.Undo()
		return nil
	case ActionRedo:
		e.Redo()
		return nil
	case ActionSave:
		_, err := e.Save()
		return err
	case ActionSaveAs:
		return e.SaveAs(a.Path, a.Format)
	}
	return &InvalidArgError{Arg: "action", Value: string(a.Kind)}
}

// ParseAction reads the compact step syntax used on the command line:
//
//	open=PATH  grayscale|blur|sharpen|negative  brightness=N  contrast=N
//	saturation=N  undo  redo  save  save=PATH
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	name, arg, hasArg := strings.Cut(s, "=")
	name = strings.ToLower(strings.TrimSpace(name))
	arg = strings.TrimSpace(arg)

	switch name {
	case "open":
		if arg == "" {
			return Action{}, &InvalidArgError{Arg: "open path", Value: s}
		}
		return Action{Kind: ActionOpen, Path: arg}, nil
	case "undo":
		return Action{Kind: ActionUndo}, nil
	case "redo":
		return Action{Kind: ActionRedo}, nil
	case "save":
		if hasArg && arg != "" {
			return Action{Kind: ActionSaveAs, Path: arg}, nil
		}
		return Action{Kind: ActionSave}, nil
	}
	if f, err := imaging.ParseFilter(name); err == nil && !hasArg {
		return Action{Kind: ActionFilter, Filter: f}, nil
	}
	if adj, err := imaging.ParseAdjustment(name); err == nil {
		v, err := strconv.Atoi(arg)
		if err != nil || v < imaging.MinValue || v > imaging.MaxValue {
			return Action{}, &InvalidArgError{Arg: name + " value", Value: arg}
		}
		return Action{Kind: ActionAdjust, Adjustment: adj, Value: v}, nil
	}
	return Action{}, &InvalidArgError{Arg: "action", Value: s}
}
