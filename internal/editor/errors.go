package editor

import "fmt"

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type InvalidArgError struct {
	Arg   string
	Value string
}

func (e *InvalidArgError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Arg, e.Value)
}
