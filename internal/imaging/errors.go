package imaging

import "fmt"

// DecodeError reports an unreadable or unsupported input file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a failure writing an image.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
