// Package format renders command results for scripts.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	JSON = "json"
	EDN  = "edn"
	YAML = "yaml"
)

// Formats lists the accepted --format values.
var Formats = []string{JSON, EDN, YAML}

// Write renders v in the named format. An empty name means JSON.
func Write(w io.Writer, v any, name string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	case YAML:
		return WriteYAML(w, v)
	}
	return fmt.Errorf("unknown format: %s (want one of %s)", name, strings.Join(Formats, ", "))
}

// WriteJSON writes v followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteYAML goes through JSON first so yaml keys follow the json tags.
func WriteYAML(w io.Writer, v any) error {
	x, err := toPlain(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}

// toPlain converts v into maps, slices and scalars using its json tags.
func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}
