package format

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN. Structs are flattened through their json tags;
// object keys become keywords.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := toPlain(v)
	if err != nil {
		return err
	}
	p := ednPrinter{pretty: pretty}
	p.value(x, 0)
	p.buf.WriteByte('\n')
	_, err = w.Write(p.buf.Bytes())
	return err
}

type ednPrinter struct {
	buf    bytes.Buffer
	pretty bool
}

func (p *ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.buf.WriteString("nil")
	case bool:
		p.buf.WriteString(strconv.FormatBool(t))
	case string:
		p.buf.WriteString(strconv.Quote(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			p.buf.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		p.buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		p.open('[', len(t) == 0)
		for i, it := range t {
			p.sep(i, depth+1)
			p.value(it, depth+1)
		}
		p.close(']', len(t) == 0, depth)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		p.open('{', len(keys) == 0)
		for i, k := range keys {
			p.sep(i, depth+1)
			p.buf.WriteString(keyword(k))
			p.buf.WriteByte(' ')
			p.value(t[k], depth+1)
		}
		p.close('}', len(keys) == 0, depth)
	default:
		p.buf.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (p *ednPrinter) open(c byte, empty bool) {
	p.buf.WriteByte(c)
	if p.pretty && !empty {
		p.buf.WriteByte('\n')
	}
}

func (p *ednPrinter) sep(i, depth int) {
	if p.pretty {
		if i > 0 {
			p.buf.WriteByte('\n')
		}
		p.buf.WriteString(strings.Repeat("  ", depth))
		return
	}
	if i > 0 {
		p.buf.WriteByte(' ')
	}
}

func (p *ednPrinter) close(c byte, empty bool, depth int) {
	if p.pretty && !empty {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth))
	}
	p.buf.WriteByte(c)
}

func keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', '(', ')', '[', ']', '{', '}':
			return '-'
		}
		return r
	}, k)
	return ":" + k
}
