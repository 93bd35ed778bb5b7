package notation

import (
	"strconv"
	"strings"
)

// Serialize renders a Node tree back to notation text. Compact mode puts a
// whole object on one line; pretty mode indents members two spaces per
// level. Object members whose value is null are omitted entirely, while
// nulls inside arrays are kept as positional placeholders.
func Serialize(n *Node, compact bool) string {
	var b strings.Builder
	writeNode(&b, n, compact, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, compact bool, indent int) {
	switch n.Kind {
	case KindObject:
		writeObject(b, n.Obj, compact, indent)
	case KindArray:
		writeArray(b, n.Elems, compact, indent)
	default:
		b.WriteString(scalarText(n))
	}
}

func writeObject(b *strings.Builder, o *Object, compact bool, indent int) {
	if o.Tag != "" {
		b.WriteByte('@')
		b.WriteString(o.Tag)
	}

	var keys []string
	for _, k := range o.Keys() {
		if v, ok := o.Get(k); ok && v.Kind != KindNull {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		b.WriteString("{}")
		return
	}

	if compact {
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			v, _ := o.Get(k)
			b.WriteString(k)
			b.WriteByte(':')
			writeNode(b, v, true, 0)
		}
		b.WriteByte('}')
		return
	}

	b.WriteString("{\n")
	for _, k := range keys {
		v, _ := o.Get(k)
		writeIndent(b, indent+1)
		b.WriteString(k)
		b.WriteString(": ")
		writeNode(b, v, false, indent+1)
		b.WriteByte('\n')
	}
	writeIndent(b, indent)
	b.WriteByte('}')
}

func writeArray(b *strings.Builder, elems []*Node, compact bool, indent int) {
	if len(elems) == 0 {
		b.WriteString("[]")
		return
	}

	// Arrays of scalars stay on one line. Arrays holding objects or nested
	// arrays get one element per line in pretty mode, each rendered compact.
	multiline := !compact && hasComposite(elems)
	if !multiline {
		b.WriteByte('[')
		for i, e := range elems {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNode(b, e, true, 0)
		}
		b.WriteByte(']')
		return
	}

	b.WriteString("[\n")
	for _, e := range elems {
		writeIndent(b, indent+1)
		writeNode(b, e, true, 0)
		b.WriteByte('\n')
	}
	writeIndent(b, indent)
	b.WriteByte(']')
}

func hasComposite(elems []*Node) bool {
	for _, e := range elems {
		if e.Kind == KindArray || e.Kind == KindObject {
			return true
		}
	}
	return false
}

func scalarText(n *Node) string {
	switch n.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(n.Int, 10)
	case KindFloat:
		return formatFloat(n.Float)
	case KindString:
		if needsQuotes(n.Str) {
			return quoteString(n.Str)
		}
		return n.Str
	}
	return "null"
}

// formatFloat keeps a decimal point in the output so the value reads back
// as a float rather than an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// needsQuotes reports whether the string cannot survive unquoted. That is
// the case when it contains structural characters, or when an unquoted
// reader would coerce it to a different type.
func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', ':', '{', '}', '[', ']', '"':
			return true
		}
	}
	return coerceToken(s).Kind != KindString
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}
