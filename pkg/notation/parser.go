package notation

import (
	"strconv"
	"strings"
)

// Parse parses a notation document into a Node tree.
//
// A document is a tagged object @tag{...}, a bare object {...}, or a bare
// scalar. Parse is deliberately lenient toward near-miss generator output:
// unrecognized characters encountered while scanning for an object key are
// skipped one at a time instead of aborting. Only structural problems fail:
// an unmatched brace or bracket, or an unterminated quoted string.
func Parse(text string) (*Node, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return nil, parseErrorAt(src, 0, "empty document")
	}
	p := &parser{src: src}

	if src[0] == '@' {
		if tag, open, ok := p.taggedOpen(0, len(src)); ok {
			end, err := p.matchDelim(open, len(src), '{', '}')
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(src[end+1:]) == "" {
				obj, err := p.parseMembers(open+1, end, tag)
				if err != nil {
					return nil, err
				}
				return ObjectNode(obj), nil
			}
		}
	}

	if src[0] == '{' {
		end, err := p.matchDelim(0, len(src), '{', '}')
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(src[end+1:]) == "" {
			obj, err := p.parseMembers(1, end, "")
			if err != nil {
				return nil, err
			}
			return ObjectNode(obj), nil
		}
	}

	// Bare scalar document.
	v, next, err := p.parseValue(0, len(src))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(src[next:]) != "" {
		// Trailing text after a scalar: treat the whole document as one
		// string rather than failing.
		return String(src), nil
	}
	return v, nil
}

type parser struct {
	src string
}

// taggedOpen matches "@ident {"-style openings starting at i. It returns
// the tag name and the position of the opening brace.
func (p *parser) taggedOpen(i, end int) (tag string, brace int, ok bool) {
	if i >= end || p.src[i] != '@' {
		return "", 0, false
	}
	j := i + 1
	for j < end && isWordChar(p.src[j]) {
		j++
	}
	if j == i+1 {
		return "", 0, false
	}
	name := p.src[i+1 : j]
	j = p.skipSpace(j, end)
	if j >= end || p.src[j] != '{' {
		return "", 0, false
	}
	return name, j, true
}

// matchDelim finds the closing delimiter matching the opener at start.
// Delimiters inside quoted spans are ignored; a backslash inside a quoted
// span escapes exactly the next character.
func (p *parser) matchDelim(start, end int, open, close byte) (int, error) {
	depth := 0
	inString := false
	var quote byte
	for i := start; i < end; i++ {
		ch := p.src[i]
		if inString {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				inString = false
			}
			continue
		}
		switch ch {
		case '"', '\'':
			inString = true
			quote = ch
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	what := "brace"
	if open == '[' {
		what = "bracket"
	}
	return 0, parseErrorAt(p.src, start, "unmatched %s", what)
}

// parseMembers parses key:value pairs in src[start:end) into an object.
func (p *parser) parseMembers(start, end int, tag string) (*Object, error) {
	obj := NewObject(tag)
	i := start
	for i < end {
		i = p.skipSpace(i, end)
		if i >= end {
			break
		}
		key, after, ok := p.readKey(i, end)
		if !ok {
			// Not a key at this position; skip one character and retry so
			// garbage between members does not poison the rest.
			i++
			continue
		}
		i = p.skipSpace(after, end)
		v, next, err := p.parseValue(i, end)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
		i = p.skipSpaceAndCommas(next, end)
	}
	return obj, nil
}

// readKey matches "ident :" starting at i and returns the position just
// past the colon.
func (p *parser) readKey(i, end int) (key string, after int, ok bool) {
	j := i
	for j < end && isWordChar(p.src[j]) {
		j++
	}
	if j == i {
		return "", 0, false
	}
	k := p.skipSpace(j, end)
	if k >= end || p.src[k] != ':' {
		return "", 0, false
	}
	return p.src[i:j], k + 1, true
}

// parseValue parses one value starting at i and returns the position just
// past it.
func (p *parser) parseValue(i, end int) (*Node, int, error) {
	i = p.skipSpace(i, end)
	if i >= end {
		return Null(), i, nil
	}

	switch ch := p.src[i]; {
	case ch == '@':
		tag, open, ok := p.taggedOpen(i, end)
		if !ok {
			break // unquoted token starting with '@'
		}
		close_, err := p.matchDelim(open, end, '{', '}')
		if err != nil {
			return nil, 0, err
		}
		obj, err := p.parseMembers(open+1, close_, tag)
		if err != nil {
			return nil, 0, err
		}
		return ObjectNode(obj), close_ + 1, nil

	case ch == '{':
		close_, err := p.matchDelim(i, end, '{', '}')
		if err != nil {
			return nil, 0, err
		}
		obj, err := p.parseMembers(i+1, close_, "")
		if err != nil {
			return nil, 0, err
		}
		return ObjectNode(obj), close_ + 1, nil

	case ch == '[':
		close_, err := p.matchDelim(i, end, '[', ']')
		if err != nil {
			return nil, 0, err
		}
		elems, err := p.parseElements(i+1, close_)
		if err != nil {
			return nil, 0, err
		}
		return &Node{Kind: KindArray, Elems: elems}, close_ + 1, nil

	case ch == '"' || ch == '\'':
		endq, err := p.stringEnd(i, end, ch)
		if err != nil {
			return nil, 0, err
		}
		return String(unescape(p.src[i+1:endq], ch)), endq + 1, nil
	}

	// Unquoted token: read up to whitespace, comma, or a closing delimiter,
	// then coerce.
	j := i
	for j < end && !isTokenEnd(p.src[j]) {
		j++
	}
	return coerceToken(p.src[i:j]), j, nil
}

// parseElements parses array elements in src[start:end).
func (p *parser) parseElements(start, end int) ([]*Node, error) {
	var elems []*Node
	i := start
	for i < end {
		i = p.skipSpace(i, end)
		if i >= end {
			break
		}
		v, next, err := p.parseValue(i, end)
		if err != nil {
			return nil, err
		}
		if next > i {
			elems = append(elems, v)
			i = next
		} else {
			i++
		}
		i = p.skipSpaceAndCommas(i, end)
	}
	return elems, nil
}

// stringEnd finds the closing quote of the string opened at i.
func (p *parser) stringEnd(i, end int, quote byte) (int, error) {
	for j := i + 1; j < end; j++ {
		if p.src[j] == '\\' {
			j++
			continue
		}
		if p.src[j] == quote {
			return j, nil
		}
	}
	return 0, parseErrorAt(p.src, i, "unterminated string")
}

func (p *parser) skipSpace(i, end int) int {
	for i < end && isSpace(p.src[i]) {
		i++
	}
	return i
}

func (p *parser) skipSpaceAndCommas(i, end int) int {
	for i < end && (isSpace(p.src[i]) || p.src[i] == ',') {
		i++
	}
	return i
}

// coerceToken converts an unquoted token to its typed value. Trial order:
// boolean literal, null literal, integer, float, bare string.
func coerceToken(raw string) *Node {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null", "none":
		return Null()
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(v)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float(v)
	}
	return String(raw)
}

// unescape decodes the two recognized escapes, backslash-quote and
// backslash-backslash. Any other backslash sequence is kept verbatim.
func unescape(s string, quote byte) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == quote || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isWordChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isTokenEnd(ch byte) bool {
	return isSpace(ch) || ch == ',' || ch == '}' || ch == ']'
}
