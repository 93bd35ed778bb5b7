// Package notation implements the compact tagged-object text format used to
// exchange analytical plans with a language model. A document is either a
// tagged object @tag{...}, a bare object {...}, or a bare scalar.
//
// The package has no dependencies outside the standard library so it can be
// reused by tooling that only needs to read or write the format.
package notation

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is one value in a notation document. Exactly one of the payload
// fields is meaningful, selected by Kind. Int and Float are distinct kinds
// so the original token shape survives a serialize/parse round trip.
type Node struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Elems []*Node
	Obj   *Object
}

// Null returns a null node.
func Null() *Node { return &Node{Kind: KindNull} }

// Bool returns a boolean node.
func Bool(v bool) *Node { return &Node{Kind: KindBool, Bool: v} }

// Int returns an integer node.
func Int(v int64) *Node { return &Node{Kind: KindInt, Int: v} }

// Float returns a floating-point node.
func Float(v float64) *Node { return &Node{Kind: KindFloat, Float: v} }

// String returns a string node.
func String(v string) *Node { return &Node{Kind: KindString, Str: v} }

// Array returns an array node holding the given elements.
func Array(elems ...*Node) *Node { return &Node{Kind: KindArray, Elems: elems} }

// ObjectNode wraps an Object in a Node.
func ObjectNode(o *Object) *Node { return &Node{Kind: KindObject, Obj: o} }

// Object is an ordered string-keyed mapping with an optional type tag.
// Insertion order is preserved for serialization fidelity; re-declaring a
// key overwrites the value but keeps the key's original position.
type Object struct {
	// Tag names the object's semantic type (the word after '@'), or is
	// empty for a bare object.
	Tag string

	keys []string
	vals map[string]*Node
}

// NewObject returns an empty object with the given tag (may be empty).
func NewObject(tag string) *Object {
	return &Object{Tag: tag, vals: make(map[string]*Node)}
}

// Set stores a value under key. Last write wins; the key keeps the position
// of its first declaration.
func (o *Object) Set(key string, v *Node) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Node, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// Equal reports structural equality of two nodes. Objects compare tag, key
// order, and member values; arrays compare element-wise.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.Obj, b.Obj
		if ao.Tag != bo.Tag || len(ao.keys) != len(bo.keys) {
			return false
		}
		for i, k := range ao.keys {
			if bo.keys[i] != k {
				return false
			}
			if !Equal(ao.vals[k], bo.vals[k]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
