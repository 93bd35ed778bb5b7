// Package plan defines the typed analytical-plan model, its projection from
// generic notation documents, and schema validation.
package plan

import (
	"fmt"

	"github.com/leapstack-labs/dashql/pkg/notation"
)

// Plan is a typed analytical plan as produced by the compiler.
type Plan struct {
	Question string
	Feasible bool
	Reason   string
	Tables   []string
	SQL      string
	Viz      []Panel

	SuggestedInvestigations []string
}

// Panel is one visualization panel specification.
type Panel struct {
	Type        PanelType
	Title       string
	Description string
	SQL         string
	X           string
	Y           string
	Columns     []string
	Value       string
}

// ValidationError reports a semantic problem with a plan: a schema mismatch,
// a policy violation, or a mis-typed field. It is distinct from
// notation.ParseError, which covers structural problems in the input text.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// EffectiveSQL resolves the query a panel actually runs: the panel's own SQL
// when present, otherwise the plan's primary SQL. An empty result means the
// panel has nothing to execute.
func EffectiveSQL(p *Plan, panel *Panel) string {
	if panel != nil && panel.SQL != "" {
		return panel.SQL
	}
	return p.SQL
}

// FromNode projects a parsed notation document into a typed Plan. The
// question may appear under "q" or "question"; feasible defaults to true
// when absent; a viz member holding a single panel object is normalized to
// a one-element slice here so nothing downstream deals with the duality.
// A member of the wrong kind returns a *ValidationError rather than being
// silently zeroed.
func FromNode(n *notation.Node) (*Plan, error) {
	if n == nil || n.Kind != notation.KindObject {
		return nil, validationErrorf("plan must be an object, got %s", kindName(n))
	}
	obj := n.Obj

	p := &Plan{Feasible: true}

	var err error
	if p.Question, err = stringMember(obj, "q"); err != nil {
		return nil, err
	}
	if p.Question == "" {
		if p.Question, err = stringMember(obj, "question"); err != nil {
			return nil, err
		}
	}

	if v, ok := obj.Get("feasible"); ok && v.Kind != notation.KindNull {
		if v.Kind != notation.KindBool {
			return nil, validationErrorf("plan member %q must be a boolean, got %s", "feasible", v.Kind)
		}
		p.Feasible = v.Bool
	}

	if p.Reason, err = stringMember(obj, "reason"); err != nil {
		return nil, err
	}
	if p.SQL, err = stringMember(obj, "sql"); err != nil {
		return nil, err
	}
	if p.Tables, err = stringListMember(obj, "tables"); err != nil {
		return nil, err
	}
	if p.SuggestedInvestigations, err = stringListMember(obj, "suggestedInvestigations"); err != nil {
		return nil, err
	}

	if v, ok := obj.Get("viz"); ok && v.Kind != notation.KindNull {
		switch v.Kind {
		case notation.KindObject:
			panel, err := panelFromObject(v.Obj)
			if err != nil {
				return nil, err
			}
			p.Viz = []Panel{*panel}
		case notation.KindArray:
			for i, elem := range v.Elems {
				if elem.Kind != notation.KindObject {
					return nil, validationErrorf("viz element %d must be an object, got %s", i, elem.Kind)
				}
				panel, err := panelFromObject(elem.Obj)
				if err != nil {
					return nil, err
				}
				p.Viz = append(p.Viz, *panel)
			}
		default:
			return nil, validationErrorf("plan member %q must be an object or array, got %s", "viz", v.Kind)
		}
	}

	return p, nil
}

// PanelFromNode projects a single panel object.
func PanelFromNode(n *notation.Node) (*Panel, error) {
	if n == nil || n.Kind != notation.KindObject {
		return nil, validationErrorf("panel must be an object, got %s", kindName(n))
	}
	return panelFromObject(n.Obj)
}

func panelFromObject(obj *notation.Object) (*Panel, error) {
	p := &Panel{}

	typ, err := stringMember(obj, "type")
	if err != nil {
		return nil, err
	}
	p.Type = PanelType(typ)

	if p.Title, err = stringMember(obj, "title"); err != nil {
		return nil, err
	}
	if p.Description, err = stringMember(obj, "description"); err != nil {
		return nil, err
	}
	if p.SQL, err = stringMember(obj, "sql"); err != nil {
		return nil, err
	}
	if p.X, err = stringMember(obj, "x"); err != nil {
		return nil, err
	}
	if p.Y, err = stringMember(obj, "y"); err != nil {
		return nil, err
	}
	if p.Value, err = stringMember(obj, "value"); err != nil {
		return nil, err
	}
	if p.Columns, err = stringListMember(obj, "columns"); err != nil {
		return nil, err
	}

	return p, nil
}

// stringMember reads an optional string member. Missing or null yields "".
func stringMember(obj *notation.Object, key string) (string, error) {
	v, ok := obj.Get(key)
	if !ok || v.Kind == notation.KindNull {
		return "", nil
	}
	if v.Kind != notation.KindString {
		return "", validationErrorf("member %q must be a string, got %s", key, v.Kind)
	}
	return v.Str, nil
}

// stringListMember reads an optional array-of-strings member. A bare string
// is accepted as a one-element list.
func stringListMember(obj *notation.Object, key string) ([]string, error) {
	v, ok := obj.Get(key)
	if !ok || v.Kind == notation.KindNull {
		return nil, nil
	}
	if v.Kind == notation.KindString {
		return []string{v.Str}, nil
	}
	if v.Kind != notation.KindArray {
		return nil, validationErrorf("member %q must be an array of strings, got %s", key, v.Kind)
	}
	out := make([]string, 0, len(v.Elems))
	for i, elem := range v.Elems {
		if elem.Kind != notation.KindString {
			return nil, validationErrorf("member %q element %d must be a string, got %s", key, i, elem.Kind)
		}
		out = append(out, elem.Str)
	}
	return out, nil
}

func kindName(n *notation.Node) string {
	if n == nil {
		return "nothing"
	}
	return n.Kind.String()
}
