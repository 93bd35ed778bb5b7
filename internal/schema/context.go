package schema

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/dashql/internal/plan"
	"github.com/leapstack-labs/dashql/pkg/notation"
)

// NotationContext renders the profiled schema as a notation document for
// the compiler's system prompt: tables with columns, roles, and sample
// values, followed by detected relationships. Tables are emitted in sorted
// order so the prompt is stable across runs.
func NotationContext(profiles map[string]*TableProfile) string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	root := notation.NewObject("schemas")

	var tables []*notation.Node
	for _, name := range names {
		tables = append(tables, tableNode(profiles[name]))
	}
	root.Set("tables", &notation.Node{Kind: notation.KindArray, Elems: tables})

	if rels := DetectRelationships(profiles); len(rels) > 0 {
		var relNodes []*notation.Node
		for _, rel := range rels {
			obj := notation.NewObject("rel")
			obj.Set("from", notation.String(rel.SourceTable+"."+rel.SourceColumn))
			obj.Set("to", notation.String(rel.TargetTable+"."+rel.TargetColumn))
			obj.Set("type", notation.String(rel.Type))
			relNodes = append(relNodes, notation.ObjectNode(obj))
		}
		root.Set("relationships", &notation.Node{Kind: notation.KindArray, Elems: relNodes})
	}

	return notation.Serialize(notation.ObjectNode(root), false)
}

func tableNode(profile *TableProfile) *notation.Node {
	obj := notation.NewObject("table")
	obj.Set("name", notation.String(profile.Name))
	obj.Set("rows", notation.Int(profile.RowCount))

	var cols []*notation.Node
	for i := range profile.Columns {
		cols = append(cols, columnNode(&profile.Columns[i]))
	}
	obj.Set("columns", &notation.Node{Kind: notation.KindArray, Elems: cols})

	setStringList(obj, "timeColumns", profile.TimestampColumns())
	setStringList(obj, "metricColumns", profile.MetricColumns())
	setStringList(obj, "categoryColumns", profile.CategoricalColumns())

	return notation.ObjectNode(obj)
}

func columnNode(col *ColumnProfile) *notation.Node {
	obj := notation.NewObject("col")
	obj.Set("name", notation.String(col.Name))
	obj.Set("type", notation.String(col.Type))

	var roles []*notation.Node
	for _, role := range col.Roles() {
		roles = append(roles, notation.String(role))
	}
	if len(roles) > 0 {
		obj.Set("role", &notation.Node{Kind: notation.KindArray, Elems: roles})
	}

	var samples []*notation.Node
	for i, v := range col.SampleValues {
		if i == 3 {
			break
		}
		samples = append(samples, valueNode(v))
	}
	obj.Set("samples", &notation.Node{Kind: notation.KindArray, Elems: samples})

	return notation.ObjectNode(obj)
}

func valueNode(v any) *notation.Node {
	switch val := v.(type) {
	case nil:
		return notation.Null()
	case bool:
		return notation.Bool(val)
	case int:
		return notation.Int(int64(val))
	case int32:
		return notation.Int(int64(val))
	case int64:
		return notation.Int(val)
	case float32:
		return notation.Float(float64(val))
	case float64:
		return notation.Float(val)
	case string:
		return notation.String(val)
	default:
		return notation.String(fmt.Sprintf("%v", val))
	}
}

func setStringList(obj *notation.Object, key string, values []string) {
	if len(values) == 0 {
		return
	}
	var nodes []*notation.Node
	for _, v := range values {
		nodes = append(nodes, notation.String(v))
	}
	obj.Set(key, &notation.Node{Kind: notation.KindArray, Elems: nodes})
}

// PlanSchema projects the profiles into the validator's table/column view.
func PlanSchema(profiles map[string]*TableProfile) plan.Schema {
	tables := make(map[string][]string, len(profiles))
	for name, profile := range profiles {
		cols := make([]string, 0, len(profile.Columns))
		for i := range profile.Columns {
			cols = append(cols, profile.Columns[i].Name)
		}
		tables[name] = cols
	}
	return plan.Schema{Tables: tables}
}
