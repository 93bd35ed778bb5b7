package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dashql/pkg/notation"
)

func TestNotationContext(t *testing.T) {
	text := NotationContext(relationshipFixture())

	// The context must itself be a valid notation document.
	node, err := notation.Parse(text)
	require.NoError(t, err)
	require.Equal(t, notation.KindObject, node.Kind)
	assert.Equal(t, "schemas", node.Obj.Tag)

	tables, ok := node.Obj.Get("tables")
	require.True(t, ok)
	require.Equal(t, notation.KindArray, tables.Kind)
	assert.Len(t, tables.Elems, 3)

	// Sorted table order: customers, events, orders.
	first := tables.Elems[0]
	name, _ := first.Obj.Get("name")
	assert.Equal(t, "customers", name.Str)

	assert.Contains(t, text, "@table{")
	assert.Contains(t, text, "@col{")
	assert.Contains(t, text, "role:[")
	assert.Contains(t, text, "metricColumns:")

	rels, ok := node.Obj.Get("relationships")
	require.True(t, ok)
	require.Equal(t, notation.KindArray, rels.Kind)
	assert.NotEmpty(t, rels.Elems)
}

func TestPlanSchema(t *testing.T) {
	s := PlanSchema(relationshipFixture())
	require.Contains(t, s.Tables, "orders")
	assert.Contains(t, s.Tables["orders"], "customer_id")
	assert.True(t, s.HasTable("events"))
	assert.False(t, s.HasTable("shipments"))
}
