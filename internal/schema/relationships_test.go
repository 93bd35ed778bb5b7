package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relationshipFixture() map[string]*TableProfile {
	return map[string]*TableProfile{
		"orders": {
			Name:     "orders",
			RowCount: 100,
			Columns: []ColumnProfile{
				{Name: "id", Type: "VARCHAR", IsEntityID: true},
				{Name: "customer_id", Type: "VARCHAR", IsEntityID: true},
				{Name: "total", Type: "DOUBLE", IsMetric: true},
			},
		},
		"customers": {
			Name:     "customers",
			RowCount: 40,
			Columns: []ColumnProfile{
				{Name: "id", Type: "VARCHAR", IsEntityID: true},
				{Name: "segment", Type: "VARCHAR", IsCategorical: true},
			},
		},
		"events": {
			Name:     "events",
			RowCount: 500,
			Columns: []ColumnProfile{
				{Name: "id", Type: "VARCHAR", IsEntityID: true},
				{Name: "entity_id", Type: "VARCHAR", IsEntityID: true},
				{Name: "entity_type", Type: "VARCHAR", IsCategorical: true,
					SampleValues: []any{"order", "customer", "order"}},
				{Name: "occurred_at", Type: "TIMESTAMP", IsTimestamp: true},
			},
		},
	}
}

func TestDetectForeignKeys(t *testing.T) {
	rels := DetectRelationships(relationshipFixture())

	var fks []Relationship
	for _, r := range rels {
		if r.Type == "fk" {
			fks = append(fks, r)
		}
	}
	require.Len(t, fks, 1)
	assert.Equal(t, "orders", fks[0].SourceTable)
	assert.Equal(t, "customer_id", fks[0].SourceColumn)
	assert.Equal(t, "customers", fks[0].TargetTable)
	assert.Equal(t, "id", fks[0].TargetColumn)
}

func TestDetectPolymorphicLinks(t *testing.T) {
	rels := DetectRelationships(relationshipFixture())

	var poly []Relationship
	for _, r := range rels {
		if r.Type == "polymorphic" {
			poly = append(poly, r)
		}
	}
	// "order" -> orders, "customer" -> customers; the duplicate sample is
	// not reported twice.
	require.Len(t, poly, 2)
	targets := []string{poly[0].TargetTable, poly[1].TargetTable}
	assert.ElementsMatch(t, []string{"orders", "customers"}, targets)
	for _, r := range poly {
		assert.Equal(t, "events", r.SourceTable)
		assert.Equal(t, "entity_id", r.SourceColumn)
		assert.Contains(t, r.Confidence, "entity_type=")
	}
}

func TestDetectRelationshipsIgnoresPlainID(t *testing.T) {
	profiles := map[string]*TableProfile{
		"orders": {Name: "orders", Columns: []ColumnProfile{{Name: "id", Type: "VARCHAR"}}},
	}
	assert.Empty(t, DetectRelationships(profiles))
}
