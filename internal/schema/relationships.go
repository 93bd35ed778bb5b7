package schema

import (
	"fmt"
	"sort"
	"strings"
)

// DetectRelationships infers links between tables from naming conventions:
// a "<name>_id" column pointing at a table called "<name>" or "<name>s", and
// the polymorphic entity_id/entity_type pair whose type values name the
// target tables. Results are ordered by source table for stable output.
func DetectRelationships(profiles map[string]*TableProfile) []Relationship {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var rels []Relationship

	for _, source := range names {
		for _, col := range profiles[source].Columns {
			if !strings.HasSuffix(col.Name, "_id") || col.Name == "id" {
				continue
			}
			prefix := strings.TrimSuffix(col.Name, "_id")
			for _, target := range []string{prefix, prefix + "s"} {
				if _, ok := profiles[target]; ok {
					rels = append(rels, Relationship{
						SourceTable:  source,
						SourceColumn: col.Name,
						TargetTable:  target,
						TargetColumn: "id",
						Type:         "fk",
						Confidence:   "high",
					})
				}
			}
		}
	}

	for _, source := range names {
		profile := profiles[source]
		idCol := profile.GetColumn("entity_id")
		typeCol := profile.GetColumn("entity_type")
		if idCol == nil || typeCol == nil || len(typeCol.SampleValues) == 0 {
			continue
		}

		seen := make(map[string]struct{})
		for _, v := range typeCol.SampleValues {
			val, ok := v.(string)
			if !ok {
				continue
			}
			if _, dup := seen[val]; dup {
				continue
			}
			seen[val] = struct{}{}

			for _, target := range []string{val, val + "s"} {
				if _, ok := profiles[target]; ok {
					rels = append(rels, Relationship{
						SourceTable:  source,
						SourceColumn: "entity_id",
						TargetTable:  target,
						TargetColumn: "id",
						Type:         "polymorphic",
						Confidence:   fmt.Sprintf("high (via %s='%s')", typeCol.Name, val),
					})
				}
			}
		}
	}

	return rels
}
