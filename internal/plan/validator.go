package plan

import (
	"regexp"
	"sort"
	"strings"
)

// Schema is the view of the warehouse the validator checks plans against:
// table names mapped to their column names.
type Schema struct {
	Tables map[string][]string
}

// HasTable reports whether the schema contains the named table.
func (s Schema) HasTable(name string) bool {
	_, ok := s.Tables[name]
	return ok
}

// TableNames returns the known table names sorted for stable error text.
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var writeKeywordRE = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|REPLACE|MERGE)\b`)

var (
	singleQuotedRE = regexp.MustCompile(`'[^']*'`)
	doubleQuotedRE = regexp.MustCompile(`"[^"]*"`)
	identifierRE   = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
)

// sqlStopwords are identifiers that appear in queries without being column
// references: keywords, aggregate functions, and date-part names.
var sqlStopwords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "group": {}, "by": {}, "order": {}, "having": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "null": {}, "as": {}, "on": {}, "join": {},
	"left": {}, "right": {}, "inner": {}, "outer": {}, "full": {}, "cross": {}, "limit": {},
	"offset": {}, "asc": {}, "desc": {}, "distinct": {}, "count": {}, "sum": {}, "avg": {},
	"min": {}, "max": {}, "case": {}, "when": {}, "then": {}, "else": {}, "end": {}, "like": {},
	"between": {}, "exists": {}, "union": {}, "all": {}, "any": {}, "true": {}, "false": {},
	"coalesce": {}, "cast": {}, "extract": {}, "date": {}, "time": {}, "timestamp": {},
	"year": {}, "month": {}, "day": {}, "hour": {}, "minute": {}, "second": {}, "interval": {},
}

// Validate checks a plan against the schema and the read-only policy. It
// returns a *ValidationError describing the first problem found, or nil.
// An infeasible plan is valid by definition; its reason is the answer.
func Validate(p *Plan, schema Schema) error {
	if !p.Feasible {
		return nil
	}

	for _, table := range p.Tables {
		if !schema.HasTable(table) {
			return validationErrorf("table '%s' not found. Available tables: %s",
				table, strings.Join(schema.TableNames(), ", "))
		}
	}

	if p.SQL != "" {
		if err := CheckReadOnly(p.SQL); err != nil {
			return err
		}
		if err := checkColumnReferences(p.SQL, schema); err != nil {
			return err
		}
	}

	for i := range p.Viz {
		panel := &p.Viz[i]
		if EffectiveSQL(p, panel) == "" {
			return validationErrorf("panel '%s' has no SQL and the plan has no primary SQL", panel.Title)
		}
		if panel.SQL != "" {
			if err := CheckReadOnly(panel.SQL); err != nil {
				return err
			}
			if err := checkColumnReferences(panel.SQL, schema); err != nil {
				return err
			}
		}
		if err := validatePanel(panel); err != nil {
			return err
		}
	}

	return nil
}

// CheckReadOnly rejects SQL containing a write keyword. String literals and
// quoted identifiers are stripped first so data mentioning "update" or
// "delete" does not trip the scan.
func CheckReadOnly(sql string) error {
	stripped := stripQuoted(sql)
	if kw := writeKeywordRE.FindString(strings.ToUpper(stripped)); kw != "" {
		return validationErrorf("SQL contains forbidden keyword: %s. Only SELECT queries are allowed.", kw)
	}
	return nil
}

// checkColumnReferences is a lenient sanity check, not a SQL parser: it
// collects bare identifiers outside quotes and complains only when more
// than three of them match neither a known column, a table name, the
// stopword list, nor a short alias.
func checkColumnReferences(sql string, schema Schema) error {
	known := make(map[string]struct{})
	tables := make(map[string]struct{})
	for table, cols := range schema.Tables {
		tables[strings.ToLower(table)] = struct{}{}
		for _, col := range cols {
			known[strings.ToLower(col)] = struct{}{}
		}
	}

	var unknown []string
	for _, word := range identifierRE.FindAllString(stripQuoted(sql), -1) {
		lower := strings.ToLower(word)
		if _, ok := sqlStopwords[lower]; ok {
			continue
		}
		if _, ok := known[lower]; ok {
			continue
		}
		if _, ok := tables[lower]; ok {
			continue
		}
		if len(word) <= 2 {
			continue
		}
		unknown = append(unknown, word)
	}

	if len(unknown) > 3 {
		if len(unknown) > 5 {
			unknown = unknown[:5]
		}
		return validationErrorf("SQL may reference unknown columns: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func validatePanel(panel *Panel) error {
	typ := PanelType(strings.ToLower(string(panel.Type)))
	if typ == "" {
		// Untyped panels are allowed; the generator renders them as tables.
		return nil
	}
	if !typ.Valid() {
		names := make([]string, len(panelTypes))
		for i, pt := range panelTypes {
			names[i] = string(pt)
		}
		return validationErrorf("invalid visualization type: %s. Valid types: %s",
			typ, strings.Join(names, ", "))
	}
	switch typ {
	case PanelBar, PanelLine, PanelPie:
		if panel.X == "" && panel.Y == "" {
			return validationErrorf("%s chart requires x and/or y axis column specifications", typ)
		}
	}
	return nil
}

func stripQuoted(sql string) string {
	sql = singleQuotedRE.ReplaceAllString(sql, "")
	return doubleQuotedRE.ReplaceAllString(sql, "")
}
