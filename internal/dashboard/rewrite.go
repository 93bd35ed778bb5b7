package dashboard

import (
	"regexp"
	"strings"
)

// timeKeywords classify a column name as time-like by substring match.
var timeKeywords = []string{"date", "time", "created", "updated", "at", "timestamp", "datetime", "when"}

var firstSelectColumnRE = regexp.MustCompile(`(?i)SELECT\s+(\w+)`)

var selectListEndRE = regexp.MustCompile(`(?i)\bFROM\b`)

func isTimeLike(column string) bool {
	lower := strings.ToLower(column)
	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// xAxisColumn resolves a bar chart's x-axis column: the explicit x binding
// when the spec has one, otherwise the first bare identifier in the SQL's
// select list.
func xAxisColumn(x, sql string) string {
	if x != "" {
		return x
	}
	if m := firstSelectColumnRE.FindStringSubmatch(sql); m != nil {
		return m[1]
	}
	return ""
}

// rewriteBarSQL prepares a bar chart query for a categorical axis. A
// time-like x column is formatted to a date string, anything else is cast
// to text; either way only the first unwrapped occurrence after SELECT (or
// a preceding comma) is touched. This is a textual rewrite, not an AST one:
// it handles the column as a bare identifier in the select list and leaves
// expressions and later occurrences alone.
func rewriteBarSQL(sql, column string) string {
	if sql == "" || column == "" {
		return sql
	}

	lower := strings.ToLower(sql)
	colLower := strings.ToLower(column)
	if strings.Contains(lower, "strftime("+colLower) || strings.Contains(lower, "cast("+colLower) {
		return sql
	}

	if isTimeLike(column) {
		return wrapFirst(sql, column, func(col string) string {
			return "strftime(" + col + ", '%Y-%m-%d') AS " + col
		})
	}
	return wrapFirst(sql, column, func(col string) string {
		return "CAST(" + col + " AS VARCHAR) AS " + col
	})
}

// wrapFirst replaces the first select-list occurrence of column with
// wrap(column), preserving the casing the query used. The search stops at
// the first FROM so comma-preceded occurrences in GROUP BY or ORDER BY
// clauses are never touched.
func wrapFirst(sql, column string, wrap func(string) string) string {
	span := len(sql)
	if m := selectListEndRE.FindStringIndex(sql); m != nil {
		span = m[0]
	}
	re := regexp.MustCompile(`(?i)(SELECT\s+|,\s*)(` + regexp.QuoteMeta(column) + `)\b`)
	loc := re.FindStringSubmatchIndex(sql[:span])
	if loc == nil {
		return sql
	}
	// loc[4]:loc[5] is the column token itself.
	return sql[:loc[4]] + wrap(sql[loc[4]:loc[5]]) + sql[loc[5]:]
}
