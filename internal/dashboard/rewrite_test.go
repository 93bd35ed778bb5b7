package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteTimeColumnWrappedOnce(t *testing.T) {
	sql := "SELECT ship_date, COUNT(*) FROM shipments GROUP BY ship_date"
	got := rewriteBarSQL(sql, "ship_date")

	want := "SELECT strftime(ship_date, '%Y-%m-%d') AS ship_date, COUNT(*) FROM shipments GROUP BY ship_date"
	assert.Equal(t, want, got)
	assert.Equal(t, 1, strings.Count(got, "strftime("))
	// The GROUP BY occurrence stays bare.
	assert.True(t, strings.HasSuffix(got, "GROUP BY ship_date"))
}

func TestRewriteNonTimeColumnGetsCast(t *testing.T) {
	sql := "SELECT region, SUM(total) FROM orders GROUP BY region"
	got := rewriteBarSQL(sql, "region")
	assert.Equal(t, "SELECT CAST(region AS VARCHAR) AS region, SUM(total) FROM orders GROUP BY region", got)
}

func TestRewriteColumnAfterComma(t *testing.T) {
	sql := "SELECT COUNT(*), region FROM orders GROUP BY region"
	got := rewriteBarSQL(sql, "region")
	assert.Equal(t, "SELECT COUNT(*), CAST(region AS VARCHAR) AS region FROM orders GROUP BY region", got)
}

func TestRewriteAlreadyWrappedLeftAlone(t *testing.T) {
	wrapped := "SELECT strftime(ship_date, '%Y-%m-%d') AS ship_date FROM shipments"
	assert.Equal(t, wrapped, rewriteBarSQL(wrapped, "ship_date"))

	cast := "SELECT CAST(region AS VARCHAR) AS region FROM orders"
	assert.Equal(t, cast, rewriteBarSQL(cast, "region"))
}

func TestRewritePreservesCasing(t *testing.T) {
	got := rewriteBarSQL("select Ship_Date from shipments", "ship_date")
	assert.Contains(t, got, "strftime(Ship_Date, '%Y-%m-%d') AS Ship_Date")
}

func TestRewriteNoopCases(t *testing.T) {
	assert.Equal(t, "", rewriteBarSQL("", "region"))
	assert.Equal(t, "SELECT 1", rewriteBarSQL("SELECT 1", ""))
	// Column not in the select list as a bare identifier.
	sql := "SELECT UPPER(region) FROM orders"
	assert.Equal(t, sql, rewriteBarSQL(sql, "region"))
}

func TestRewriteIgnoresColumnOutsideSelectList(t *testing.T) {
	// ship_date only appears after FROM, comma-preceded in GROUP BY.
	sql := "SELECT COUNT(*) FROM shipments GROUP BY region, ship_date"
	assert.Equal(t, sql, rewriteBarSQL(sql, "ship_date"))

	sql = "SELECT COUNT(*) FROM orders ORDER BY total, region"
	assert.Equal(t, sql, rewriteBarSQL(sql, "region"))
}

func TestIsTimeLike(t *testing.T) {
	assert.True(t, isTimeLike("ship_date"))
	assert.True(t, isTimeLike("created_at"))
	assert.True(t, isTimeLike("WHEN_SEEN"))
	assert.False(t, isTimeLike("region"))
	assert.False(t, isTimeLike("origin"))
}

func TestXAxisColumn(t *testing.T) {
	assert.Equal(t, "origin", xAxisColumn("origin", "SELECT region FROM t"))
	assert.Equal(t, "region", xAxisColumn("", "SELECT region, total FROM t"))
	assert.Equal(t, "", xAxisColumn("", "WITH x AS (...)"))
}
