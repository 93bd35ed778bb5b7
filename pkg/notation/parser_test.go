package notation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMember(t *testing.T, n *Node, key string) *Node {
	t.Helper()
	require.Equal(t, KindObject, n.Kind)
	v, ok := n.Obj.Get(key)
	require.True(t, ok, "missing member %q", key)
	return v
}

func TestParseTaggedObject(t *testing.T) {
	n, err := Parse(`@plan{q:"Total revenue by region" feasible:true tables:[orders] sql:"SELECT region, SUM(total) FROM orders GROUP BY region"}`)
	require.NoError(t, err)
	require.Equal(t, KindObject, n.Kind)
	assert.Equal(t, "plan", n.Obj.Tag)
	assert.Equal(t, []string{"q", "feasible", "tables", "sql"}, n.Obj.Keys())

	q := mustMember(t, n, "q")
	assert.Equal(t, KindString, q.Kind)
	assert.Equal(t, "Total revenue by region", q.Str)

	feasible := mustMember(t, n, "feasible")
	assert.Equal(t, KindBool, feasible.Kind)
	assert.True(t, feasible.Bool)

	tables := mustMember(t, n, "tables")
	require.Equal(t, KindArray, tables.Kind)
	require.Len(t, tables.Elems, 1)
	assert.Equal(t, "orders", tables.Elems[0].Str)
}

func TestParseBareObject(t *testing.T) {
	n, err := Parse(`{i:42 neg:-7 f:3.5 s:hello b:false nothing:none}`)
	require.NoError(t, err)
	require.Equal(t, KindObject, n.Kind)
	assert.Equal(t, "", n.Obj.Tag)

	assert.Equal(t, int64(42), mustMember(t, n, "i").Int)
	assert.Equal(t, int64(-7), mustMember(t, n, "neg").Int)
	assert.Equal(t, 3.5, mustMember(t, n, "f").Float)
	assert.Equal(t, KindFloat, mustMember(t, n, "f").Kind)
	assert.Equal(t, "hello", mustMember(t, n, "s").Str)
	assert.Equal(t, KindBool, mustMember(t, n, "b").Kind)
	assert.False(t, mustMember(t, n, "b").Bool)
	assert.Equal(t, KindNull, mustMember(t, n, "nothing").Kind)
}

func TestParseScalarDocuments(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"42", KindInt},
		{"-3.25", KindFloat},
		{"true", KindBool},
		{"false", KindBool},
		{"null", KindNull},
		{"none", KindNull},
		{"hello", KindString},
		{`"hello world"`, KindString},
	}
	for _, tt := range tests {
		n, err := Parse(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.kind, n.Kind, "input %q", tt.in)
	}

	n, err := Parse(`"hello world"`)
	require.NoError(t, err)
	assert.Equal(t, "hello world", n.Str)
}

func TestParseNestedStructures(t *testing.T) {
	n, err := Parse(`@plan{viz:[@panel{type:bar title:"By region"},@panel{type:table}] meta:{depth:2}}`)
	require.NoError(t, err)

	viz := mustMember(t, n, "viz")
	require.Equal(t, KindArray, viz.Kind)
	require.Len(t, viz.Elems, 2)

	first := viz.Elems[0]
	require.Equal(t, KindObject, first.Kind)
	assert.Equal(t, "panel", first.Obj.Tag)
	assert.Equal(t, "By region", mustMember(t, first, "title").Str)

	second := viz.Elems[1]
	assert.Equal(t, "table", mustMember(t, second, "type").Str)

	meta := mustMember(t, n, "meta")
	require.Equal(t, KindObject, meta.Kind)
	assert.Equal(t, "", meta.Obj.Tag)
	assert.Equal(t, int64(2), mustMember(t, meta, "depth").Int)
}

func TestParseSkipsGarbageBetweenMembers(t *testing.T) {
	n, err := Parse(`@plan{q:"ok" ;;## feasible:true}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "feasible"}, n.Obj.Keys())
	assert.True(t, mustMember(t, n, "feasible").Bool)
}

func TestParseDuplicateKeyKeepsPositionLastValue(t *testing.T) {
	n, err := Parse(`{a:1 b:2 a:3}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Obj.Keys())
	assert.Equal(t, int64(3), mustMember(t, n, "a").Int)
}

func TestParseQuotedStrings(t *testing.T) {
	n, err := Parse(`{msg:"she said \"hi\"" path:"a\\b" ratio:"8:1" apos:'it\'s fine'}`)
	require.NoError(t, err)
	assert.Equal(t, `she said "hi"`, mustMember(t, n, "msg").Str)
	assert.Equal(t, `a\b`, mustMember(t, n, "path").Str)
	assert.Equal(t, "8:1", mustMember(t, n, "ratio").Str)
	assert.Equal(t, "it's fine", mustMember(t, n, "apos").Str)
}

func TestParseUnknownEscapeKeptVerbatim(t *testing.T) {
	n, err := Parse(`{re:"\d+"}`)
	require.NoError(t, err)
	assert.Equal(t, `\d+`, mustMember(t, n, "re").Str)
}

func TestParseEmptyObject(t *testing.T) {
	n, err := Parse(`@plan{}`)
	require.NoError(t, err)
	require.Equal(t, KindObject, n.Kind)
	assert.Equal(t, "plan", n.Obj.Tag)
	assert.Zero(t, n.Obj.Len())
}

func TestParseTrailingTextBecomesString(t *testing.T) {
	n, err := Parse(`{a:1} trailing`)
	require.NoError(t, err)
	assert.Equal(t, KindString, n.Kind)
	assert.Equal(t, `{a:1} trailing`, n.Str)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty document"},
		{"whitespace only", "   \n\t ", "empty document"},
		{"unterminated object", `@plan{q:"x"`, "unmatched brace"},
		{"unterminated bare object", `{a:1`, "unmatched brace"},
		{"unterminated array", `{a:[1,2}`, "unmatched bracket"},
		{"unterminated string document", `"abc`, "unterminated string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse(`{a:[1,2}`)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Pos.Line)
	assert.Equal(t, 4, perr.Pos.Column)
	assert.Equal(t, 3, perr.Pos.Offset)
	assert.Contains(t, perr.Error(), "line 1, column 4")
}

func TestParseBracesInsideQuotesIgnored(t *testing.T) {
	n, err := Parse(`{sql:"SELECT '{' FROM t" note:"done"}`)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '{' FROM t", mustMember(t, n, "sql").Str)
	assert.Equal(t, "done", mustMember(t, n, "note").Str)
}

func TestParseCommasOptional(t *testing.T) {
	withCommas, err := Parse(`{a:1, b:2, c:[x, y]}`)
	require.NoError(t, err)
	withoutCommas, err := Parse(`{a:1 b:2 c:[x y]}`)
	require.NoError(t, err)
	assert.True(t, Equal(withCommas, withoutCommas))
}
