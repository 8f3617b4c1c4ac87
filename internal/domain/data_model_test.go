package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Numeric
		want string
	}{
		{name: "integer", in: "3", want: `3`},
		{name: "keeps typed precision", in: "3.0", want: `3.0`},
		{name: "surrounding space", in: " 12 ", want: `12`},
		{name: "leading plus is normalised", in: "+4", want: `4`},
		{name: "non numeric passes through as text", in: "abc", want: `"abc"`},
		{name: "empty passes through as text", in: "", want: `""`},
		{name: "infinity is text", in: "inf", want: `"inf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestNumericUnmarshal(t *testing.T) {
	var n Numeric
	require.NoError(t, json.Unmarshal([]byte(`4.5`), &n))
	assert.Equal(t, Numeric("4.5"), n)

	require.NoError(t, json.Unmarshal([]byte(`"seven"`), &n))
	assert.Equal(t, Numeric("seven"), n)

	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Equal(t, Numeric(""), n)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &n))
}

func TestNumericFloat(t *testing.T) {
	f, ok := Numeric(" 12 ").Float()
	assert.True(t, ok)
	assert.Equal(t, 12.0, f)

	f, ok = Numeric("x").Float()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(f))

	for _, text := range []string{"inf", "-Infinity", "NaN", "1e999"} {
		f, ok = Numeric(text).Float()
		assert.False(t, ok, text)
		assert.True(t, math.IsNaN(f), text)
	}

	assert.Equal(t, Numeric("0.5"), Num(0.5))
}

func TestExpressionJSON(t *testing.T) {
	raw, err := json.Marshal(RawExpression("2x + 3y"))
	require.NoError(t, err)
	assert.Equal(t, `"2x + 3y"`, string(raw))

	structured, err := json.Marshal(StructuredExpression(map[string]float64{"x": 2, "y": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2,"y":3}`, string(structured))

	unset, err := json.Marshal(Expression{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(unset))

	var e Expression
	require.NoError(t, json.Unmarshal([]byte(`"x+y"`), &e))
	assert.Equal(t, ExpressionRaw, e.Kind())
	s, ok := e.Raw()
	assert.True(t, ok)
	assert.Equal(t, "x+y", s)

	require.NoError(t, json.Unmarshal([]byte(`{"x":1.5}`), &e))
	assert.Equal(t, ExpressionStructured, e.Kind())
	terms, ok := e.Terms()
	assert.True(t, ok)
	assert.Equal(t, map[string]float64{"x": 1.5}, terms)

	assert.Error(t, json.Unmarshal([]byte(`5`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"x":"a"}`), &e))
}

func TestStructuredExpressionDoesNotAlias(t *testing.T) {
	in := map[string]float64{"x": 1}
	e := StructuredExpression(in)
	in["x"] = 9

	terms, _ := e.Terms()
	assert.Equal(t, 1.0, terms["x"])

	terms["x"] = 7
	again, _ := e.Terms()
	assert.Equal(t, 1.0, again["x"])
}

func TestParseExpression(t *testing.T) {
	e, err := ParseExpression("2x + y")
	require.NoError(t, err)
	assert.Equal(t, ExpressionRaw, e.Kind())

	e, err = ParseExpression(` {"x": 2, "y": 1}`)
	require.NoError(t, err)
	assert.Equal(t, ExpressionStructured, e.Kind())

	_, err = ParseExpression(`{"x": "two"}`)
	assert.ErrorContains(t, err, "ambiguous")

	_, err = ParseExpression(`{x+y`)
	assert.Error(t, err)

	// JSON scalars are not objects, so they stay raw text.
	e, err = ParseExpression(`5`)
	require.NoError(t, err)
	assert.Equal(t, ExpressionRaw, e.Kind())
}
