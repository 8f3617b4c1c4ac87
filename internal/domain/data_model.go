package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric is a number as the user typed it. Text that parses as a finite
// number travels as a JSON number, anything else as a JSON string.
type Numeric string

func Num(f float64) Numeric {
	return Numeric(strconv.FormatFloat(f, 'f', -1, 64))
}

// Float reports the numeric value, or NaN and false when the text is not a
// finite number. Spellings such as "inf" and "NaN" count as not a number.
func (n Numeric) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN(), false
	}
	return f, true
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	raw := strings.TrimSpace(string(n))
	f, ok := n.Float()
	if !ok {
		return json.Marshal(string(n))
	}
	if json.Valid([]byte(raw)) {
		return []byte(raw), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric: %w", err)
	}
	*n = Numeric(num.String())
	return nil
}

type ExpressionKind int

const (
	ExpressionUnset ExpressionKind = iota
	ExpressionRaw
	ExpressionStructured
)

func (k ExpressionKind) String() string {
	switch k {
	case ExpressionRaw:
		return "raw"
	case ExpressionStructured:
		return "structured"
	default:
		return "unset"
	}
}

// Expression is the left-hand side of a constraint: either the raw text the
// user typed or coefficients already keyed by variable name.
type Expression struct {
	kind  ExpressionKind
	raw   string
	terms map[string]float64
}

func RawExpression(s string) Expression {
	return Expression{kind: ExpressionRaw, raw: s}
}

func StructuredExpression(terms map[string]float64) Expression {
	cp := make(map[string]float64, len(terms))
	for k, v := range terms {
		cp[k] = v
	}
	return Expression{kind: ExpressionStructured, terms: cp}
}

func (e Expression) Kind() ExpressionKind { return e.kind }

func (e Expression) Raw() (string, bool) {
	return e.raw, e.kind == ExpressionRaw
}

// Terms returns a copy of the structured coefficients.
func (e Expression) Terms() (map[string]float64, bool) {
	if e.kind != ExpressionStructured {
		return nil, false
	}
	cp := make(map[string]float64, len(e.terms))
	for k, v := range e.terms {
		cp[k] = v
	}
	return cp, true
}

func (e Expression) String() string {
	switch e.kind {
	case ExpressionRaw:
		return e.raw
	case ExpressionStructured:
		b, _ := json.Marshal(e.terms)
		return string(b)
	default:
		return ""
	}
}

func (e Expression) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case ExpressionRaw:
		return json.Marshal(e.raw)
	case ExpressionStructured:
		return json.Marshal(e.terms)
	default:
		return []byte("null"), nil
	}
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = Expression{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = RawExpression(s)
	case '{':
		var terms map[string]float64
		if err := json.Unmarshal(data, &terms); err != nil {
			return fmt.Errorf("structured expression: %w", err)
		}
		*e = StructuredExpression(terms)
	default:
		return fmt.Errorf("expression must be a string or an object, got %s", data)
	}
	return nil
}

// ParseExpression tags form text. Text that opens with '{' must be an object of
// numbers; anything else is a raw expression.
func ParseExpression(text string) (Expression, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return RawExpression(text), nil
	}

	var terms map[string]float64
	if err := json.Unmarshal([]byte(trimmed), &terms); err != nil {
		return Expression{}, fmt.Errorf("ambiguous left-hand side %q: not an object of numeric coefficients", text)
	}
	return StructuredExpression(terms), nil
}
