// Package plot derives the 2D line segments used to draw constraint
// boundaries. Only the variables x and y are projected; the projector is
// two-dimensional on purpose and does not grow to other variable names.
package plot

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/felixbrock/lpviz/internal/domain"
)

type Mode int

const (
	// Lenient reproduces the numeric fallback behaviour and flags every
	// deviation on the returned segment.
	Lenient Mode = iota
	// Strict rejects the first deviation with a ConstraintParseError.
	Strict
)

type InterceptPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p InterceptPoint) Finite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) && !math.IsInf(p.Y, 0) && !math.IsNaN(p.Y)
}

// Segment is the two-point approximation of one constraint boundary:
// the y-axis intercept followed by the x-axis intercept.
type Segment struct {
	Points [2]InterceptPoint
	Issues []ConstraintParseError
}

func (s Segment) YIntercept() InterceptPoint { return s.Points[0] }
func (s Segment) XIntercept() InterceptPoint { return s.Points[1] }

func (s Segment) Degenerate() bool {
	return !s.Points[0].Finite() || !s.Points[1].Finite()
}

func (s Segment) Flagged() bool { return len(s.Issues) > 0 }

type ConstraintParseError struct {
	Constraint int
	LHS        string
	Term       string
	Reason     string
}

func (e ConstraintParseError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("constraint %d (%q): term %q: %s", e.Constraint+1, e.LHS, e.Term, e.Reason)
	}
	return fmt.Sprintf("constraint %d (%q): %s", e.Constraint+1, e.LHS, e.Reason)
}

type Projector struct {
	Mode Mode
}

func NewProjector(mode Mode) Projector {
	return Projector{Mode: mode}
}

// Project computes the axis intercepts of constraint c. index is the
// constraint's position in the form and only feeds error messages.
func (p Projector) Project(index int, c domain.Constraint) (Segment, error) {
	var (
		coefX, coefY float64
		issues       []ConstraintParseError
	)

	flag := func(term, reason string) {
		issues = append(issues, ConstraintParseError{Constraint: index, LHS: c.LHS.String(), Term: term, Reason: reason})
	}

	switch c.LHS.Kind() {
	case domain.ExpressionRaw:
		raw, _ := c.LHS.Raw()
		coefX, coefY = rawCoefficients(raw, flag)
	case domain.ExpressionStructured:
		terms, _ := c.LHS.Terms()
		coefX, coefY = structuredCoefficients(terms, flag)
	default:
		return Segment{}, ConstraintParseError{Constraint: index, Reason: "left-hand side is not a tagged expression"}
	}

	rhs, ok := c.RHS.Float()
	if !ok {
		flag("", fmt.Sprintf("right-hand side %q is not a number", string(c.RHS)))
	}

	seg := Segment{Points: [2]InterceptPoint{
		{X: 0, Y: rhs / coefY},
		{X: rhs / coefX, Y: 0},
	}}
	if coefX == 0 {
		flag("", "no x coefficient, x intercept is not finite")
	}
	if coefY == 0 {
		flag("", "no y coefficient, y intercept is not finite")
	}

	if p.Mode == Strict && len(issues) > 0 {
		return Segment{}, issues[0]
	}
	seg.Issues = issues
	return seg, nil
}

func rawCoefficients(raw string, flag func(term, reason string)) (coefX, coefY float64) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var seenX, seenY bool
	for _, term := range strings.Split(normalized, "+") {
		hasX := strings.Contains(term, "x")
		hasY := strings.Contains(term, "y")

		switch {
		case hasX:
			if hasY {
				flag(term, "term mentions both x and y")
			}
			if seenX {
				flag(term, "x appears more than once, last term wins")
			}
			seenX = true
			coefX = coefficient(term, "x", flag)
		case hasY:
			if seenY {
				flag(term, "y appears more than once, last term wins")
			}
			seenY = true
			coefY = coefficient(term, "y", flag)
		case term == "":
			flag(term, "empty term")
		default:
			flag(term, "term mentions neither x nor y")
		}
	}
	return coefX, coefY
}

// coefficient removes the first occurrence of the variable letter and reads
// what is left. A bare letter, or text that is not a number, counts as 1.
func coefficient(term, letter string, flag func(term, reason string)) float64 {
	text := strings.TrimSpace(strings.Replace(term, letter, "", 1))
	text = strings.TrimSuffix(text, "*")
	if text == "" {
		return 1
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		flag(term, fmt.Sprintf("coefficient %q is not a number, using 1", text))
		return 1
	}
	return f
}

func structuredCoefficients(terms map[string]float64, flag func(term, reason string)) (coefX, coefY float64) {
	names := make([]string, 0, len(terms))
	for name := range terms {
		if name != "x" && name != "y" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		flag(name, "only x and y are plotted")
	}
	return terms["x"], terms["y"]
}
