// Package form holds the editable linear-programming form. A State is a
// value: every edit returns a new State and leaves the receiver untouched.
package form

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/felixbrock/lpviz/internal/domain"
)

type VariableRow struct {
	Name string
	Coef string
}

type ConstraintRow struct {
	LHS      string
	Operator string
	RHS      string
}

type State struct {
	Variables         []VariableRow
	Constraints       []ConstraintRow
	ObjectiveType     domain.ObjectiveType
	ObjectiveFunction string
}

func newVariable() VariableRow { return VariableRow{Name: "", Coef: "0"} }

func newConstraint() ConstraintRow {
	return ConstraintRow{LHS: "", Operator: string(domain.LessOrEqual), RHS: "0"}
}

// Initial is the form a new visitor sees: one empty variable, one empty
// constraint, maximizing.
func Initial() State {
	return State{
		Variables:     []VariableRow{newVariable()},
		Constraints:   []ConstraintRow{newConstraint()},
		ObjectiveType: domain.Maximize,
	}
}

func (s State) clone() State {
	out := s
	out.Variables = append([]VariableRow(nil), s.Variables...)
	out.Constraints = append([]ConstraintRow(nil), s.Constraints...)
	return out
}

func (s State) AddVariable() State {
	out := s.clone()
	out.Variables = append(out.Variables, newVariable())
	return out
}

func (s State) RemoveVariable(i int) State {
	out := s.clone()
	if i < 0 || i >= len(out.Variables) {
		return out
	}
	out.Variables = append(out.Variables[:i], out.Variables[i+1:]...)
	return out
}

func (s State) AddConstraint() State {
	out := s.clone()
	out.Constraints = append(out.Constraints, newConstraint())
	return out
}

func (s State) RemoveConstraint(i int) State {
	out := s.clone()
	if i < 0 || i >= len(out.Constraints) {
		return out
	}
	out.Constraints = append(out.Constraints[:i], out.Constraints[i+1:]...)
	return out
}

type ActionKind string

const (
	ActionNone             ActionKind = ""
	ActionAddVariable      ActionKind = "add-variable"
	ActionRemoveVariable   ActionKind = "remove-variable"
	ActionAddConstraint    ActionKind = "add-constraint"
	ActionRemoveConstraint ActionKind = "remove-constraint"
	ActionSolve            ActionKind = "solve"
)

type Action struct {
	Kind  ActionKind
	Index int
}

func (a Action) String() string {
	if a.Kind == ActionRemoveVariable || a.Kind == ActionRemoveConstraint {
		return fmt.Sprintf("%s:%d", a.Kind, a.Index)
	}
	return string(a.Kind)
}

func ParseAction(s string) (Action, error) {
	kind, index, hasIndex := strings.Cut(strings.TrimSpace(s), ":")

	switch ActionKind(kind) {
	case ActionNone, ActionAddVariable, ActionAddConstraint, ActionSolve:
		if hasIndex {
			return Action{}, fmt.Errorf("action %q takes no index", s)
		}
		return Action{Kind: ActionKind(kind)}, nil
	case ActionRemoveVariable, ActionRemoveConstraint:
		i, err := strconv.Atoi(index)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: bad row index", s)
		}
		return Action{Kind: ActionKind(kind), Index: i}, nil
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
}

// Apply performs an edit action. Solve and the empty action leave the form as is.
func (s State) Apply(a Action) State {
	switch a.Kind {
	case ActionAddVariable:
		return s.AddVariable()
	case ActionRemoveVariable:
		return s.RemoveVariable(a.Index)
	case ActionAddConstraint:
		return s.AddConstraint()
	case ActionRemoveConstraint:
		return s.RemoveConstraint(a.Index)
	default:
		return s.clone()
	}
}

func VariableField(i int, field string) string {
	return fmt.Sprintf("variables.%d.%s", i, field)
}

func ConstraintField(i int, field string) string {
	return fmt.Sprintf("constraints.%d.%s", i, field)
}

// Decode reads a posted form. Rows are indexed fields such as
// "variables.0.name" and are returned in index order.
func Decode(values url.Values) (State, Action, error) {
	action, err := ParseAction(values.Get("action"))
	if err != nil {
		return State{}, Action{}, err
	}

	state := State{
		ObjectiveType:     domain.ObjectiveType(values.Get("objectiveType")),
		ObjectiveFunction: values.Get("objectiveFunction"),
	}
	if state.ObjectiveType == "" {
		state.ObjectiveType = domain.Maximize
	}

	for _, i := range rowIndexes(values, "variables.") {
		state.Variables = append(state.Variables, VariableRow{
			Name: values.Get(VariableField(i, "name")),
			Coef: values.Get(VariableField(i, "coef")),
		})
	}
	for _, i := range rowIndexes(values, "constraints.") {
		state.Constraints = append(state.Constraints, ConstraintRow{
			LHS:      values.Get(ConstraintField(i, "lhs")),
			Operator: values.Get(ConstraintField(i, "operator")),
			RHS:      values.Get(ConstraintField(i, "rhs")),
		})
	}

	return state, action, nil
}

func rowIndexes(values url.Values, prefix string) []int {
	seen := map[int]bool{}
	for key := range values {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		idx, _, _ := strings.Cut(rest, ".")
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			continue
		}
		seen[i] = true
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Values encodes the state back into the posted form layout.
func (s State) Values() url.Values {
	values := url.Values{}
	values.Set("objectiveType", string(s.ObjectiveType))
	values.Set("objectiveFunction", s.ObjectiveFunction)
	for i, v := range s.Variables {
		values.Set(VariableField(i, "name"), v.Name)
		values.Set(VariableField(i, "coef"), v.Coef)
	}
	for i, c := range s.Constraints {
		values.Set(ConstraintField(i, "lhs"), c.LHS)
		values.Set(ConstraintField(i, "operator"), c.Operator)
		values.Set(ConstraintField(i, "rhs"), c.RHS)
	}
	return values
}
