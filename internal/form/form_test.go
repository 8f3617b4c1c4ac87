package form

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/lpviz/internal/domain"
)

func TestInitial(t *testing.T) {
	s := Initial()

	assert.Equal(t, []VariableRow{{Name: "", Coef: "0"}}, s.Variables)
	assert.Equal(t, []ConstraintRow{{LHS: "", Operator: "<=", RHS: "0"}}, s.Constraints)
	assert.Equal(t, domain.Maximize, s.ObjectiveType)
}

func TestEditsReturnNewValues(t *testing.T) {
	base := Initial()
	base.Variables[0] = VariableRow{Name: "x", Coef: "3"}

	added := base.AddVariable()
	require.Len(t, added.Variables, 2)
	assert.Equal(t, VariableRow{Name: "", Coef: "0"}, added.Variables[1])
	assert.Len(t, base.Variables, 1)

	added.Variables[0].Name = "changed"
	assert.Equal(t, "x", base.Variables[0].Name, "edits must not alias the receiver")

	withConstraint := base.AddConstraint()
	require.Len(t, withConstraint.Constraints, 2)
	assert.Equal(t, ConstraintRow{LHS: "", Operator: "<=", RHS: "0"}, withConstraint.Constraints[1])
	assert.Len(t, base.Constraints, 1)
}

func TestRemove(t *testing.T) {
	s := Initial().AddVariable().AddVariable()
	s.Variables[0].Name = "a"
	s.Variables[1].Name = "b"
	s.Variables[2].Name = "c"

	removed := s.RemoveVariable(1)
	assert.Equal(t, []VariableRow{{Name: "a", Coef: "0"}, {Name: "c", Coef: "0"}}, removed.Variables)
	assert.Equal(t, "b", s.Variables[1].Name)

	t.Run("out of range is a no-op", func(t *testing.T) {
		assert.Equal(t, s.Variables, s.RemoveVariable(3).Variables)
		assert.Equal(t, s.Variables, s.RemoveVariable(-1).Variables)
		assert.Equal(t, s.Constraints, s.RemoveConstraint(5).Constraints)
	})

	t.Run("last constraint can go", func(t *testing.T) {
		assert.Empty(t, Initial().RemoveConstraint(0).Constraints)
	})
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "", want: Action{Kind: ActionNone}},
		{in: "solve", want: Action{Kind: ActionSolve}},
		{in: "add-variable", want: Action{Kind: ActionAddVariable}},
		{in: "add-constraint", want: Action{Kind: ActionAddConstraint}},
		{in: "remove-variable:2", want: Action{Kind: ActionRemoveVariable, Index: 2}},
		{in: "remove-constraint:0", want: Action{Kind: ActionRemoveConstraint, Index: 0}},
		{in: "remove-constraint", wantErr: true},
		{in: "remove-variable:x", wantErr: true},
		{in: "solve:1", wantErr: true},
		{in: "explode", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDecode(t *testing.T) {
	values := url.Values{
		"action":                 {"remove-variable:0"},
		"objectiveType":          {"minimize"},
		"objectiveFunction":      {"3x + 5y"},
		"variables.10.name":      {"y"},
		"variables.10.coef":      {"5"},
		"variables.2.name":       {"x"},
		"variables.2.coef":       {"3"},
		"constraints.0.lhs":      {"x + y"},
		"constraints.0.operator": {"<="},
		"constraints.0.rhs":      {"4"},
		"unrelated":              {"ignored"},
		"variables.bad.name":     {"ignored"},
	}

	state, action, err := Decode(values)
	require.NoError(t, err)

	assert.Equal(t, Action{Kind: ActionRemoveVariable, Index: 0}, action)
	assert.Equal(t, domain.Minimize, state.ObjectiveType)
	assert.Equal(t, "3x + 5y", state.ObjectiveFunction)
	assert.Equal(t, []VariableRow{{Name: "x", Coef: "3"}, {Name: "y", Coef: "5"}}, state.Variables)
	assert.Equal(t, []ConstraintRow{{LHS: "x + y", Operator: "<=", RHS: "4"}}, state.Constraints)

	assert.Equal(t, []VariableRow{{Name: "y", Coef: "5"}}, state.Apply(action).Variables)
}

func TestDecodeDefaultsAndErrors(t *testing.T) {
	state, _, err := Decode(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, domain.Maximize, state.ObjectiveType)
	assert.Empty(t, state.Variables)

	_, _, err = Decode(url.Values{"action": {"nope"}})
	assert.Error(t, err)
}

func TestValuesRoundTrip(t *testing.T) {
	s := Initial().AddConstraint()
	s.Variables[0] = VariableRow{Name: "x", Coef: "3"}
	s.Constraints[1] = ConstraintRow{LHS: "2x", Operator: ">=", RHS: "1"}
	s.ObjectiveFunction = "3x"

	got, action, err := Decode(s.Values())
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action.Kind)
	assert.Equal(t, s, got)
}
