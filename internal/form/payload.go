package form

import (
	"fmt"

	"github.com/felixbrock/lpviz/internal/domain"
)

// BuildPayload assembles the solver request. It copies values through
// without validating them.
func BuildPayload(variables []domain.Variable, constraints []domain.Constraint, objectiveType domain.ObjectiveType, objectiveFunction string) domain.OptimizationRequest {
	return domain.OptimizationRequest{
		Variables:         append(make([]domain.Variable, 0, len(variables)), variables...),
		Constraints:       append(make([]domain.Constraint, 0, len(constraints)), constraints...),
		ObjectiveType:     objectiveType,
		ObjectiveFunction: objectiveFunction,
	}
}

// Payload tags each left-hand side and builds the request. The only error is
// a left-hand side that looks like structured data but is not.
func (s State) Payload() (domain.OptimizationRequest, error) {
	variables := make([]domain.Variable, 0, len(s.Variables))
	for _, v := range s.Variables {
		variables = append(variables, domain.Variable{Name: v.Name, Coef: domain.Numeric(v.Coef)})
	}

	constraints := make([]domain.Constraint, 0, len(s.Constraints))
	for i, c := range s.Constraints {
		lhs, err := domain.ParseExpression(c.LHS)
		if err != nil {
			return domain.OptimizationRequest{}, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		constraints = append(constraints, domain.Constraint{
			LHS:      lhs,
			Operator: domain.Operator(c.Operator),
			RHS:      domain.Numeric(c.RHS),
		})
	}

	return BuildPayload(variables, constraints, s.ObjectiveType, s.ObjectiveFunction), nil
}
