package domain

import (
	"errors"
	"time"
)

var ErrSolverUnavailable = errors.New("solver unavailable")

type Operator string

const (
	LessOrEqual    Operator = "<="
	GreaterOrEqual Operator = ">="
	Equal          Operator = "="
)

type ObjectiveType string

const (
	Maximize ObjectiveType = "maximize"
	Minimize ObjectiveType = "minimize"
)

// StatusOptimal is the only solver status that selects the optimal narrative.
const StatusOptimal = "Optimal"

type Variable struct {
	Name string  `json:"name"`
	Coef Numeric `json:"coef"`
}

type Constraint struct {
	LHS      Expression `json:"lhs"`
	Operator Operator   `json:"operator"`
	RHS      Numeric    `json:"rhs"`
}

type OptimizationRequest struct {
	Variables         []Variable    `json:"variables"`
	Constraints       []Constraint  `json:"constraints"`
	ObjectiveType     ObjectiveType `json:"objectiveType"`
	ObjectiveFunction string        `json:"objectiveFunction"`
}

type OptimizationResult struct {
	Status         string   `json:"status"`
	ObjectiveValue *float64 `json:"objective_value,omitempty"`
	Solution       Solution `json:"solution,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (r OptimizationResult) IsOptimal() bool {
	return r.Status == StatusOptimal
}

type Submission struct {
	Id             string              `json:"id"`
	CreatedAt      time.Time           `json:"created_at"`
	ObjectiveType  ObjectiveType       `json:"objective_type"`
	Request        OptimizationRequest `json:"request"`
	Status         string              `json:"status"`
	ObjectiveValue *float64            `json:"objective_value"`
	Failure        string              `json:"failure"`
}
