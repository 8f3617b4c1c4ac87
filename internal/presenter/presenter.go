// Package presenter turns a solver result into the text and plot traces shown
// to the user.
package presenter

import (
	"fmt"

	"github.com/felixbrock/lpviz/internal/domain"
	"github.com/felixbrock/lpviz/internal/plot"
)

const (
	unavailable           = "Unavailable"
	undefinedStatus       = "Undefined"
	variablesUnavailable  = "Variable data unavailable."
	infeasibleMessage     = "No feasible solution could be found with the given parameters. Check the constraints and try again."
	optimalSolutionMarker = "Optimal solution"
)

type VariableLine struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (l VariableLine) String() string {
	return fmt.Sprintf("%s: %s", l.Name, l.Value)
}

type Presentation struct {
	SubmissionId       string         `json:"submission_id,omitempty"`
	Optimal            bool           `json:"optimal"`
	Status             string         `json:"status"`
	ObjectiveValue     string         `json:"objective_value,omitempty"`
	Variables          []VariableLine `json:"variables,omitempty"`
	VariablesAvailable bool           `json:"variables_available"`
	Message            string         `json:"message,omitempty"`
	Traces             []plot.Trace   `json:"traces"`
	Warnings           []string       `json:"warnings,omitempty"`
}

// Lines renders the narrative as plain text, one line per paragraph.
func (p Presentation) Lines() []string {
	if !p.Optimal {
		return []string{"Status: " + p.Status, "Message: " + p.Message}
	}

	lines := []string{
		"Status: " + p.Status,
		"Objective function value: " + p.ObjectiveValue,
		"Decision variable values:",
	}
	if !p.VariablesAvailable {
		return append(lines, variablesUnavailable)
	}
	for _, v := range p.Variables {
		lines = append(lines, v.String())
	}
	return lines
}

// ProjectionObserver receives the outcome of every constraint projection.
type ProjectionObserver interface {
	ObserveProjection(seg plot.Segment, err error)
}

type Presenter struct {
	Projector plot.Projector
	Observer  ProjectionObserver
}

func New(projector plot.Projector, observer ProjectionObserver) Presenter {
	return Presenter{Projector: projector, Observer: observer}
}

func (p Presenter) Present(result domain.OptimizationResult, constraints []domain.Constraint, objective domain.ObjectiveType) Presentation {
	pres := narrative(result, objective)
	pres.Traces, pres.Warnings = p.traces(result, constraints)
	return pres
}

func narrative(result domain.OptimizationResult, objective domain.ObjectiveType) Presentation {
	if !result.IsOptimal() {
		status := result.Status
		if status == "" {
			status = undefinedStatus
		}
		return Presentation{Status: status, Message: infeasibleMessage}
	}

	verb := "minimize"
	if objective == domain.Maximize {
		verb = "maximize"
	}
	pres := Presentation{
		Optimal:        true,
		Status:         fmt.Sprintf("Optimal solution found to %s the objective function value.", verb),
		ObjectiveValue: formatValue(result.ObjectiveValue),
	}

	if result.Solution != nil {
		pres.VariablesAvailable = true
		pres.Variables = make([]VariableLine, 0, len(result.Solution))
		for _, a := range result.Solution {
			pres.Variables = append(pres.Variables, VariableLine{Name: a.Name, Value: formatValue(a.Value)})
		}
	}
	return pres
}

// traces draws one line per constraint and the optimal point. The marker
// reads the variables named x and y whatever the user called them; a missing
// value plots as 0.
func (p Presenter) traces(result domain.OptimizationResult, constraints []domain.Constraint) ([]plot.Trace, []string) {
	if len(constraints) == 0 {
		return []plot.Trace{}, nil
	}

	var (
		traces   = make([]plot.Trace, 0, len(constraints)+1)
		warnings []string
	)
	for i, c := range constraints {
		seg, err := p.Projector.Project(i, c)
		if p.Observer != nil {
			p.Observer.ObserveProjection(seg, err)
		}
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		for _, issue := range seg.Issues {
			warnings = append(warnings, issue.Error())
		}
		traces = append(traces, plot.LineTrace(fmt.Sprintf("Constraint %d", i+1), seg))
	}

	if result.Solution != nil {
		x, _ := result.Solution.Lookup("x")
		y, _ := result.Solution.Lookup("y")
		traces = append(traces, plot.MarkerTrace(optimalSolutionMarker, x, y, plot.Marker{Color: "red", Size: 10}))
	}
	return traces, warnings
}

func formatValue(v *float64) string {
	if v == nil {
		return unavailable
	}
	return fmt.Sprintf("%.2f", *v)
}
