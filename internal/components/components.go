// Package components renders the HTML views. The views are written in the
// .templ files next to this one; run templ generate after editing them.
package components

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/felixbrock/lpviz/internal/domain"
	"github.com/felixbrock/lpviz/internal/form"
	"github.com/felixbrock/lpviz/internal/plot"
	"github.com/felixbrock/lpviz/internal/presenter"
)

type Component = templ.Component

type Notice struct {
	Title string
	Msg   string
}

type PageData struct {
	Form   form.State
	Result *presenter.Presentation
	Notice *Notice
}

var operators = []domain.Operator{domain.LessOrEqual, domain.GreaterOrEqual, domain.Equal}

var objectiveTypes = []struct {
	Value domain.ObjectiveType
	Label string
}{
	{domain.Maximize, "Maximize"},
	{domain.Minimize, "Minimize"},
}

const plotLayout = `{"title":"Feasible region","xaxis":{"title":"x"},"yaxis":{"title":"y"},"showlegend":true}`

// plotTraces encodes the traces for the plot's data attribute. Coordinates
// marshal without error, including the non-finite ones.
func plotTraces(traces []plot.Trace) string {
	if traces == nil {
		traces = []plot.Trace{}
	}
	data, err := json.Marshal(traces)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func action(kind form.ActionKind, i int) string {
	return form.Action{Kind: kind, Index: i}.String()
}

func submittedAt(s domain.Submission) string {
	return s.CreatedAt.UTC().Format(time.RFC3339)
}

func objectiveValue(s domain.Submission) string {
	if s.ObjectiveValue == nil {
		return ""
	}
	return strconv.FormatFloat(*s.ObjectiveValue, 'f', 2, 64)
}
