package plot

import (
	"math"
	"strconv"
)

const (
	ModeLines   = "lines"
	ModeMarkers = "markers"
)

// Coord is a plot coordinate. Non-finite values encode as null so the chart
// leaves a gap instead of failing to encode.
type Coord float64

func (c Coord) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

type Marker struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type Trace struct {
	X      []Coord `json:"x"`
	Y      []Coord `json:"y"`
	Mode   string  `json:"mode"`
	Name   string  `json:"name"`
	Marker *Marker `json:"marker,omitempty"`
}

func LineTrace(name string, seg Segment) Trace {
	return Trace{
		X:    []Coord{Coord(seg.Points[0].X), Coord(seg.Points[1].X)},
		Y:    []Coord{Coord(seg.Points[0].Y), Coord(seg.Points[1].Y)},
		Mode: ModeLines,
		Name: name,
	}
}

func MarkerTrace(name string, x, y float64, marker Marker) Trace {
	return Trace{
		X:      []Coord{Coord(x)},
		Y:      []Coord{Coord(y)},
		Mode:   ModeMarkers,
		Name:   name,
		Marker: &marker,
	}
}
