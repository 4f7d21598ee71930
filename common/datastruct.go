package common

import (
	"math"

	"golang.org/x/exp/slices"
)

// one goodput sample of a flow, time in seconds, goodput in Mbps
type Sample struct {
	Time    float64
	Goodput float64
}

// goodput of a flow averaged over runs
type FlowGoodput struct {
	Flow int
	Runs int
	Time []float64
	Mean []float64
	Std  []float64
}

func (fg *FlowGoodput) Len() int {
	return len(fg.Time)
}

// mean goodput at time t, NaN if the flow has no sample there
func (fg *FlowGoodput) At(t float64) float64 {
	if i, ok := slices.BinarySearch(fg.Time, t); ok {
		return fg.Mean[i]
	}
	return math.NaN()
}

type Segment int

const (
	PreChange Segment = iota
	Transition
	PostChange
)

func (s Segment) String() string {
	switch s {
	case PreChange:
		return "pre-change"
	case Transition:
		return "transition"
	case PostChange:
		return "post-change"
	}
	return "unknown"
}

// fairness of one protocol, the three series share Time and Segment.
// A value is NaN where the series is not defined for the segment.
type Fairness struct {
	Time     []float64
	Segment  []Segment
	Set1     []float64
	Set2     []float64
	Combined []float64
}

type ProtocolResult struct {
	Protocol string
	Name     string
	Flows    []*FlowGoodput
	Fair     *Fairness
}

// mean fairness of a segment, nil where the series is undefined
type SegmentSummary struct {
	Segment  string   `json:"segment"`
	Samples  int      `json:"samples"`
	Set1     *float64 `json:"set1,omitempty"`
	Set2     *float64 `json:"set2,omitempty"`
	Combined *float64 `json:"combined,omitempty"`
}

type ProtocolSummary struct {
	Protocol string           `json:"protocol"`
	Metric   string           `json:"metric"`
	Segments []SegmentSummary `json:"segments"`
}
