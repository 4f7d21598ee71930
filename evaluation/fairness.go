package evaluation

import (
	"fmt"
	"math"

	"satanalysis/common"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"
)

// FairnessFunc maps the goodput of a set of flows at one instant to a fairness value
type FairnessFunc func(x []float64) float64

// nanSums returns Σx and Σx² over the flows that have a sample
func nanSums(x []float64) (sum, sq float64) {
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sq += v * v
	}
	return sum, sq
}

// Jain's fairness index (Σx)² / (n·Σx²). A flow without a sample adds nothing to
// the sums but still counts in n. NaN when every flow is idle.
func Jain(x []float64) float64 {
	n := float64(len(x))
	sum, sq := nanSums(x)
	if n == 0 || sq == 0 {
		return math.NaN()
	}
	return sum * sum / (n * sq)
}

// RFair returns the R-fair metric 1 - sqrt(Σ(x-avg)²) / (n·sqrt(Σx²)), where avg is the
// mean of the last w entries of x. With fewer than w entries, or a missing flow among
// them, avg is undefined and the deviation term drops out, giving 1.
// NaN when every flow is idle.
func RFair(w int) FairnessFunc {
	return func(x []float64) float64 {
		n := len(x)
		_, sq := nanSums(x)
		if n == 0 || sq == 0 {
			return math.NaN()
		}
		if w <= 0 || n < w || floats.HasNaN(x[n-w:]) {
			return 1
		}
		avg := floats.Sum(x[n-w:]) / float64(w)
		var dev float64
		for _, v := range x {
			if math.IsNaN(v) {
				continue
			}
			dev += (v - avg) * (v - avg)
		}
		return 1 - math.Sqrt(dev)/(float64(n)*math.Sqrt(sq))
	}
}

func MetricFunc(exp *common.Experiment) (FairnessFunc, error) {
	switch exp.Metric {
	case common.MetricJain:
		return Jain, nil
	case common.MetricRFair:
		return RFair(exp.RFairWindow), nil
	}
	return nil, fmt.Errorf("unknown fairness metric %q", exp.Metric)
}

type FairnessParams struct {
	Before float64
	After  float64
	Set1   []int
	Set2   []int
	All    []int
	Fn     FairnessFunc
}

func NewFairnessParams(exp *common.Experiment) (FairnessParams, error) {
	fn, err := MetricFunc(exp)
	if err != nil {
		return FairnessParams{}, err
	}
	return FairnessParams{
		Before: exp.PathChangeBefore,
		After:  exp.PathChangeAfter,
		Set1:   exp.Set1,
		Set2:   exp.Set2,
		All:    exp.AllFlows(),
		Fn:     fn,
	}, nil
}

// goodput of the listed flows at one time, NaN for a flow without a sample
func pick(row map[int]float64, flows []int) []float64 {
	x := make([]float64, len(flows))
	for i, f := range flows {
		v, ok := row[f]
		if !ok {
			v = math.NaN()
		}
		x[i] = v
	}
	return x
}

// ComputeFairness splits the combined goodput into the pre-change, transition and
// post-change segments. Before the change and after it the two flow sets are rated
// separately, during the transition all flows are rated together. Boundary times
// belong to both adjacent segments and appear twice.
func ComputeFairness(flows []*common.FlowGoodput, fp FairnessParams) *common.Fairness {
	byflow := make(map[int]*common.FlowGoodput, len(flows))
	for _, fg := range flows {
		byflow[fg.Flow] = fg
	}
	times := UnionTimes(flows)
	rows := make([]map[int]float64, len(times))
	for i, t := range times {
		rows[i] = make(map[int]float64, len(byflow))
		for f, fg := range byflow {
			rows[i][f] = fg.At(t)
		}
	}

	fair := &common.Fairness{}
	add := func(t float64, seg common.Segment, s1, s2, all float64) {
		fair.Time = append(fair.Time, t)
		fair.Segment = append(fair.Segment, seg)
		fair.Set1 = append(fair.Set1, s1)
		fair.Set2 = append(fair.Set2, s2)
		fair.Combined = append(fair.Combined, all)
	}
	nan := math.NaN()
	for i, t := range times {
		if t <= fp.Before {
			add(t, common.PreChange, fp.Fn(pick(rows[i], fp.Set1)), fp.Fn(pick(rows[i], fp.Set2)), nan)
		}
	}
	for i, t := range times {
		if t >= fp.Before && t <= fp.After {
			add(t, common.Transition, nan, nan, fp.Fn(pick(rows[i], fp.All)))
		}
	}
	for i, t := range times {
		if t >= fp.After {
			add(t, common.PostChange, fp.Fn(pick(rows[i], fp.Set1)), fp.Fn(pick(rows[i], fp.Set2)), nan)
		}
	}
	return fair
}

// Summarize averages every series per segment, undefined series are left nil
func Summarize(protocol, metric string, fair *common.Fairness) common.ProtocolSummary {
	sum := common.ProtocolSummary{Protocol: protocol, Metric: metric}
	for _, seg := range []common.Segment{common.PreChange, common.Transition, common.PostChange} {
		var s1, s2, all []float64
		for i, s := range fair.Segment {
			if s != seg {
				continue
			}
			s1 = append(s1, fair.Set1[i])
			s2 = append(s2, fair.Set2[i])
			all = append(all, fair.Combined[i])
		}
		sum.Segments = append(sum.Segments, common.SegmentSummary{
			Segment:  seg.String(),
			Samples:  len(s1),
			Set1:     meanPtr(s1),
			Set2:     meanPtr(s2),
			Combined: meanPtr(all),
		})
	}
	return sum
}

func meanPtr(x []float64) *float64 {
	m, ok := common.NanMean(x)
	if !ok {
		return nil
	}
	return &m
}

// GapLines splits a series at NaN values into the runs that can be drawn as lines
func GapLines(time, values []float64) []plotter.XYs {
	lines := make([]plotter.XYs, 0)
	var cur plotter.XYs
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: time[i], Y: v})
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
