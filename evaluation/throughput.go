package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"satanalysis/common"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Window is the time range kept from every flow file, both ends included
type Window struct {
	Start float64
	End   float64
}

func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// ns-3 writes nanoseconds as a float, truncate to whole ns before scaling to seconds
func nsToSeconds(ns float64) float64 {
	return float64(int64(ns)) / 1e9
}

// ReadGoodput parses a flow rate file (flow id, time in ns, goodput in Mbps, no header).
// Samples outside the window are dropped, a repeated time keeps its first sample.
func ReadGoodput(r io.Reader, name string, win Window) ([]common.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	seen := make(map[float64]bool)
	samples := make([]common.Sample, 0)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ns, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			line, _ := reader.FieldPos(1)
			return nil, fmt.Errorf("%s line %d: time %q: %w", name, line, rec[1], err)
		}
		gp, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			line, _ := reader.FieldPos(2)
			return nil, fmt.Errorf("%s line %d: goodput %q: %w", name, line, rec[2], err)
		}
		ts := nsToSeconds(ns)
		if !win.Contains(ts) || seen[ts] {
			continue
		}
		seen[ts] = true
		samples = append(samples, common.Sample{Time: ts, Goodput: gp})
	}
	return samples, nil
}

func ReadGoodputFile(path string, win Window) ([]common.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGoodput(f, path, win)
}

// AverageRuns aligns the runs of a flow on time and keeps mean and sample std per time.
// A time seen in a single run has std NaN.
func AverageRuns(flow int, runs [][]common.Sample) *common.FlowGoodput {
	pertime := make(map[float64][]float64)
	for _, run := range runs {
		for _, s := range run {
			pertime[s.Time] = append(pertime[s.Time], s.Goodput)
		}
	}
	times := maps.Keys(pertime)
	slices.Sort(times)
	fg := &common.FlowGoodput{
		Flow: flow,
		Runs: len(runs),
		Time: times,
		Mean: make([]float64, len(times)),
		Std:  make([]float64, len(times)),
	}
	for i, t := range times {
		values := pertime[t]
		if len(values) == 1 {
			fg.Mean[i] = values[0]
			fg.Std[i] = math.NaN()
			continue
		}
		fg.Mean[i], fg.Std[i] = stat.MeanStdDev(values, nil)
	}
	return fg
}

// sorted union of the time axes of all flows
func UnionTimes(flows []*common.FlowGoodput) []float64 {
	set := make(map[float64]struct{})
	for _, fg := range flows {
		for _, t := range fg.Time {
			set[t] = struct{}{}
		}
	}
	times := maps.Keys(set)
	slices.Sort(times)
	return times
}
