package common

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	MetricJain  = "jain"
	MetricRFair = "rfair"
)

type Protocol struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Experiment describes one cross path run set of the ns-3 satellite simulation
type Experiment struct {
	DataPath         string     `yaml:"data_path"`
	From             int        `yaml:"from"`
	To               int        `yaml:"to"`
	Bandwidth        int        `yaml:"bandwidth"`
	Protocols        []Protocol `yaml:"protocols"`
	Flows            int        `yaml:"flows"`
	Runs             []int      `yaml:"runs"`
	PathChangeBefore float64    `yaml:"path_change_before"`
	PathChangeAfter  float64    `yaml:"path_change_after"`
	Start            float64    `yaml:"start"`
	End              float64    `yaml:"end"`
	Set1             []int      `yaml:"set1"`
	Set2             []int      `yaml:"set2"`
	Metric           string     `yaml:"fairness"`
	RFairWindow      int        `yaml:"rfair_window"`
	Output           string     `yaml:"output"`
	Title            string     `yaml:"title"`
}

func DefaultExperiment() *Experiment {
	return &Experiment{
		DataPath:  "data",
		From:      1668,
		To:        1593,
		Bandwidth: 50,
		Protocols: []Protocol{
			{ID: "TcpCubic", Name: "Cubic"},
			{ID: "TcpBbr", Name: "BBR"},
			{ID: "TcpBbr3", Name: "BBRv3"},
		},
		Flows:            6,
		Runs:             []int{1},
		PathChangeBefore: 140,
		PathChangeAfter:  184,
		Start:            120,
		End:              200,
		Set1:             []int{1, 2, 3},
		Set2:             []int{4, 5, 6},
		Metric:           MetricJain,
		RFairWindow:      5,
		Output:           "cross_path_hypatia.pdf",
		Title:            "Cross path experiment (NY to SYD and Lagos to NY)",
	}
}

// LoadExperiment decodes a yaml file over the defaults. Keys absent from the file keep their default.
func LoadExperiment(path string) (*Experiment, error) {
	exp := DefaultExperiment()
	if path == "" {
		return exp, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, exp); err != nil {
		return nil, fmt.Errorf("decode experiment %s: %w", path, err)
	}
	return exp, exp.Validate()
}

func (e *Experiment) Validate() error {
	var errs []error
	if len(e.Protocols) == 0 {
		errs = append(errs, errors.New("no protocols"))
	}
	for _, p := range e.Protocols {
		if p.ID == "" {
			errs = append(errs, errors.New("protocol without id"))
		}
	}
	if e.Flows <= 0 {
		errs = append(errs, fmt.Errorf("flows must be positive, got %d", e.Flows))
	}
	if len(e.Runs) == 0 {
		errs = append(errs, errors.New("no runs"))
	}
	if e.End <= e.Start {
		errs = append(errs, fmt.Errorf("window end %v not after start %v", e.End, e.Start))
	}
	if e.PathChangeAfter < e.PathChangeBefore {
		errs = append(errs, fmt.Errorf("path change after %v is before %v", e.PathChangeAfter, e.PathChangeBefore))
	}
	for _, set := range [][]int{e.Set1, e.Set2} {
		if len(set) == 0 {
			errs = append(errs, errors.New("empty flow set"))
		}
		for _, f := range set {
			if f < 1 || f > e.Flows {
				errs = append(errs, fmt.Errorf("flow %d outside 1..%d", f, e.Flows))
			}
		}
	}
	switch e.Metric {
	case MetricJain:
	case MetricRFair:
		if e.RFairWindow <= 0 {
			errs = append(errs, fmt.Errorf("rfair window must be positive, got %d", e.RFairWindow))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fairness metric %q", e.Metric))
	}
	if e.Output == "" {
		errs = append(errs, errors.New("no output file"))
	}
	return errors.Join(errs...)
}

// all flows 1..Flows
func (e *Experiment) AllFlows() []int {
	all := make([]int, e.Flows)
	for i := range all {
		all[i] = i + 1
	}
	return all
}

func (e *Experiment) MetricLabel() string {
	if e.Metric == MetricRFair {
		return "R-fair Metric"
	}
	return "Jain's Fairness Index"
}
