package common

import (
	"fmt"
	"os"
	"path/filepath"
)

type FlowFile struct {
	Flow  int
	Path  string
	Exist bool
}

type RunPaths struct {
	Run   int
	Dir   string
	Flows []FlowFile
}

func (e *Experiment) RunDir(protocol string, run int) string {
	name := fmt.Sprintf("starlink_550_isls_%d_to_%d_with_%s_at_%d_Mbps_%d_run", e.From, e.To, protocol, e.Bandwidth, run)
	return filepath.Join(e.DataPath, name)
}

// flow n (1 based) is written by ns-3 as tcp_flow_<n-1>
func FlowFileName(flow int) string {
	return fmt.Sprintf("tcp_flow_%d_rate_in_intervals.csv", flow-1)
}

// CheckDataFiles lists the flow files of every run of a protocol and whether they exist
func (e *Experiment) CheckDataFiles(protocol string) []RunPaths {
	runs := make([]RunPaths, 0, len(e.Runs))
	for _, run := range e.Runs {
		rp := RunPaths{Run: run, Dir: e.RunDir(protocol, run)}
		for _, flow := range e.AllFlows() {
			ff := FlowFile{Flow: flow, Path: filepath.Join(rp.Dir, FlowFileName(flow))}
			_, err := os.Stat(ff.Path)
			ff.Exist = (err == nil)
			rp.Flows = append(rp.Flows, ff)
		}
		runs = append(runs, rp)
	}
	return runs
}
