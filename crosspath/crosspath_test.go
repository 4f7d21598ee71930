package crosspath

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"satanalysis/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	common.SetupLogger(io.Discard, false)
}

// writeFlow writes one sample per second over 110..210 s in the ns-3 rate file format
func writeFlow(t *testing.T, exp *common.Experiment, protocol string, run, flow int, goodput func(sec int) float64) {
	t.Helper()
	dir := exp.RunDir(protocol, run)
	require.NoError(t, os.MkdirAll(dir, 0755))
	var sb strings.Builder
	for sec := 110; sec <= 210; sec++ {
		fmt.Fprintf(&sb, "%d,%d.0,%v\n", flow-1, int64(sec)*1000000000, goodput(sec))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.FlowFileName(flow)), []byte(sb.String()), 0644))
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func testExperiment(t *testing.T) *common.Experiment {
	exp := common.DefaultExperiment()
	exp.DataPath = t.TempDir()
	exp.Output = filepath.Join(t.TempDir(), "plots", "cross.pdf")
	for _, p := range exp.Protocols {
		for flow := 1; flow <= exp.Flows; flow++ {
			if p.ID == "TcpBbr3" && flow == 6 {
				continue
			}
			writeFlow(t, exp, p.ID, 1, flow, constant(5))
		}
	}
	return exp
}

func TestLoadCrossPathAveragesRuns(t *testing.T) {
	exp := testExperiment(t)
	exp.Runs = []int{1, 2}
	writeFlow(t, exp, "TcpCubic", 2, 1, constant(7))

	flows, err := LoadCrossPath(exp, "TcpCubic")
	require.NoError(t, err)
	require.Len(t, flows, 6)
	f1 := flows[0]
	assert.Equal(t, 2, f1.Runs)
	assert.Equal(t, 81, f1.Len(), "120..200 s inclusive")
	assert.Equal(t, 120.0, f1.Time[0])
	assert.Equal(t, 200.0, f1.Time[f1.Len()-1])
	assert.Equal(t, 6.0, f1.Mean[0])
	assert.InDelta(t, 1.4142135623730951, f1.Std[0], 1e-12)
	assert.Equal(t, 1, flows[1].Runs, "second run only has flow 1")
}

func TestLoadCrossPathMissingFlow(t *testing.T) {
	var buf bytes.Buffer
	common.SetupLogger(&buf, false)
	t.Cleanup(func() { common.SetupLogger(io.Discard, false) })

	exp := testExperiment(t)
	flows, err := LoadCrossPath(exp, "TcpBbr3")
	require.NoError(t, err)
	require.Len(t, flows, 6)
	assert.Equal(t, 0, flows[5].Len())
	assert.Equal(t, 0, flows[5].Runs)

	out := buf.String()
	assert.Contains(t, out, "Folder not found")
	assert.Contains(t, out, "dir="+exp.RunDir("TcpBbr3", 1))
	assert.Contains(t, out, "flow=6")
	assert.Contains(t, out, "no run found for flow")
}

func TestLoadCrossPathMalformed(t *testing.T) {
	exp := testExperiment(t)
	path := filepath.Join(exp.RunDir("TcpBbr", 1), common.FlowFileName(3))
	require.NoError(t, os.WriteFile(path, []byte("2,120000000000,n/a\n"), 0644))
	_, err := LoadCrossPath(exp, "TcpBbr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestAnalyzeUsesCache(t *testing.T) {
	exp := testExperiment(t)
	ctx := context.Background()

	results, err := Analyze(ctx, exp, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Cubic", results[0].Name)
	assert.FileExists(t, CacheName(exp, "TcpCubic"))

	writeFlow(t, exp, "TcpCubic", 1, 1, constant(10))
	results, err = Analyze(ctx, exp, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 5.0, results[0].Flows[0].Mean[0], "cached flows")

	results, err = Analyze(ctx, exp, Options{Workers: 2, Clean: true})
	require.NoError(t, err)
	assert.Equal(t, 10.0, results[0].Flows[0].Mean[0], "clean run reloads the csv")

	exp.Runs = []int{1, 2}
	writeFlow(t, exp, "TcpCubic", 2, 1, constant(20))
	results, err = Analyze(ctx, exp, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 15.0, results[0].Flows[0].Mean[0], "cache keyed by runs")
}

func TestAnalyzeCanceled(t *testing.T) {
	exp := testExperiment(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, exp, Options{Workers: 1, NoCache: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCrossPathAnalysis(t *testing.T) {
	exp := testExperiment(t)
	require.NoError(t, RunCrossPathAnalysis(context.Background(), exp, Options{Workers: 3, NoCache: true}))

	base := strings.TrimSuffix(exp.Output, ".pdf")
	for _, name := range []string{exp.Output, base + ".cdf.pdf", base + ".goodput.csv", base + ".fairness.csv", base + ".summary.json"} {
		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), name)
	}
	pdf, err := os.ReadFile(exp.Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	f, err := os.Open(base + ".summary.json")
	require.NoError(t, err)
	defer f.Close()
	var summaries []common.ProtocolSummary
	require.NoError(t, json.NewDecoder(f).Decode(&summaries))
	require.Len(t, summaries, 3)

	cubic := summaries[0]
	assert.Equal(t, "TcpCubic", cubic.Protocol)
	assert.Equal(t, common.MetricJain, cubic.Metric)
	require.Len(t, cubic.Segments, 3)
	// 120..140 s
	assert.Equal(t, 21, cubic.Segments[0].Samples)
	assert.InDelta(t, 1.0, *cubic.Segments[0].Set1, 1e-12)
	assert.Nil(t, cubic.Segments[0].Combined)
	// 140..184 s
	assert.Equal(t, 45, cubic.Segments[1].Samples)
	assert.InDelta(t, 1.0, *cubic.Segments[1].Combined, 1e-12)
	// 184..200 s
	assert.Equal(t, 17, cubic.Segments[2].Samples)

	bbr3 := summaries[2]
	assert.Equal(t, "TcpBbr3", bbr3.Protocol)
	assert.InDelta(t, 1.0, *bbr3.Segments[0].Set1, 1e-12)
	assert.InDelta(t, 2.0/3, *bbr3.Segments[0].Set2, 1e-12)
	assert.InDelta(t, 25.0/30, *bbr3.Segments[1].Combined, 1e-12)
}

func TestRunCrossPathAnalysisRFair(t *testing.T) {
	exp := testExperiment(t)
	exp.Metric = common.MetricRFair
	require.NoError(t, RunCrossPathAnalysis(context.Background(), exp, Options{NoCache: true}))
	assert.FileExists(t, exp.Output)

	f, err := os.Open(strings.TrimSuffix(exp.Output, ".pdf") + ".summary.json")
	require.NoError(t, err)
	defer f.Close()
	var summaries []common.ProtocolSummary
	require.NoError(t, json.NewDecoder(f).Decode(&summaries))
	pre := summaries[0].Segments[0]
	require.NotNil(t, pre.Set1, "three flow sets are shorter than the window and rate 1")
	assert.Equal(t, 1.0, *pre.Set1)
	assert.Equal(t, 1.0, *pre.Set2)
}
