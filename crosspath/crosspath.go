package crosspath

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"satanalysis/common"
	"satanalysis/evaluation"
	"satanalysis/savedata"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Workers int
	Clean   bool // drop cached gob files and reload the csv files
	NoCache bool
}

type cachedFlows struct {
	Key   string
	Flows []*common.FlowGoodput
}

func cacheKey(exp *common.Experiment, protocol string) string {
	return fmt.Sprintf("%s/%d/%d/%d/%v/%d/%v/%v", protocol, exp.From, exp.To, exp.Bandwidth, exp.Runs, exp.Flows, exp.Start, exp.End)
}

func CacheName(exp *common.Experiment, protocol string) string {
	name := fmt.Sprintf("%s_%d_to_%d_at_%d_Mbps", protocol, exp.From, exp.To, exp.Bandwidth)
	return savedata.GobName(filepath.Join(exp.DataPath, name))
}

// LoadCrossPath reads every flow file of every run of a protocol and averages the runs.
// Missing files are reported and skipped.
func LoadCrossPath(exp *common.Experiment, protocol string) ([]*common.FlowGoodput, error) {
	win := evaluation.Window{Start: exp.Start, End: exp.End}
	perflow := make(map[int][][]common.Sample, exp.Flows)
	for _, rp := range exp.CheckDataFiles(protocol) {
		for _, ff := range rp.Flows {
			if !ff.Exist {
				log.Warn().Str("protocol", protocol).Str("dir", rp.Dir).Int("flow", ff.Flow).Msg("Folder not found")
				continue
			}
			samples, err := evaluation.ReadGoodputFile(ff.Path, win)
			if err != nil {
				return nil, err
			}
			log.Debug().Str("file", ff.Path).Int("samples", len(samples)).Msg("loaded flow")
			perflow[ff.Flow] = append(perflow[ff.Flow], samples)
		}
	}
	flows := make([]*common.FlowGoodput, 0, exp.Flows)
	for _, flow := range exp.AllFlows() {
		if len(perflow[flow]) == 0 {
			log.Warn().Str("protocol", protocol).Int("flow", flow).Msg("no run found for flow")
		}
		flows = append(flows, evaluation.AverageRuns(flow, perflow[flow]))
	}
	return flows, nil
}

// LoadProtocol returns the averaged flows of a protocol, from the gob cache when it matches the experiment
func LoadProtocol(exp *common.Experiment, protocol string, opts Options) ([]*common.FlowGoodput, error) {
	gobname := CacheName(exp, protocol)
	key := cacheKey(exp, protocol)
	if opts.Clean {
		if err := os.Remove(gobname); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if !opts.NoCache {
		var cached cachedFlows
		if err := savedata.LoadData(gobname, &cached); err == nil && cached.Key == key {
			log.Info().Str("protocol", protocol).Str("file", gobname).Msg("Found precomputed data")
			return cached.Flows, nil
		}
	}
	flows, err := LoadCrossPath(exp, protocol)
	if err != nil {
		return nil, err
	}
	if !opts.NoCache {
		if err := savedata.SaveData(gobname, cachedFlows{Key: key, Flows: flows}); err != nil {
			log.Warn().Err(err).Str("file", gobname).Msg("cannot cache flows")
		}
	}
	return flows, nil
}

// Analyze loads all protocols with a bounded number of workers and rates their fairness.
// Results keep the protocol order of the experiment.
func Analyze(ctx context.Context, exp *common.Experiment, opts Options) ([]*common.ProtocolResult, error) {
	fp, err := evaluation.NewFairnessParams(exp)
	if err != nil {
		return nil, err
	}
	results := make([]*common.ProtocolResult, len(exp.Protocols))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, p := range exp.Protocols {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Info().Str("protocol", p.ID).Msg("working on")
			flows, err := LoadProtocol(exp, p.ID, opts)
			if err != nil {
				return fmt.Errorf("load %s: %w", p.ID, err)
			}
			name := p.Name
			if name == "" {
				name = p.ID
			}
			results[i] = &common.ProtocolResult{
				Protocol: p.ID,
				Name:     name,
				Flows:    flows,
				Fair:     evaluation.ComputeFairness(flows, fp),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunCrossPathAnalysis is the whole pipeline: load, rate, plot and export
func RunCrossPathAnalysis(ctx context.Context, exp *common.Experiment, opts Options) error {
	results, err := Analyze(ctx, exp, opts)
	if err != nil {
		return err
	}
	if err := common.Makeplotdir(exp.Output); err != nil {
		return err
	}
	if err := CrossPathPlot(exp, results); err != nil {
		return fmt.Errorf("plot %s: %w", exp.Output, err)
	}
	if err := FairnessCDFPlot(exp, results); err != nil {
		return fmt.Errorf("cdf plot: %w", err)
	}
	if err := SaveResults(exp, results); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.Info().Str("output", exp.Output).Msg("Complete")
	return nil
}
