package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"satanalysis/common"
	"satanalysis/crosspath"

	"github.com/rs/zerolog/log"
)

func main() {
	var datapath, config, output string
	nworkers := 3
	cleanrun := false
	debug := false
	wptr := flag.Int("worker", nworkers, "number of protocols loaded in parallel")
	cptr := flag.Bool("clean", cleanrun, "clean run (remove and rebuild gob)")
	dptr := flag.Bool("debug", debug, "debug logging")
	nptr := flag.Bool("nocache", false, "neither read nor write gob caches")
	flag.StringVar(&config, "config", "", "experiment yaml, defaults to the cross path experiment")
	flag.StringVar(&datapath, "path", "", "data path, overrides the experiment file")
	flag.StringVar(&output, "out", "", "output pdf, overrides the experiment file")
	flag.Parse()
	nworkers = *wptr
	cleanrun = *cptr
	debug = *dptr
	common.SetupLogger(os.Stderr, debug)

	exp, err := common.LoadExperiment(config)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment")
	}
	if datapath != "" {
		exp.DataPath = datapath
	}
	if output != "" {
		exp.Output = output
	}
	if err := exp.Validate(); err != nil {
		log.Fatal().Err(err).Msg("experiment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	opts := crosspath.Options{Workers: nworkers, Clean: cleanrun, NoCache: *nptr}
	if err := crosspath.RunCrossPathAnalysis(ctx, exp, opts); err != nil {
		log.Fatal().Err(err).Msg("cross path analysis")
	}
}
