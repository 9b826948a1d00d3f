// Command simulate runs a Monte Carlo rollout simulation against the
// reference tile game in package refgame and prints the resulting equity
// and win-rate table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/cnolan/simrollout/config"
	"github.com/cnolan/simrollout/montecarlo"
	"github.com/cnolan/simrollout/playengine/refgame"
)

func main() {
	pliesPtr := flag.Int("plies", 0, "override configured plies (0 keeps config default)")
	itersPtr := flag.Int("iterations", 0, "override configured iterations (0 keeps config default)")
	threadsPtr := flag.Int("threads", 0, "override configured thread count (0 keeps config default)")
	logFilePtr := flag.String("logfile", "", "write a trace log of the simulation to this path")
	verbosePtr := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbosePtr {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	v := viper.New()
	cfg, err := config.Load(v, ".")
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	if *pliesPtr > 0 {
		cfg.Plies = *pliesPtr
	}
	if *itersPtr > 0 {
		cfg.Iterations = *itersPtr
	}
	if *threadsPtr > 0 {
		cfg.Threads = *threadsPtr
	}
	if *logFilePtr != "" {
		cfg.LogFile = *logFilePtr
	}

	g := refgame.NewGame(cfg.NumPlayers, cfg.RackCapacity)

	dispatch := &refgame.AtomicAbortDispatch{}
	sim := montecarlo.NewSimulator(refgame.BogowinTable{})
	sim.SetThreads(cfg.Threads)
	sim.SetDispatch(dispatch)
	sim.SetPosition(g)

	if cfg.LogFile != "" {
		if err := sim.SetLogfile(cfg.LogFile, false); err != nil {
			log.Error().Err(err).Msg("could not open logfile; continuing without a trace")
		}
		defer sim.CloseLogfile()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sigCh; ok {
			log.Info().Msg("interrupt received, stopping after the current iteration")
			dispatch.Abort()
		}
	}()

	ctx := log.Logger.WithContext(context.Background())
	if err := sim.Simulate(ctx, cfg.Plies, cfg.Iterations); err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
	signal.Stop(sigCh)
	close(sigCh)

	fmt.Fprint(os.Stdout, sim.EquityStats())
}
