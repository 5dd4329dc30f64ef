// Command nanopond runs the pond simulation: a cell virtual machine
// executing on a toroidal grid, periodically reporting statistics and
// dumping viable replicator genomes, with an optional visualization
// surface.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/chixon/nanopond-ch/config"
	"github.com/chixon/nanopond-ch/dump"
	"github.com/chixon/nanopond-ch/pond"
	"github.com/chixon/nanopond-ch/report"
	"github.com/chixon/nanopond-ch/ui"
)

type cliOpts struct {
	sizeX, sizeY, depth, directions int
	mutationRate                    uint32
	inflowFrequency                 uint64
	inflowRateBase                  uint64
	inflowRateVariation             uint64
	totalEnergyCap                  uint64
	cellEnergyCap                   uint64
	failedKillPenalty               uint64
	reproductionCost                uint64
	reportFrequency                 uint64
	dumpFrequency                   uint64
	refreshFrequency                uint64
	stopAt                          uint64
	execStartInst                   int
	combineSense                    int
	clearRAM                        bool
	decayRAM                        bool
	initSeed                        int64

	reportPath string
	dumpDir    string
	headless   bool
}

func main() {
	// glog's own flags (e.g. --logtostderr) are parsed by cobra below; the
	// standard flag set is only marked parsed so glog does not complain.
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	var o cliOpts
	root := &cobra.Command{
		Use:   "nanopond",
		Short: "Run the nanopond-CH artificial life simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	def := config.Default()
	f := root.Flags()
	f.IntVar(&o.sizeX, "pond-size-x", def.PondSizeX, "grid width")
	f.IntVar(&o.sizeY, "pond-size-y", def.PondSizeY, "grid height")
	f.IntVar(&o.depth, "pond-depth", def.PondDepth, "genome length in bytes, must be a multiple of 16")
	f.IntVar(&o.directions, "directions", def.Directions, "neighbor topology: 4, 6, or 8")
	f.Uint32Var(&o.mutationRate, "mutation-rate", def.MutationRate, "per-instruction mutation probability, out of 2^32")
	f.Uint64Var(&o.inflowFrequency, "inflow-frequency", def.InflowFrequency, "ticks between energy inflow events")
	f.Uint64Var(&o.inflowRateBase, "inflow-rate-base", def.InflowRateBase, "base energy granted per inflow event")
	f.Uint64Var(&o.inflowRateVariation, "inflow-rate-variation", def.InflowRateVariation, "random energy added per inflow event, 0 disables")
	f.Uint64Var(&o.totalEnergyCap, "total-energy-cap", 0, "stop inflow once grid energy reaches this total, 0 disables")
	f.Uint64Var(&o.cellEnergyCap, "cell-energy-cap", *def.CellEnergyCap, "stop inflow to a cell above this energy, 0 disables")
	f.Uint64Var(&o.failedKillPenalty, "failed-kill-penalty", def.FailedKillPenalty, "energy fraction lost on a failed KILL of a viable replicator")
	f.Uint64Var(&o.reproductionCost, "reproduction-cost", def.ReproductionCost, "flat energy cost charged at end-of-execution reproduction")
	f.Uint64Var(&o.reportFrequency, "report-frequency", def.ReportFrequency, "ticks between statistics reports")
	f.Uint64Var(&o.dumpFrequency, "dump-frequency", def.DumpFrequency, "ticks between genome dumps, 0 disables")
	f.Uint64Var(&o.refreshFrequency, "refresh-frequency", def.RefreshFrequency, "ticks between visualization redraws")
	f.Uint64Var(&o.stopAt, "stop-at", 0, "stop the run at this tick, 0 runs indefinitely")
	f.IntVar(&o.execStartInst, "exec-start-inst", def.ExecStartInst, "genome offset where cell execution begins")
	f.IntVar(&o.combineSense, "combine-sense", def.CombineSense, "TURN opcode access sense: 0 negative, 1 positive")
	f.BoolVar(&o.clearRAM, "clear-ram", def.ClearRAM, "zero a cell's RAM on inflow instead of randomizing it")
	f.BoolVar(&o.decayRAM, "decay-ram", def.DecayRAM, "enable end-of-execution RAM decay")
	f.Int64Var(&o.initSeed, "init-seed", 0, "PRNG seed, 0 derives one from the wall clock")
	f.StringVar(&o.reportPath, "report-path", "report.csv", "path to the statistics CSV")
	f.StringVar(&o.dumpDir, "dump-dir", ".", "directory for periodic genome dump files")
	f.BoolVar(&o.headless, "headless", false, "run without the visualization surface")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	if err := root.Execute(); err != nil {
		glog.Exit(err)
	}
}

func run(o cliOpts) error {
	cfg := &config.Config{
		PondSizeX:           o.sizeX,
		PondSizeY:           o.sizeY,
		PondDepth:           o.depth,
		Directions:          o.directions,
		MutationRate:        o.mutationRate,
		InflowFrequency:     o.inflowFrequency,
		InflowRateBase:      o.inflowRateBase,
		InflowRateVariation: o.inflowRateVariation,
		FailedKillPenalty:   o.failedKillPenalty,
		ReproductionCost:    o.reproductionCost,
		ReportFrequency:     o.reportFrequency,
		DumpFrequency:       o.dumpFrequency,
		RefreshFrequency:    o.refreshFrequency,
		ExecStartInst:       o.execStartInst,
		CombineSense:        o.combineSense,
		ClearRAM:            o.clearRAM,
		DecayRAM:            o.decayRAM,
	}
	if o.totalEnergyCap > 0 {
		cfg.TotalEnergyCap = &o.totalEnergyCap
	}
	if o.cellEnergyCap > 0 {
		cfg.CellEnergyCap = &o.cellEnergyCap
	}
	if o.stopAt > 0 {
		cfg.StopAt = &o.stopAt
	}
	if o.initSeed != 0 {
		cfg.InitSeed = &o.initSeed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("nanopond: %w", err)
	}

	sim, err := pond.New(cfg)
	if err != nil {
		return fmt.Errorf("nanopond: %w", err)
	}

	rw, err := report.Open(o.reportPath)
	if err != nil {
		glog.Warningf("nanopond: continuing without statistics reports: %v", err)
	} else {
		defer rw.Close()
	}

	var surface *ui.Surface
	scheme := pond.ColorKinship
	if !o.headless {
		surface, err = ui.NewSurface(cfg.PondSizeX, cfg.PondSizeY)
		if err != nil {
			glog.Fatalf("nanopond: visualization surface init failed: %v", err)
		}
		defer surface.Close()
	}

	var snap pond.Snapshot
	for !sim.StoppedAt() {
		if sim.ShouldReport() {
			snap = sim.Sweep()
			if rw != nil {
				if err := rw.Write(snap, sim.Stats()); err != nil {
					glog.Warningf("nanopond: report write failed at clock=%d: %v", sim.Clock(), err)
				}
			}
		}
		if sim.ShouldDump() {
			records := dump.CollectViable(sim.Store())
			if err := dump.Write(o.dumpDir, sim.Clock(), records); err != nil {
				glog.Warningf("nanopond: dump write failed at clock=%d: %v", sim.Clock(), err)
			}
		}
		if surface != nil && sim.ShouldRefresh() {
			for _, evt := range surface.PollEvents() {
				switch evt.Kind {
				case ui.EventQuit:
					return nil
				case ui.EventCycleScheme:
					scheme = scheme.Next()
				case ui.EventInspect:
					ui.Inspect(sim.Store(), evt.X, evt.Y)
				}
			}
			surface.Render(sim.Store(), scheme, snap)
		}
		sim.Tick()
	}

	glog.Infof("nanopond: stopped at clock=%d", sim.Clock())
	return nil
}
