// Package pond implements the nanopond-CH core: the cell virtual machine,
// the pond simulation loop, the neighbor topology, and the multi-bank cell
// memory model. It is a single-threaded, cooperative engine with no
// asynchronous I/O — callers drive it one Tick at a time.
package pond

import (
	"github.com/chixon/nanopond-ch/config"
	"github.com/chixon/nanopond-ch/pond/rng"
	"github.com/chixon/nanopond-ch/pond/topology"
)

// Simulation is the process-wide state for one run: the cell store, the
// PRNG, the neighbor topology, the cell id allocator, and the current
// clock. Its lifetime equals the lifetime of the run.
type Simulation struct {
	cfg   *config.Config
	store *Store
	topo  topology.Mapper
	rng   *rng.MT19937
	vm    *VM
	stats *Stats

	clock         uint64
	cellIDCounter uint64
}

// New constructs a Simulation from a validated config.
func New(cfg *config.Config) (*Simulation, error) {
	topo, err := topology.New(cfg.Directions, cfg.PondSizeX, cfg.PondSizeY)
	if err != nil {
		return nil, err
	}
	seed := uint64(0)
	if cfg.InitSeed != nil {
		seed = uint64(*cfg.InitSeed)
	}
	return &Simulation{
		cfg:   cfg,
		store: NewStore(cfg.PondSizeX, cfg.PondSizeY, cfg.PondDepth),
		topo:  topo,
		rng:   rng.New(seed),
		vm:    NewVM(cfg.PondDepth),
		stats: NewStats(),
	}, nil
}

// Clock returns the current tick count.
func (s *Simulation) Clock() uint64 { return s.clock }

// Store exposes the cell grid, e.g. for statistics sweeps or dumping.
func (s *Simulation) Store() *Store { return s.store }

// Stats exposes the live per-report counters.
func (s *Simulation) Stats() *Stats { return s.stats }

// StoppedAt reports whether StopAt is configured and has been reached.
func (s *Simulation) StoppedAt() bool {
	return s.cfg.StopAt != nil && s.clock >= *s.cfg.StopAt
}

// ShouldReport reports whether this tick lands on a report boundary.
func (s *Simulation) ShouldReport() bool {
	return s.clock%s.cfg.ReportFrequency == 0
}

// ShouldRefresh reports whether this tick lands on a refresh boundary.
func (s *Simulation) ShouldRefresh() bool {
	return s.clock%s.cfg.RefreshFrequency == 0
}

// ShouldDump reports whether this tick lands on a dump boundary.
func (s *Simulation) ShouldDump() bool {
	return s.cfg.DumpFrequency > 0 && s.clock%s.cfg.DumpFrequency == 0
}

// Sweep computes a statistics Snapshot over the current grid and resets
// the per-report counters, as done at each report boundary (§4.7).
func (s *Simulation) Sweep() Snapshot {
	snap := s.stats.Sweep(s.clock, s.store)
	s.stats.Reset()
	return snap
}

// Tick advances the simulation by exactly one clock step: inflow seeding
// (on an inflow boundary), then a single random cell execution. Callers
// are expected to check StoppedAt/ShouldReport/ShouldRefresh/ShouldDump
// and act on them before calling Tick, matching the ordering in §5:
// (a) stop/report/refresh/dump checks, (b) inflow seeding, (c) random-cell
// execution.
func (s *Simulation) Tick() {
	if s.cfg.InflowFrequency > 0 && s.clock%s.cfg.InflowFrequency == 0 {
		s.inflow()
	}
	s.runRandomCell()
	s.clock++
}

// inflow seeds a random grid position with a fresh identity, a random
// genome, and (subject to energy caps) additional energy.
func (s *Simulation) inflow() {
	x := int(s.rng.Uint32n(uint32(s.store.Width())))
	y := int(s.rng.Uint32n(uint32(s.store.Height())))
	c := s.store.At(x, y)

	s.cellIDCounter++
	c.reset(s.cellIDCounter)

	withinTotalCap := s.cfg.TotalEnergyCap == nil || s.totalEnergy() < *s.cfg.TotalEnergyCap
	withinCellCap := s.cfg.CellEnergyCap == nil || c.Energy < *s.cfg.CellEnergyCap
	if withinTotalCap && withinCellCap {
		inflowEnergy := s.cfg.InflowRateBase
		if s.cfg.InflowRateVariation > 0 {
			inflowEnergy += s.rng.Uint64n(s.cfg.InflowRateVariation)
		}
		c.Energy += inflowEnergy
	}

	for i := range c.Genome {
		c.Genome[i] = byte(s.rng.Uint32()) & InstMask
	}
	if s.cfg.ClearRAM {
		c.RAM = [16]byte{}
	} else {
		for i := range c.RAM {
			c.RAM[i] = byte(s.rng.Uint32())
		}
	}
}

// totalEnergy sweeps the grid for the current total energy. It is only
// called when TotalEnergyCap is configured, which keeps the common case
// (no cap) free of an extra grid pass per inflow tick.
func (s *Simulation) totalEnergy() uint64 {
	var total uint64
	s.store.Each(func(x, y int, c *Cell) { total += c.Energy })
	return total
}

// runRandomCell selects a uniformly random grid position and, if it holds
// energy, runs the VM on it.
func (s *Simulation) runRandomCell() {
	x := int(s.rng.Uint32n(uint32(s.store.Width())))
	y := int(s.rng.Uint32n(uint32(s.store.Height())))
	c := s.store.At(x, y)
	if !c.IsActive() {
		return
	}
	ctx := &execContext{
		cfg:           s.cfg,
		rng:           s.rng,
		stats:         s.stats,
		topo:          s.topo,
		store:         s.store,
		x:             x,
		y:             y,
		cellIDCounter: &s.cellIDCounter,
	}
	s.vm.Execute(c, ctx)
}
