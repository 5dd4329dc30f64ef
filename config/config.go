// Package config holds the compile/launch-time parameter block for the
// pond simulation (§6 of the specification) and the defaults the original
// implementation ships with.
package config

import (
	"fmt"
	"time"
)

// Config is the full set of launch-time knobs for a simulation run.
// Fields documented as "optional" in the specification are represented as
// pointers; a nil pointer means the cap/limit is disabled.
type Config struct {
	PondSizeX int // POND_SIZE_X
	PondSizeY int // POND_SIZE_Y
	PondDepth int // POND_DEPTH, must be a multiple of 16
	Directions int // DIRECTIONS, one of 4, 6, 8

	MutationRate uint32 // MUTATION_RATE, out of 2^32

	InflowFrequency     uint64  // INFLOW_FREQUENCY
	InflowRateBase      uint64  // INFLOW_RATE_BASE
	InflowRateVariation uint64  // INFLOW_RATE_VARIATION, 0 disables variation
	TotalEnergyCap      *uint64 // TOTAL_ENERGY_CAP, optional
	CellEnergyCap       *uint64 // CELL_ENERGY_CAP, optional

	FailedKillPenalty uint64 // FAILED_KILL_PENALTY
	ReproductionCost  uint64 // REPRODUCTION_COST

	ReportFrequency  uint64 // REPORT_FREQUENCY
	DumpFrequency    uint64 // DUMP_FREQUENCY
	RefreshFrequency uint64 // REFRESH_FREQUENCY
	StopAt           *uint64 // STOP_AT, optional

	ExecStartInst int // EXEC_START_INST
	CombineSense  int // COMBINE_SENSE, 0 or 1

	ClearRAM bool // CLEAR_RAM
	DecayRAM bool // DECAY_RAM

	InitSeed *int64 // INIT_SEED, nil derives from wall-clock
}

// Default returns the parameter block with every default value named in §6.
func Default() *Config {
	return &Config{
		PondSizeX:           640,
		PondSizeY:           480,
		PondDepth:           512,
		Directions:          6,
		MutationRate:        100000,
		InflowFrequency:     100,
		InflowRateBase:      2000,
		InflowRateVariation: 4000,
		TotalEnergyCap:      nil,
		CellEnergyCap:       uint64Ptr(10000),
		FailedKillPenalty:   3,
		ReproductionCost:    20,
		ReportFrequency:     1_000_000,
		DumpFrequency:       10_000_000,
		RefreshFrequency:    20_000,
		StopAt:              nil,
		ExecStartInst:       0,
		CombineSense:        0,
		ClearRAM:            false,
		DecayRAM:            false,
		InitSeed:            nil,
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

// Validate checks the invariants the simulation depends on and resolves a
// wall-clock seed if none was supplied.
func (c *Config) Validate() error {
	if c.PondDepth <= 0 || c.PondDepth%16 != 0 {
		return fmt.Errorf("config: POND_DEPTH=%d must be a positive multiple of 16", c.PondDepth)
	}
	if c.PondSizeX <= 0 || c.PondSizeY <= 0 {
		return fmt.Errorf("config: POND_SIZE_X/POND_SIZE_Y must be positive")
	}
	switch c.Directions {
	case 4, 6, 8:
	default:
		return fmt.Errorf("config: DIRECTIONS=%d must be 4, 6, or 8", c.Directions)
	}
	if c.CombineSense != 0 && c.CombineSense != 1 {
		return fmt.Errorf("config: COMBINE_SENSE=%d must be 0 or 1", c.CombineSense)
	}
	if c.ExecStartInst < 0 || c.ExecStartInst >= c.PondDepth {
		return fmt.Errorf("config: EXEC_START_INST=%d out of range [0, %d)", c.ExecStartInst, c.PondDepth)
	}
	if c.ReportFrequency == 0 {
		return fmt.Errorf("config: REPORT_FREQUENCY must be positive")
	}
	if c.RefreshFrequency == 0 {
		return fmt.Errorf("config: REFRESH_FREQUENCY must be positive")
	}
	if c.FailedKillPenalty == 0 {
		return fmt.Errorf("config: FAILED_KILL_PENALTY must be positive")
	}
	if c.InitSeed == nil {
		seed := time.Now().UnixNano()
		c.InitSeed = &seed
	}
	return nil
}
