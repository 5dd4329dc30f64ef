package pond

import (
	"github.com/chixon/nanopond-ch/config"
	"github.com/chixon/nanopond-ch/pond/rng"
	"github.com/chixon/nanopond-ch/pond/topology"
)

// Opcode values are fixed by the specification; mnemonics are informative.
const (
	OpStop   = 0
	OpFwd    = 1
	OpBack   = 2
	OpInc    = 3
	OpDec    = 4
	OpReadg  = 5
	OpWriteg = 6
	OpReado  = 7
	OpWriteo = 8
	OpLoop   = 9
	OpRep    = 10
	OpTurn   = 11 // combine, in the CH variant
	OpXchg   = 12
	OpKill   = 13
	OpShare  = 14
	OpZero   = 15
	OpSetp   = 16
	OpNextb  = 17
	OpPrevb  = 18
	OpNextm  = 19
	OpPrevm  = 20
	OpReadm  = 21
	OpWritem = 22
	OpClearm = 23
	OpAdd    = 24
	OpSub    = 25
	OpMul    = 26
	OpDiv    = 27
	OpShl    = 28
	OpShr    = 29
	OpSetmp  = 30
	OpRand   = 31
)

// VM holds the per-activation execution state for one cell run. A VM is
// reused across activations via reset, matching the Store's
// no-allocation-churn design.
type VM struct {
	reg            byte
	ioPtr          int
	memPtr         byte
	loopStack      []int
	falseLoopDepth int
	stop           bool
	skipAdvance    bool
	outputBuf      []byte
	instPtr        int
	depth          int
}

// NewVM allocates a VM sized for the configured genome depth.
func NewVM(depth int) *VM {
	return &VM{
		outputBuf: make([]byte, depth),
		loopStack: make([]int, 0, depth),
		depth:     depth,
	}
}

// reset reinitializes per-activation state, as specified for every VM
// activation.
func (vm *VM) reset(execStart int) {
	vm.reg = 0
	vm.ioPtr = 0
	vm.memPtr = 0
	vm.loopStack = vm.loopStack[:0]
	vm.falseLoopDepth = 0
	vm.stop = false
	vm.skipAdvance = false
	for i := range vm.outputBuf {
		vm.outputBuf[i] = StopOpcode
	}
	vm.instPtr = execStart
}

// execContext bundles the collaborators an opcode needs beyond the
// executing cell and the VM's own state: the shared PRNG, the per-report
// counters, the static config, the neighbor topology, and the cell id
// allocator.
type execContext struct {
	cfg           *config.Config
	rng           *rng.MT19937
	stats         *Stats
	topo          topology.Mapper
	store         *Store
	x, y          int
	cellIDCounter *uint64
}

func (c *execContext) neighbor(self *Cell) *Cell {
	nx, ny := c.topo.Neighbor(c.x, c.y, self.Facing)
	return c.store.At(nx, ny)
}

func (c *execContext) nextID() uint64 {
	*c.cellIDCounter++
	return *c.cellIDCounter
}

// Execute runs self's genome from EXEC_START_INST until it halts (STOP,
// energy exhaustion, or LOOP stack overflow), then applies the
// post-execution reproduction/decay step (§4.5).
func (vm *VM) Execute(self *Cell, ctx *execContext) {
	vm.reset(ctx.cfg.ExecStartInst)
	ctx.stats.CellExecs++

	for self.Energy > 0 && !vm.stop {
		inst := self.Genome[vm.instPtr]

		// Mutation: exactly one of four effects, selected by bits 17
		// and 16 of a second draw, applied before the opcode is
		// dispatched.
		if ctx.rng.Uint32() < ctx.cfg.MutationRate {
			t := ctx.rng.Uint32()
			bit17 := (t >> 17) & 1
			bit16 := (t >> 16) & 1
			switch {
			case bit17 == 1 && bit16 == 1:
				inst = byte(t) & InstMask
			case bit17 == 1:
				vm.reg = byte(t) & RegMask
			case bit16 == 1:
				vm.memPtr = byte(t) & MemMask
			default:
				self.RAM[(t>>8)&0xf] = byte(t)
			}
		}

		self.Energy--

		vm.skipAdvance = false
		if vm.falseLoopDepth > 0 {
			switch inst {
			case OpLoop:
				vm.falseLoopDepth++
			case OpRep:
				vm.falseLoopDepth--
			}
		} else {
			ctx.stats.InstExec[inst]++
			opcodeTable[inst](vm, ctx, self)
		}

		if !vm.skipAdvance {
			vm.instPtr++
			if vm.instPtr >= vm.depth {
				vm.instPtr = ctx.cfg.ExecStartInst
			}
		}
	}

	vm.reproduce(self, ctx)
}

// reproduce implements the post-execution handoff: a successful run with
// energy left over and a non-empty output buffer spawns an offspring into
// the facing neighbor; a run that depleted its energy entirely may instead
// scramble one RAM byte.
func (vm *VM) reproduce(self *Cell, ctx *execContext) {
	if self.Energy == 0 {
		if ctx.cfg.DecayRAM {
			idx := ctx.rng.Uint32n(16)
			self.RAM[idx] = byte(ctx.rng.Uint32())
		}
		return
	}
	if self.Energy < ctx.cfg.ReproductionCost || vm.outputBuf[0] == StopOpcode {
		return
	}
	target := ctx.neighbor(self)
	if target.Energy == 0 || !accessAllowed(ctx.rng, target, vm.reg, SenseNegative) {
		return
	}
	wasViable := target.IsViableReplicator()
	target.ID = ctx.nextID()
	target.ParentID = self.ID
	target.Lineage = self.Lineage
	target.Generation = self.Generation + 1
	target.Logo = 0
	target.Facing = 0
	copy(target.Genome, vm.outputBuf)
	if ctx.cfg.ClearRAM {
		target.RAM = [16]byte{}
	} else {
		for i := range target.RAM {
			target.RAM[i] = byte(ctx.rng.Uint32())
		}
	}
	self.Energy -= ctx.cfg.ReproductionCost
	if wasViable {
		ctx.stats.ViableReplaced++
	}
}

type opcodeFunc func(vm *VM, ctx *execContext, self *Cell)

var opcodeTable = [32]opcodeFunc{
	OpStop:   opStop,
	OpFwd:    opFwd,
	OpBack:   opBack,
	OpInc:    opInc,
	OpDec:    opDec,
	OpReadg:  opReadg,
	OpWriteg: opWriteg,
	OpReado:  opReado,
	OpWriteo: opWriteo,
	OpLoop:   opLoop,
	OpRep:    opRep,
	OpTurn:   opTurn,
	OpXchg:   opXchg,
	OpKill:   opKill,
	OpShare:  opShare,
	OpZero:   opZero,
	OpSetp:   opSetp,
	OpNextb:  opNextb,
	OpPrevb:  opPrevb,
	OpNextm:  opNextm,
	OpPrevm:  opPrevm,
	OpReadm:  opReadm,
	OpWritem: opWritem,
	OpClearm: opClearm,
	OpAdd:    opAdd,
	OpSub:    opSub,
	OpMul:    opMul,
	OpDiv:    opDiv,
	OpShl:    opShl,
	OpShr:    opShr,
	OpSetmp:  opSetmp,
	OpRand:   opRand,
}

func opStop(vm *VM, ctx *execContext, self *Cell) { vm.stop = true }

func opFwd(vm *VM, ctx *execContext, self *Cell) { vm.ioPtr = topology.Wrap(vm.ioPtr+1, vm.depth) }

func opBack(vm *VM, ctx *execContext, self *Cell) { vm.ioPtr = topology.Wrap(vm.ioPtr-1, vm.depth) }

func opInc(vm *VM, ctx *execContext, self *Cell) { vm.reg = (vm.reg + 1) & RegMask }

func opDec(vm *VM, ctx *execContext, self *Cell) { vm.reg = (vm.reg - 1) & RegMask }

func opReadg(vm *VM, ctx *execContext, self *Cell) { vm.reg = self.Genome[vm.ioPtr] }

func opWriteg(vm *VM, ctx *execContext, self *Cell) { self.Genome[vm.ioPtr] = vm.reg & InstMask }

func opReado(vm *VM, ctx *execContext, self *Cell) { vm.reg = vm.outputBuf[vm.ioPtr] }

func opWriteo(vm *VM, ctx *execContext, self *Cell) { vm.outputBuf[vm.ioPtr] = vm.reg & InstMask }

func opLoop(vm *VM, ctx *execContext, self *Cell) {
	if vm.reg != 0 {
		if len(vm.loopStack) >= vm.depth {
			vm.stop = true
			return
		}
		vm.loopStack = append(vm.loopStack, vm.instPtr)
	} else {
		vm.falseLoopDepth = 1
	}
}

func opRep(vm *VM, ctx *execContext, self *Cell) {
	if len(vm.loopStack) == 0 {
		return
	}
	top := vm.loopStack[len(vm.loopStack)-1]
	vm.loopStack = vm.loopStack[:len(vm.loopStack)-1]
	if vm.reg != 0 {
		vm.instPtr = top
		vm.skipAdvance = true
	}
}

// opTurn borrows a genome byte from a compatible neighbor ("combine"); the
// original 6502-pond "set facing" semantic for this opcode slot is not
// implemented, per the CH variant.
func opTurn(vm *VM, ctx *execContext, self *Cell) {
	if self.Generation > 2 {
		n := ctx.neighbor(self)
		if n.Generation > 2 && accessAllowed(ctx.rng, n, vm.reg, Sense(ctx.cfg.CombineSense)) {
			if ctx.rng.Bit() {
				vm.reg = self.Genome[vm.ioPtr]
			} else {
				vm.reg = n.Genome[vm.ioPtr]
			}
			return
		}
	}
	vm.reg = self.Genome[vm.ioPtr]
}

func opXchg(vm *VM, ctx *execContext, self *Cell) {
	vm.instPtr++
	if vm.instPtr >= vm.depth {
		vm.instPtr = ctx.cfg.ExecStartInst
	}
	tmp := vm.reg
	vm.reg = self.Genome[vm.instPtr]
	self.Genome[vm.instPtr] = tmp & InstMask
}

func opKill(vm *VM, ctx *execContext, self *Cell) {
	n := ctx.neighbor(self)
	if accessAllowed(ctx.rng, n, vm.reg, SenseNegative) {
		wasViable := n.IsViableReplicator()
		n.clearGenome()
		n.reset(ctx.nextID())
		if wasViable {
			ctx.stats.ViableKilled++
		}
	} else if n.IsViableReplicator() {
		self.Energy -= self.Energy / ctx.cfg.FailedKillPenalty
	}
}

func opShare(vm *VM, ctx *execContext, self *Cell) {
	n := ctx.neighbor(self)
	if accessAllowed(ctx.rng, n, vm.reg, SensePositive) {
		total := self.Energy + n.Energy
		n.Energy = total / 2
		self.Energy = total - n.Energy
		if n.IsViableReplicator() {
			ctx.stats.ViableShared++
		}
	}
}

func opZero(vm *VM, ctx *execContext, self *Cell) { vm.reg = 0 }

func opSetp(vm *VM, ctx *execContext, self *Cell) { vm.ioPtr = int(vm.reg) }

func opNextb(vm *VM, ctx *execContext, self *Cell) { vm.memPtr = (vm.memPtr + 8) & MemMask }

func opPrevb(vm *VM, ctx *execContext, self *Cell) { vm.memPtr = (vm.memPtr - 8) & MemMask }

func opNextm(vm *VM, ctx *execContext, self *Cell) { vm.memPtr = (vm.memPtr + 1) & MemMask }

func opPrevm(vm *VM, ctx *execContext, self *Cell) { vm.memPtr = (vm.memPtr - 1) & MemMask }

func opReadm(vm *VM, ctx *execContext, self *Cell) {
	vm.reg = readMem(self, func() *Cell { return ctx.neighbor(self) }, vm.memPtr, ctx.stats)
}

func opWritem(vm *VM, ctx *execContext, self *Cell) {
	writeMem(ctx.rng, self, func() *Cell { return ctx.neighbor(self) }, vm.memPtr, vm.reg, ctx.topo.FacingMask(), ctx.stats)
}

func opClearm(vm *VM, ctx *execContext, self *Cell) { self.RAM = [16]byte{} }

func opAdd(vm *VM, ctx *execContext, self *Cell) {
	vm.reg = (vm.reg + readMem(self, func() *Cell { return ctx.neighbor(self) }, vm.memPtr, ctx.stats)) & RegMask
}

func opSub(vm *VM, ctx *execContext, self *Cell) {
	vm.reg = (vm.reg - readMem(self, func() *Cell { return ctx.neighbor(self) }, vm.memPtr, ctx.stats)) & RegMask
}

func opMul(vm *VM, ctx *execContext, self *Cell) {
	vm.reg = (vm.reg * readMem(self, func() *Cell { return ctx.neighbor(self) }, vm.memPtr, ctx.stats)) & RegMask
}

// opDiv calls readMem twice, once for the zero-check and once for the
// quotient, exactly as specified: if ptr_mem selects a volatile slot the
// two reads may legitimately differ, and that is preserved rather than
// memoized.
func opDiv(vm *VM, ctx *execContext, self *Cell) {
	neighborFn := func() *Cell { return ctx.neighbor(self) }
	t := readMem(self, neighborFn, vm.memPtr, ctx.stats)
	if t == 0 {
		vm.reg = 0
		return
	}
	divisor := readMem(self, neighborFn, vm.memPtr, ctx.stats)
	if divisor == 0 {
		vm.reg = 0
		return
	}
	vm.reg = (vm.reg / divisor) & RegMask
}

func opShl(vm *VM, ctx *execContext, self *Cell) { vm.reg = (vm.reg << 1) & RegMask }

func opShr(vm *VM, ctx *execContext, self *Cell) { vm.reg = vm.reg >> 1 }

func opSetmp(vm *VM, ctx *execContext, self *Cell) { vm.memPtr = vm.reg & MemMask }

func opRand(vm *VM, ctx *execContext, self *Cell) { vm.reg = byte(ctx.rng.Uint32()) & RegMask }
