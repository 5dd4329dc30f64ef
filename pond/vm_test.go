package pond

import (
	"testing"

	"github.com/chixon/nanopond-ch/config"
	"github.com/chixon/nanopond-ch/pond/rng"
	"github.com/chixon/nanopond-ch/pond/topology"
)

func newTestContext(t *testing.T, width, height, depth int) (*execContext, *Store) {
	t.Helper()
	topo, err := topology.New(4, width, height)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(width, height, depth)
	var idCounter uint64
	ctx := &execContext{
		cfg:           config.Default(),
		rng:           rng.New(1),
		stats:         NewStats(),
		topo:          topo,
		store:         store,
		x:             0,
		y:             0,
		cellIDCounter: &idCounter,
	}
	return ctx, store
}

func TestOpIncWrapsAtRegMask(t *testing.T) {
	vm := NewVM(16)
	vm.reg = RegMask
	opInc(vm, nil, nil)
	if vm.reg != 0 {
		t.Fatalf("reg after wraparound inc = %d, want 0", vm.reg)
	}
}

func TestOpDecWrapsBelowZero(t *testing.T) {
	vm := NewVM(16)
	vm.reg = 0
	opDec(vm, nil, nil)
	if vm.reg != RegMask {
		t.Fatalf("reg after wraparound dec = %d, want %d", vm.reg, RegMask)
	}
}

func TestOpFwdBackWrapIOPointer(t *testing.T) {
	vm := NewVM(4)
	vm.ioPtr = 3
	opFwd(vm, nil, nil)
	if vm.ioPtr != 0 {
		t.Fatalf("ioPtr after wraparound fwd = %d, want 0", vm.ioPtr)
	}
	opBack(vm, nil, nil)
	if vm.ioPtr != 3 {
		t.Fatalf("ioPtr after wraparound back = %d, want 3", vm.ioPtr)
	}
}

func TestOpReadgWriteg(t *testing.T) {
	vm := NewVM(4)
	self := &Cell{Genome: []byte{0, 0, 0, 0}}
	vm.ioPtr = 2
	vm.reg = 7
	opWriteg(vm, nil, self)
	if self.Genome[2] != 7 {
		t.Fatalf("genome[2] = %d, want 7", self.Genome[2])
	}
	vm.reg = 0
	opReadg(vm, nil, self)
	if vm.reg != 7 {
		t.Fatalf("reg after readg = %d, want 7", vm.reg)
	}
}

func TestLoopRepBasicCycle(t *testing.T) {
	vm := NewVM(16)
	vm.reg = 1
	vm.instPtr = 5
	opLoop(vm, nil, nil)
	if len(vm.loopStack) != 1 || vm.loopStack[0] != 5 {
		t.Fatalf("loopStack = %v, want [5]", vm.loopStack)
	}
	opRep(vm, nil, nil)
	if !vm.skipAdvance || vm.instPtr != 5 {
		t.Fatalf("rep with reg!=0: instPtr=%d skipAdvance=%v, want instPtr=5 skipAdvance=true", vm.instPtr, vm.skipAdvance)
	}
}

func TestLoopWithZeroRegEntersFalseLoop(t *testing.T) {
	vm := NewVM(16)
	vm.reg = 0
	opLoop(vm, nil, nil)
	if len(vm.loopStack) != 0 {
		t.Fatal("a false loop must not push onto loopStack")
	}
	if vm.falseLoopDepth != 1 {
		t.Fatalf("falseLoopDepth = %d, want 1", vm.falseLoopDepth)
	}
}

func TestLoopStackOverflowStops(t *testing.T) {
	vm := NewVM(2)
	vm.reg = 1
	vm.loopStack = append(vm.loopStack, 0, 1) // fill to depth
	opLoop(vm, nil, nil)
	if !vm.stop {
		t.Fatal("LOOP stack overflow should halt the VM")
	}
}

func TestOpDivByZeroYieldsZeroReg(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.RAM[0] = 0 // bankPrivate ptr 0x08 selects RAM[0]
	vm := NewVM(16)
	vm.reg = 9
	vm.memPtr = bankPrivate
	opDiv(vm, ctx, self)
	if vm.reg != 0 {
		t.Fatalf("reg after DIV by zero = %d, want 0", vm.reg)
	}
}

func TestOpDivNonZero(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.RAM[0] = 3
	vm := NewVM(16)
	vm.reg = 9
	vm.memPtr = bankPrivate
	opDiv(vm, ctx, self)
	if vm.reg != 3 {
		t.Fatalf("reg after DIV 9/3 = %d, want 3", vm.reg)
	}
}

func TestOpAddMasksToRegMask(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.RAM[0] = 10
	vm := NewVM(16)
	vm.reg = 250
	vm.memPtr = bankPrivate
	opAdd(vm, ctx, self)
	if vm.reg != 4 { // 250 + 10 wraps mod 256
		t.Fatalf("reg after ADD overflow = %d, want 4", vm.reg)
	}
}

func TestOpKillClearsNonViableNeighbor(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.Facing = 0 // N in 4-connected: (0,0) -> (0, height-1)
	neighbor := store.At(0, 1)
	neighbor.ParentID = 0 // fresh cell always grants access
	neighbor.Genome = []byte{5, 5, 5}
	neighbor.Generation = 1

	vm := NewVM(16)
	opKill(vm, ctx, self)

	for i, b := range neighbor.Genome {
		if b != StopOpcode {
			t.Fatalf("neighbor.Genome[%d] = %d, want StopOpcode after KILL", i, b)
		}
	}
	if neighbor.ParentID != 0 || neighbor.Generation != 0 {
		t.Fatal("KILL must reset the neighbor's identity")
	}
}

func TestOpShareSplitsEnergyEvenly(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.Energy = 100
	neighbor := store.At(0, 1)
	neighbor.Energy = 50
	neighbor.ParentID = 0 // always grants access

	vm := NewVM(16)
	opShare(vm, ctx, self)

	if self.Energy+neighbor.Energy != 150 {
		t.Fatal("SHARE must conserve total energy")
	}
	if neighbor.Energy != 75 || self.Energy != 75 {
		t.Fatalf("SHARE split = (%d,%d), want (75,75)", self.Energy, neighbor.Energy)
	}
}

func TestOpSetpUnmasked(t *testing.T) {
	vm := NewVM(16)
	vm.reg = 200
	opSetp(vm, nil, nil)
	if vm.ioPtr != 200 {
		t.Fatalf("ioPtr after SETP = %d, want 200 (unmasked)", vm.ioPtr)
	}
}

func TestOpNextbPrevbStepByEight(t *testing.T) {
	vm := NewVM(16)
	vm.memPtr = 0x00
	opNextb(vm, nil, nil)
	if vm.memPtr != 0x08 {
		t.Fatalf("memPtr after NEXTB = %#x, want 0x08", vm.memPtr)
	}
	opPrevb(vm, nil, nil)
	if vm.memPtr != 0x00 {
		t.Fatalf("memPtr after PREVB = %#x, want 0x00", vm.memPtr)
	}
}

func TestExecuteStopsOnStopOpcode(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.Energy = 100
	self.Genome[0] = OpStop
	vm := NewVM(16)
	vm.Execute(self, ctx)
	if ctx.stats.CellExecs != 1 {
		t.Fatalf("CellExecs = %d, want 1", ctx.stats.CellExecs)
	}
	if self.Energy != 99 {
		t.Fatalf("energy after one STOP = %d, want 99", self.Energy)
	}
}

func TestExecuteHaltsOnEnergyExhaustion(t *testing.T) {
	ctx, store := newTestContext(t, 2, 2, 16)
	self := store.At(0, 0)
	self.Energy = 3
	for i := range self.Genome {
		self.Genome[i] = OpZero // never halts on its own
	}
	vm := NewVM(16)
	vm.Execute(self, ctx)
	if self.Energy != 0 {
		t.Fatalf("energy after exhaustion = %d, want 0", self.Energy)
	}
}
