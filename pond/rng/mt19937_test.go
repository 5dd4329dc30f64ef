package rng

import "testing"

func TestNewDiscardsWarmup(t *testing.T) {
	a := New(1)
	b := &MT19937{}
	b.Seed(1)
	for i := 0; i < warmupDraw; i++ {
		b.Uint32()
	}
	for i := 0; i < 8; i++ {
		got, want := a.Uint32(), b.Uint32()
		if got != want {
			t.Fatalf("draw %d: got=%d want=%d", i, got, want)
		}
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("draw %d diverged between identically seeded generators", i)
		}
	}
}

func TestDifferentSeedDiverges(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 16; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("generators seeded differently produced identical sequences")
	}
}

func TestWordConcatenatesTwoDraws(t *testing.T) {
	a := New(7)
	b := New(7)
	hi := uint64(b.Uint32())
	lo := uint64(b.Uint32())
	want := hi<<32 | lo
	if got := a.Word(); got != want {
		t.Fatalf("Word() = %d, want %d", got, want)
	}
}

func TestUint32nInBound(t *testing.T) {
	r := New(3)
	for i := 0; i < 1000; i++ {
		if got := r.Uint32n(7); got >= 7 {
			t.Fatalf("Uint32n(7) = %d, out of bound", got)
		}
	}
}

func TestUint64nInBound(t *testing.T) {
	r := New(4)
	for i := 0; i < 1000; i++ {
		if got := r.Uint64n(1000); got >= 1000 {
			t.Fatalf("Uint64n(1000) = %d, out of bound", got)
		}
	}
}

func TestBitIsLowBitOfDraw(t *testing.T) {
	a := New(9)
	b := New(9)
	want := b.Uint32()&1 == 1
	if got := a.Bit(); got != want {
		t.Fatalf("Bit() = %v, want %v", got, want)
	}
}
