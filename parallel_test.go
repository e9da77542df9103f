package caravel

import (
	"testing"
)

func TestParallelForCoversAllRows(t *testing.T) {
	// Large enough to take the parallel path under the default config
	n := DefaultParallelConfig().MinRowsForParallel * 2
	out := make([]int, n)

	ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = i
		}
	})

	for i, v := range out {
		if v != i {
			t.Fatalf("row %d not processed: got %d", i, v)
		}
	}
}

func TestParallelForSmallInput(t *testing.T) {
	out := make([]int, 10)
	ParallelFor(10, func(start, end int) {
		for i := start; i < end; i++ {
			out[i]++
		}
	})
	for i, v := range out {
		if v != 1 {
			t.Errorf("row %d processed %d times, want 1", i, v)
		}
	}
}

func TestMorselIterator(t *testing.T) {
	mi := NewMorselIterator(10, 4)

	expected := []Morsel{{0, 4}, {4, 8}, {8, 10}}
	for i, exp := range expected {
		m := mi.Next()
		if m == nil {
			t.Fatalf("morsel %d missing", i)
		}
		if m.Start != exp.Start || m.End != exp.End {
			t.Errorf("morsel %d = [%d, %d), want [%d, %d)", i, m.Start, m.End, exp.Start, exp.End)
		}
	}
	if mi.Next() != nil {
		t.Error("iterator should be exhausted")
	}
}

func TestPartitionedHashIndexLookup(t *testing.T) {
	hashes := []uint64{
		fnvHashUint64(2000),
		fnvHashUint64(2001),
		fnvHashUint64(2000),
		fnvHashUint64(2002),
	}

	phi := NewPartitionedHashIndex(4)
	phi.BuildParallel(hashes)

	rows := phi.Lookup(fnvHashUint64(2000))
	if len(rows) != 2 || rows[0] != 0 || rows[1] != 2 {
		t.Errorf("Lookup(2000) = %v, want [0 2]", rows)
	}
	if rows := phi.Lookup(fnvHashUint64(2002)); len(rows) != 1 || rows[0] != 3 {
		t.Errorf("Lookup(2002) = %v, want [3]", rows)
	}
	if rows := phi.Lookup(fnvHashUint64(1900)); len(rows) != 0 {
		t.Errorf("Lookup(1900) = %v, want empty", rows)
	}
}
