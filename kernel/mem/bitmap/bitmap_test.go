package bitmap

import "testing"

func TestSetOnesAndZeros(t *testing.T) {
	words := make([]uint64, 2)
	bm := New(words)

	bm.SetOnes(1, 3)
	if bm.Get(0) || !bm.Get(1) || !bm.Get(2) || bm.Get(3) {
		t.Fatal("SetOnes set the wrong bits")
	}

	bm.SetOnes(63, 66)
	if !bm.Get(63) || !bm.Get(64) || !bm.Get(65) || bm.Get(66) {
		t.Fatal("SetOnes did not cross the word boundary correctly")
	}

	bm.SetZeros(1, 3)
	if bm.Get(1) || bm.Get(2) {
		t.Fatal("SetZeros did not clear the requested bits")
	}
	if !bm.Get(63) || !bm.Get(64) {
		t.Fatal("SetZeros clobbered bits outside its range")
	}
}

func TestSetRangePanics(t *testing.T) {
	specs := []struct {
		name   string
		lo, hi int
	}{
		{"empty", 5, 5},
		{"inverted", 5, 1},
		{"out of range", 0, 129},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic")
				}
			}()

			bm := New(make([]uint64, 2))
			bm.SetOnes(spec.lo, spec.hi)
		})
	}
}

func TestConsecutiveZerosFitsWithinWord(t *testing.T) {
	bm := New(make([]uint64, 1))
	bm.SetOnes(2, 3) // bit 2 is 1, everything else 0

	var got []Range
	it := bm.ConsecutiveZeros(2)
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, r)
	}

	want := []Range{{0, 2}, {3, 64}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConsecutiveZerosSpansWords(t *testing.T) {
	bm := New(make([]uint64, 3)) // all zero, 192 bits

	it := bm.ConsecutiveZeros(100)
	r, ok := it.Next()
	if !ok {
		t.Fatal("expected a run")
	}
	if r.Start != 0 || r.Len() < 100 {
		t.Fatalf("unexpected run %v", r)
	}
}

func TestConsecutiveZerosSkipsShortRuns(t *testing.T) {
	bm := New(make([]uint64, 1))
	bm.SetOnes(10, 11)
	bm.SetOnes(20, 21)

	it := bm.ConsecutiveZeros(12)
	r, ok := it.Next()
	if !ok {
		t.Fatal("expected a run")
	}
	if r.Len() < 12 {
		t.Fatalf("run %v shorter than requested fit", r)
	}
	if r.Start != 21 {
		t.Fatalf("run %v did not skip the short runs [0, 10) and [11, 20)", r)
	}
}

func TestConsecutiveZerosNoMatch(t *testing.T) {
	bm := New(make([]uint64, 1))
	for i := 0; i < 64; i += 2 {
		bm.SetOnes(i, i+1)
	}

	it := bm.ConsecutiveZeros(2)
	if _, ok := it.Next(); ok {
		t.Fatal("expected no run of length 2 in an alternating bitmap")
	}
}

func TestConsecutiveZerosPanicsOnNonPositiveFit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()

	bm := New(make([]uint64, 1))
	bm.ConsecutiveZeros(0)
}
