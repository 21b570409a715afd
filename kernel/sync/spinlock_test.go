package sync

import (
	"testing"
)

func TestSpinlockMutualExclusion(t *testing.T) {
	var l Spinlock
	l.Acquire()
	if l.TryAcquire() {
		t.Fatal("TryAcquire succeeded while lock was held")
	}
	l.Release()
	if !l.TryAcquire() {
		t.Fatal("TryAcquire failed after Release")
	}
	l.Release()
}

func TestSpinlockYieldFnCalledOnContention(t *testing.T) {
	var l Spinlock
	l.Acquire()

	calls := 0
	SetYieldFn(func() {
		calls++
		if calls == 3 {
			l.Release()
		}
	})
	defer SetYieldFn(nil)

	l.Acquire()
	if calls < 3 {
		t.Fatalf("expected yieldFn to run until release, got %d calls", calls)
	}
	l.Release()
}
