package kfmt

import "testing"

type byteSliceWriter struct {
	out []byte
}

func (w *byteSliceWriter) WriteByte(b byte) error {
	w.out = append(w.out, b)
	return nil
}

func TestRingBufferFIFO(t *testing.T) {
	var rb ringBuffer
	rb.Write([]byte("hello"))

	var w byteSliceWriter
	rb.WriteTo(&w)

	if string(w.out) != "hello" {
		t.Fatalf("got %q, want %q", w.out, "hello")
	}
	if rb.pending != 0 {
		t.Fatalf("expected buffer to be drained, pending=%d", rb.pending)
	}
}

func TestRingBufferOverwritesOldestWhenFull(t *testing.T) {
	var rb ringBuffer
	filler := make([]byte, ringBufSize)
	for i := range filler {
		filler[i] = 'a'
	}
	rb.Write(filler)
	rb.Write([]byte("Z"))

	var w byteSliceWriter
	rb.WriteTo(&w)

	if len(w.out) != ringBufSize {
		t.Fatalf("got %d bytes, want %d", len(w.out), ringBufSize)
	}
	if w.out[len(w.out)-1] != 'Z' {
		t.Fatalf("expected the newest byte to survive, got last byte %q", w.out[len(w.out)-1])
	}
}
