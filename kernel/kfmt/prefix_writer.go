package kfmt

import "io"

// PrefixWriter wraps an io.Writer and injects a fixed prefix at the start of
// every line written through it, so that output from different drivers (the
// frame allocator, the page-table code, the scheduler) can be told apart on
// a single shared console.
type PrefixWriter struct {
	out        io.Writer
	prefix     string
	atLineHead bool
}

// NewPrefixWriter returns a PrefixWriter that tags each line written to out
// with prefix.
func NewPrefixWriter(out io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{out: out, prefix: prefix, atLineHead: true}
}

// Write implements io.Writer, splitting p on newlines and prepending the
// prefix to each line as it begins.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if pw.atLineHead {
			if _, err := pw.out.Write([]byte(pw.prefix)); err != nil {
				return written, err
			}
			pw.atLineHead = false
		}

		nl := indexByte(p, '\n')
		if nl < 0 {
			n, err := pw.out.Write(p)
			written += n
			return written, err
		}

		n, err := pw.out.Write(p[:nl+1])
		written += n
		if err != nil {
			return written, err
		}
		pw.atLineHead = true
		p = p[nl+1:]
	}

	return written, nil
}

func indexByte(p []byte, c byte) int {
	for i, b := range p {
		if b == c {
			return i
		}
	}
	return -1
}
