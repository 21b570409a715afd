// Package kfmt provides a minimal, non-allocating replacement for fmt.Printf
// suitable for use before the Go runtime's heap is available. Output is
// buffered in a ring buffer until a real sink (a console writer) is attached
// via SetOutputSink.
package kfmt

import "io"

var (
	ring         ringBuffer
	outputSink   io.Writer    = &ring
)

// SetOutputSink flushes any buffered boot-time output into w and makes w the
// active sink for subsequent Printf calls.
func SetOutputSink(w io.Writer) {
	if bw, ok := w.(byteWriter); ok {
		ring.WriteTo(bw)
	} else {
		adapter := &byteWriterAdapter{w: w}
		ring.WriteTo(adapter)
	}
	outputSink = w
}

type byteWriterAdapter struct {
	w   io.Writer
	buf [1]byte
}

func (a *byteWriterAdapter) WriteByte(b byte) error {
	a.buf[0] = b
	_, err := a.w.Write(a.buf[:])
	return err
}

// Printf formats according to a format specifier and writes to the active
// output sink.
func Printf(format string, args ...interface{}) (int, error) {
	return Fprintf(outputSink, format, args...)
}

// Fprintf formats according to a format specifier and writes to w. Supported
// verbs: %s %d %x %X %o %b %c %t %p %%. Width and precision are not
// supported; unknown verbs are emitted verbatim prefixed by '%'.
func Fprintf(w io.Writer, format string, args ...interface{}) (int, error) {
	var (
		written int
		argIdx  int
		numBuf  [64]byte
	)

	emit := func(p []byte) error {
		n, err := w.Write(p)
		written += n
		return err
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			numBuf[0] = c
			if err := emit(numBuf[:1]); err != nil {
				return written, err
			}
			continue
		}

		i++
		if i >= len(format) {
			break
		}

		verb := format[i]
		if verb == '%' {
			if err := emit([]byte{'%'}); err != nil {
				return written, err
			}
			continue
		}

		var arg interface{}
		if argIdx < len(args) {
			arg = args[argIdx]
			argIdx++
		}

		var out []byte
		switch verb {
		case 's':
			out = []byte(toString(arg))
		case 'c':
			out = []byte(string(rune(toInt64(arg))))
		case 't':
			if b, ok := arg.(bool); ok && b {
				out = []byte("true")
			} else {
				out = []byte("false")
			}
		case 'd':
			out = formatInt(numBuf[:0], toInt64(arg), 10, false)
		case 'x':
			out = formatInt(numBuf[:0], toInt64(arg), 16, false)
		case 'X':
			out = formatInt(numBuf[:0], toInt64(arg), 16, true)
		case 'o':
			out = formatInt(numBuf[:0], toInt64(arg), 8, false)
		case 'b':
			out = formatInt(numBuf[:0], toInt64(arg), 2, false)
		case 'p':
			var ptrBuf [64]byte
			out = append([]byte{'0', 'x'}, formatUint(ptrBuf[:0], toUint64(arg), 16, false)...)
		default:
			if err := emit([]byte{'%', verb}); err != nil {
				return written, err
			}
			continue
		}

		if err := emit(out); err != nil {
			return written, err
		}
	}

	return written, nil
}

func toString(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case nil:
		return "<nil>"
	default:
		return "<unsupported>"
	}
}

func toInt64(arg interface{}) int64 {
	switch v := arg.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case uintptr:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toUint64(arg interface{}) uint64 {
	return uint64(toInt64(arg))
}

const hexDigitsLower = "0123456789abcdef"
const hexDigitsUpper = "0123456789ABCDEF"

// formatInt renders a signed value in the given base, writing into buf[:0]'s
// backing array and returning the filled slice. It never allocates.
func formatInt(buf []byte, v int64, base int, upper bool) []byte {
	u := uint64(v)
	if v < 0 {
		u = uint64(-v)
		buf = append(buf, '-')
	}
	return formatUint(buf, u, base, upper)
}

func formatUint(buf []byte, v uint64, base int, upper bool) []byte {
	digits := hexDigitsLower
	if upper {
		digits = hexDigitsUpper
	}

	if v == 0 {
		return append(buf, '0')
	}

	var tmp [64]byte
	i := len(tmp)
	b := uint64(base)
	for v > 0 {
		i--
		tmp[i] = digits[v%b]
		v /= b
	}
	return append(buf, tmp[i:]...)
}
