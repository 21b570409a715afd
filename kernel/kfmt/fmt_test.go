package kfmt

import (
	"bytes"
	"testing"
)

func TestFprintfVerbs(t *testing.T) {
	specs := []struct {
		name   string
		format string
		args   []interface{}
		want   string
	}{
		{"string", "hello %s", []interface{}{"world"}, "hello world"},
		{"decimal", "%d", []interface{}{int(-42)}, "-42"},
		{"hex lower", "%x", []interface{}{uint32(0xBEEF)}, "beef"},
		{"hex upper", "%X", []interface{}{uint32(0xbeef)}, "BEEF"},
		{"octal", "%o", []interface{}{8}, "10"},
		{"binary", "%b", []interface{}{5}, "101"},
		{"bool true", "%t", []interface{}{true}, "true"},
		{"bool false", "%t", []interface{}{false}, "false"},
		{"percent literal", "100%%", nil, "100%"},
		{"unknown verb", "%q", []interface{}{"x"}, "%q"},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := Fprintf(&buf, spec.format, spec.args...); err != nil {
				t.Fatalf("Fprintf returned error: %v", err)
			}
			if buf.String() != spec.want {
				t.Fatalf("got %q, want %q", buf.String(), spec.want)
			}
		})
	}
}

func TestFprintfZero(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Fprintf(&buf, "%d", 0); err != nil {
		t.Fatalf("Fprintf returned error: %v", err)
	}
	if buf.String() != "0" {
		t.Fatalf("got %q, want %q", buf.String(), "0")
	}
}
