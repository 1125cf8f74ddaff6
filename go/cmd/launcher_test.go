package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func testRegistry() *registry {
	r := &registry{commands: make(map[string]*command)}
	nop := func([]string) {}
	r.add(&command{"inspect", "info", "describe an image", nop})
	r.add(&command{"inspect", "dump", "hexdump a section", nop})
	r.add(&command{"export", "snapshot", "save a snapshot", nop})
	r.add(&command{"inspect", "disasm", "disassemble", nop})
	return r
}

func TestRegistryUsage(t *testing.T) {
	var buf bytes.Buffer
	testRegistry().usage(&buf, "elfcorn")
	expected := `Inspect commands:
  disasm    disassemble
  dump      hexdump a section
  info      describe an image

Export commands:
  snapshot  save a snapshot

Example: elfcorn info -color bins/x86.linux.elf

`
	if buf.String() != expected {
		t.Errorf("usage mismatch:\n%s", buf.String())
	}
}

func TestRegistryLookup(t *testing.T) {
	r := testRegistry()
	for name, want := range map[string]string{"info": "info", "sn": "snapshot", "du": "dump"} {
		c, err := r.lookup(name)
		if err != nil {
			t.Errorf("lookup(%q): %v", name, err)
		} else if c.name != want {
			t.Errorf("lookup(%q) = %q, want %q", name, c.name, want)
		}
	}
	if _, err := r.lookup("d"); err == nil || !strings.Contains(err.Error(), "disasm, dump") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
	if _, err := r.lookup("zzz"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
}
