package models

import (
	"bytes"
	"encoding/binary"
	"flag"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

type statusLoader struct {
	Loader
	secs *SectionTable
}

func (l *statusLoader) OS() string                  { return "linux" }
func (l *statusLoader) Arch() string                { return "x86" }
func (l *statusLoader) Bits() int                   { return 32 }
func (l *statusLoader) ByteOrder() binary.ByteOrder { return binary.LittleEndian }
func (l *statusLoader) Entry() uint64               { return 0x1000 }
func (l *statusLoader) Sections() *SectionTable     { return l.secs }
func (l *statusLoader) FirstExtern() uint64         { return 0x2020 }
func (l *statusLoader) Warnings() []error           { return []error{errors.New("odd relocation")} }

func TestLoadStatus(t *testing.T) {
	l := &statusLoader{secs: NewSectionTable([]*Section{
		{Index: 0},
		{Index: 1, Name: ".text", Addr: 0x1000, Size: 0x10, Flags: SectionFlags{Code: true, ReadOnly: true}},
		{Index: 2, Name: ".bss", Addr: 0x2000, Size: 0x20, Flags: SectionFlags{Bss: true}},
	})}
	status := &LoadStatus{L: l}
	out := status.String(false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	expect := []string{
		"linux x86 32-bit LittleEndian, entry 0x1000",
		"  .text 0x00001000-0x00001010 [c--r]",
		"   .bss 0x00002000-0x00002020 [--b-]",
		"  externs from 0x00002020",
		"  warning: odd relocation",
	}
	if len(lines) != len(expect) {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	for i := range expect {
		if lines[i] != expect[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], expect[i])
		}
	}
	if colored := status.String(true); !strings.Contains(colored, "\x1b[") {
		t.Error("color output has no escape codes")
	}
}

func TestPrintFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("v", false, "verbose output")
	fs.Uint64("base", 0, "load base for sections without an address")
	fs.String("o", "", "write the `file` here instead of stderr, which is the default when nothing else is given on the command line")
	var flags []*flag.Flag
	fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })

	var buf bytes.Buffer
	PrintFlags(&buf, flags)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "  -base uint ") || !strings.Contains(lines[0], "(0)") {
		t.Errorf("bad base line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  -o file ") {
		t.Errorf("bad o line %q", lines[1])
	}
	if strings.TrimSpace(lines[2]) == "" || !strings.HasPrefix(lines[2], "      ") {
		t.Errorf("bad continuation %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "  -v ") || !strings.Contains(lines[3], "(false)") {
		t.Errorf("bad v line %q", lines[3])
	}
	for _, l := range lines {
		if len(l) > 80 {
			t.Errorf("line longer than 80 columns: %q", l)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("aaaa bbbb cccccccccccccc", 10)
	want := []string{"aaaa bbbb", "cccccccccc", "cccc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wrap = %q", got)
	}
}
