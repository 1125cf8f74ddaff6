package models

import (
	"testing"
)

func TestSymbolTableDedup(t *testing.T) {
	syms := NewSymbolTable()
	if _, ok := syms.Add(Symbol{Name: "first", Start: 0x1000, End: 0x1010}); !ok {
		t.Fatal("first insert failed")
	}
	old, ok := syms.Add(Symbol{Name: "second", Start: 0x1000})
	if ok || old.Name != "first" {
		t.Fatal("first writer should win")
	}
	if syms.FindName("second") != nil {
		t.Fatal("dropped symbol is findable by name")
	}
	syms.Create(0x2000, "first")
	if s := syms.FindName("first"); s.Start != 0x1000 {
		t.Fatal("name index should keep the first symbol")
	}
	if syms.Len() != 2 {
		t.Fatalf("expected 2 symbols, got %d", syms.Len())
	}
}

func TestSymbolTableOrder(t *testing.T) {
	syms := NewSymbolTable()
	for _, s := range []Symbol{
		{Name: "sym10", Start: 0x30},
		{Name: "sym2", Start: 0x10, End: 0x18},
		{Name: "sym1", Start: 0x20},
	} {
		syms.Add(s)
	}
	all := syms.All()
	if all[0].Start != 0x10 || all[1].Start != 0x20 || all[2].Start != 0x30 {
		t.Fatal("All() is not in address order")
	}
	byName := syms.SortedByName()
	if byName[0].Name != "sym1" || byName[1].Name != "sym2" || byName[2].Name != "sym10" {
		t.Fatalf("bad natural order: %s %s %s", byName[0].Name, byName[1].Name, byName[2].Name)
	}
	if r := syms.Range(0x10, 0x30); len(r) != 2 {
		t.Fatalf("Range returned %d symbols", len(r))
	}
	if r := syms.Range(0, 0); len(r) != 0 {
		t.Fatal("empty range returned symbols")
	}
	s, dist := syms.Nearest(0x14)
	if s == nil || s.Name != "sym2" || dist != 4 {
		t.Fatalf("bad nearest %v 0x%x", s, dist)
	}
	syms.Create(0x5, "early")
	if syms.All()[0].Name != "early" {
		t.Fatal("sorted cache not invalidated")
	}
}
