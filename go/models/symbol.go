package models

import (
	"debug/elf"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
)

type SymbolAttrs struct {
	Imported   bool
	Function   bool
	SourceFile string
}

type Symbol struct {
	Name       string
	Start, End uint64
	Size       uint64
	Bind       elf.SymBind
	Type       elf.SymType
	Visibility elf.SymVis
	Dynamic    bool
	Attrs      SymbolAttrs
}

func (s *Symbol) Contains(addr uint64) bool {
	return s.Start <= addr && (s.End > addr || s.End == s.Start)
}

// SymbolTable keeps at most one symbol per address. The first insertion for
// an address wins and later ones are dropped.
type SymbolTable struct {
	byAddr map[uint64]*Symbol
	byName map[string]*Symbol
	sorted []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byAddr: make(map[uint64]*Symbol),
		byName: make(map[string]*Symbol),
	}
}

// Add inserts sym unless its address is taken, in which case the existing
// symbol is returned with false.
func (t *SymbolTable) Add(sym Symbol) (*Symbol, bool) {
	if old, ok := t.byAddr[sym.Start]; ok {
		return old, false
	}
	if sym.End < sym.Start {
		sym.End = sym.Start
	}
	s := &sym
	t.byAddr[s.Start] = s
	if _, ok := t.byName[s.Name]; !ok {
		t.byName[s.Name] = s
	}
	t.sorted = nil
	return s, true
}

// Create is shorthand for adding a bare named symbol.
func (t *SymbolTable) Create(addr uint64, name string) (*Symbol, bool) {
	return t.Add(Symbol{Name: name, Start: addr, End: addr})
}

func (t *SymbolTable) Find(addr uint64) *Symbol { return t.byAddr[addr] }

func (t *SymbolTable) FindName(name string) *Symbol { return t.byName[name] }

func (t *SymbolTable) Len() int { return len(t.byAddr) }

// All returns the symbols in address order.
func (t *SymbolTable) All() []*Symbol {
	if t.sorted == nil {
		t.sorted = make([]*Symbol, 0, len(t.byAddr))
		for _, s := range t.byAddr {
			t.sorted = append(t.sorted, s)
		}
		sort.Slice(t.sorted, func(i, j int) bool { return t.sorted[i].Start < t.sorted[j].Start })
	}
	return t.sorted
}

// Range returns the symbols with start in [start, end), in address order.
func (t *SymbolTable) Range(start, end uint64) []*Symbol {
	all := t.All()
	i := sort.Search(len(all), func(i int) bool { return all[i].Start >= start })
	j := i
	for j < len(all) && all[j].Start < end {
		j++
	}
	return all[i:j]
}

// SortedByName returns the symbols in natural name order (sym2 < sym10).
func (t *SymbolTable) SortedByName() []*Symbol {
	ret := append([]*Symbol(nil), t.All()...)
	sort.SliceStable(ret, func(i, j int) bool { return sortorder.NaturalLess(ret[i].Name, ret[j].Name) })
	return ret
}

// Nearest returns the closest symbol at or below addr and the distance to it.
func (t *SymbolTable) Nearest(addr uint64) (*Symbol, uint64) {
	all := t.All()
	i := sort.Search(len(all), func(i int) bool { return all[i].Start > addr })
	for i--; i >= 0; i-- {
		if s := all[i]; s.Contains(addr) {
			return s, addr - s.Start
		}
	}
	return nil, 0
}
