package models

import (
	"debug/elf"
	"fmt"
	"sort"
)

type SectionFlags struct {
	Code, Data, Bss, ReadOnly bool
}

func (f SectionFlags) String() string {
	flags := []bool{f.Code, f.Data, f.Bss, f.ReadOnly}
	chars := []string{"c", "d", "b", "r"}
	out := ""
	for i := range flags {
		if flags[i] {
			out += chars[i]
		} else {
			out += "-"
		}
	}
	return out
}

type Section struct {
	Index   int
	Name    string
	Addr    uint64
	Size    uint64
	EntSize uint64
	Align   uint64
	// Offset is the position of the section contents in the image buffer.
	Offset uint64
	Type   elf.SectionType
	Link   uint32
	Info   uint32
	Flags  SectionFlags
}

func (s *Section) Contains(addr uint64) bool {
	return addr >= s.Addr && addr < s.Addr+s.Size
}

func (s *Section) String() string {
	return fmt.Sprintf("[%2d] 0x%08x-0x%08x %s %-20s %s", s.Index, s.Addr, s.Addr+s.Size, s.Flags, s.Name, s.Type)
}

// SectionTable holds every section in file order. Only sections with a
// non-zero size are addressable through ByAddr and ByName.
type SectionTable struct {
	list   []*Section
	sorted []*Section
}

func NewSectionTable(list []*Section) *SectionTable {
	t := &SectionTable{list: list}
	for _, s := range list {
		if s.Size > 0 {
			t.sorted = append(t.sorted, s)
		}
	}
	sort.SliceStable(t.sorted, func(i, j int) bool { return t.sorted[i].Addr < t.sorted[j].Addr })
	return t
}

func (t *SectionTable) Len() int { return len(t.list) }

func (t *SectionTable) All() []*Section { return t.list }

// Index returns the section at file index i, or nil.
func (t *SectionTable) Index(i int) *Section {
	if i < 0 || i >= len(t.list) {
		return nil
	}
	return t.list[i]
}

// Addressable returns the non-empty sections in address order.
func (t *SectionTable) Addressable() []*Section { return t.sorted }

func (t *SectionTable) ByName(name string) *Section {
	for _, s := range t.list {
		if s.Size > 0 && s.Name == name {
			return s
		}
	}
	return nil
}

// ByAddr binary searches for the sections starting at or below addr and
// returns the closest one containing it.
func (t *SectionTable) ByAddr(addr uint64) *Section {
	i := sort.Search(len(t.sorted), func(i int) bool { return t.sorted[i].Addr > addr })
	for i--; i >= 0; i-- {
		if s := t.sorted[i]; s.Contains(addr) {
			return s
		}
	}
	return nil
}

// Range returns [start, end) of the named section, or zeros when missing.
func (t *SectionTable) Range(name string) (uint64, uint64) {
	if s := t.ByName(name); s != nil {
		return s.Addr, s.Addr + s.Size
	}
	return 0, 0
}
