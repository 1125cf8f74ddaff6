package loader

import (
	"debug/elf"
	"strings"

	"github.com/lunixbochs/elfcorn/go/models"
)

const (
	rel32Size  = 8
	rela32Size = 12
)

// findRelPltOffset recovers the PLT address of dynamic symbol i from the
// .rel.plt (or .rela.plt) table. Some toolchains leave dynamic symbol values
// at zero, and the relocation table isn't guaranteed to line up with the
// symbol table, so the search starts near i and walks backwards, wrapping,
// until it has seen every record. It returns 0 when nothing matches.
func (e *ElfLoader) findRelPltOffset(i int) uint64 {
	plt := e.sections.ByName(".plt")
	if plt == nil {
		return 0
	}
	rel, entSize := e.sections.ByName(".rel.plt"), uint64(rel32Size)
	if rel == nil {
		rel, entSize = e.sections.ByName(".rela.plt"), rela32Size
	}
	if rel == nil {
		e.config.Debugf("[loader] %v: .rel.plt", models.ErrMissingSection)
		return 0
	}
	n := rel.Size / entSize
	if n == 0 || i < 0 {
		return 0
	}
	first := uint64(i)
	if first > n-1 {
		first = n - 1
	}
	cur := first
	for {
		pos := rel.Offset + cur*entSize
		off, err := e.img.ReadU32(pos)
		if err != nil {
			return 0
		}
		info, err := e.img.ReadU32(pos + 4)
		if err != nil {
			return 0
		}
		if int(info>>8) == i {
			return e.pltEntry(plt, uint64(off), elf.R_386(info&0xff))
		}
		if cur == 0 {
			cur = n - 1
		} else {
			cur--
		}
		if cur == first {
			return 0
		}
	}
}

// pltEntry maps a matched .rel.plt record to its PLT address, following one
// level of GOT indirection when the target lives in a GOT section.
func (e *ElfLoader) pltEntry(plt *models.Section, target uint64, typ elf.R_386) uint64 {
	got := e.sections.ByAddr(target)
	if got == nil || !strings.Contains(got.Name, "got") {
		// the record points straight into .plt
		return target
	}
	val, err := e.img.ReadU32(got.Offset + (target - got.Addr))
	if err != nil {
		return 0
	}
	if typ == elf.R_386_JMP_SLOT {
		return uint64(val - 6)
	}
	if plt.EntSize == 0 {
		return plt.Addr
	}
	return plt.Addr + (uint64(val)%plt.EntSize)*plt.EntSize
}
