package loader

import (
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

const dyn32Size = 8

// markImports flags every symbol inside .plt as imported.
func (e *ElfLoader) markImports() {
	for _, sym := range e.symbols.Range(e.pltMin, e.pltMax) {
		sym.Attrs.Imported = true
	}
}

// NativeToHostOffset translates a loaded address into an offset in the
// image, using the address/offset delta of the first addressable section.
func (e *ElfLoader) NativeToHostOffset(addr uint64) (uint64, error) {
	var first *models.Section
	for _, s := range e.Sections().All() {
		if s.Size > 0 {
			first = s
			break
		}
	}
	if first == nil {
		return 0, errors.Wrap(models.ErrMissingSection, "no addressable sections")
	}
	off := addr - first.Addr + first.Offset
	if !e.img.InBounds(off, 1) {
		return 0, errors.Wrapf(models.ErrOutOfBounds, "address 0x%x maps to offset 0x%x", addr, off)
	}
	return off, nil
}

func (e *ElfLoader) dynamic() ([]elf.Dyn32, error) {
	dyn := e.Sections().ByName(".dynamic")
	if dyn == nil {
		return nil, nil
	}
	var ret []elf.Dyn32
	for pos := uint64(0); pos+dyn32Size <= dyn.Size; pos += dyn32Size {
		var d elf.Dyn32
		if _, err := e.img.Unpack(dyn.Offset+pos, &d); err != nil {
			return nil, models.Corrupt(".dynamic entry at 0x%x: %v", pos, err)
		}
		if elf.DynTag(d.Tag) == elf.DT_NULL {
			break
		}
		ret = append(ret, d)
	}
	return ret, nil
}

// Dependencies lists the DT_NEEDED libraries. A static binary has none.
func (e *ElfLoader) Dependencies() ([]string, error) {
	dyns, err := e.dynamic()
	if err != nil || len(dyns) == 0 {
		return nil, err
	}
	var strtab uint64
	found := false
	for _, d := range dyns {
		if elf.DynTag(d.Tag) == elf.DT_STRTAB {
			strtab, found = uint64(d.Val), true
			break
		}
	}
	if !found {
		return nil, nil
	}
	base, err := e.NativeToHostOffset(strtab)
	if err != nil {
		return nil, errors.Wrap(err, "DT_STRTAB")
	}
	var ret []string
	for _, d := range dyns {
		if elf.DynTag(d.Tag) != elf.DT_NEEDED {
			continue
		}
		name, err := e.img.CString(base + uint64(d.Val))
		if err != nil {
			return nil, models.Corrupt("DT_NEEDED name: %v", err)
		}
		ret = append(ret, name)
	}
	return ret, nil
}
