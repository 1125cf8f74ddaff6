package loader

import (
	"debug/elf"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

// Synthesised extern addresses count down from here. 0xffffffff is left for
// callers that want a "no address" marker.
const fakeExternBase = 0xfffffffe

type relocation struct {
	Off       uint64
	Type      uint32
	Sym       uint32
	Addend    int32
	HasAddend bool
}

// relocator applies the records of every section of Type for one machine.
type relocator struct {
	Type  elf.SectionType
	Apply func(e *ElfLoader, s *models.Section)
}

var relocators = map[elf.Machine]relocator{
	elf.EM_386:         {elf.SHT_REL, (*ElfLoader).relocate386},
	elf.EM_SPARC:       {elf.SHT_RELA, (*ElfLoader).scanSparc},
	elf.EM_SPARC32PLUS: {elf.SHT_RELA, (*ElfLoader).scanSparc},
}

func (e *ElfLoader) readRelocs(s *models.Section, rela bool) ([]relocation, error) {
	entSize := uint64(rel32Size)
	if rela {
		entSize = rela32Size
	}
	if !e.img.InBounds(s.Offset, s.Size) {
		return nil, models.Corrupt("relocation section %q is outside the image", s.Name)
	}
	ret := make([]relocation, 0, s.Size/entSize)
	for pos := uint64(0); pos+entSize <= s.Size; pos += entSize {
		off := s.Offset + pos
		var r relocation
		if rela {
			var raw elf.Rela32
			if _, err := e.img.Unpack(off, &raw); err != nil {
				return nil, err
			}
			r = relocation{Off: uint64(raw.Off), Type: elf.R_TYPE32(raw.Info), Sym: elf.R_SYM32(raw.Info), Addend: raw.Addend, HasAddend: true}
		} else {
			var raw elf.Rel32
			if _, err := e.img.Unpack(off, &raw); err != nil {
				return nil, err
			}
			r = relocation{Off: uint64(raw.Off), Type: elf.R_TYPE32(raw.Info), Sym: elf.R_SYM32(raw.Info)}
		}
		ret = append(ret, r)
	}
	return ret, nil
}

// relocDest locates the word a record patches. It returns the word's image
// offset and its loaded address (P).
func (e *ElfLoader) relocDest(s *models.Section, off uint64) (word, p uint64, ok bool) {
	var dest *models.Section
	if e.isRelocatable() {
		// r_offset is relative to the section named by sh_info
		dest = e.sections.Index(int(s.Info))
		if dest == nil {
			return 0, 0, false
		}
		word, p = dest.Offset+off, dest.Addr+off
	} else {
		dest = e.sections.ByAddr(off)
		if dest == nil {
			return 0, 0, false
		}
		word, p = dest.Offset+(off-dest.Addr), off
	}
	// the patched word must sit wholly inside its section
	rel := p - dest.Addr
	if dest.Type == elf.SHT_NOBITS || rel+4 < rel || rel+4 > dest.Size {
		return 0, 0, false
	}
	return word, p, true
}

func (e *ElfLoader) applyRelocations() {
	mach := elf.Machine(e.header.Machine)
	r, ok := relocators[mach]
	if !ok {
		e.warn(errors.Wrapf(models.ErrUnsupportedMachine, "relocations for %s", mach))
		return
	}
	for _, s := range e.sections.All() {
		if s.Type == r.Type && s.Size > 0 {
			r.Apply(e, s)
		}
	}
}

func (e *ElfLoader) readSym(symtab *models.Section, idx uint32) (elf.Sym32, error) {
	var sym elf.Sym32
	if idx == 0 {
		return sym, nil
	}
	if symtab == nil {
		return sym, models.Corrupt("symbol %d without a symbol table", idx)
	}
	entSize := symtab.EntSize
	if entSize < sym32Size {
		entSize = sym32Size
	}
	if uint64(idx)*entSize >= symtab.Size {
		return sym, models.Corrupt("symbol %d past the end of %q", idx, symtab.Name)
	}
	_, err := e.img.Unpack(symtab.Offset+uint64(idx)*entSize, &sym)
	return sym, err
}

// sectionAddr adds the address of the symbol's section for relocatable
// objects, where symbol values are section relative.
func (e *ElfLoader) sectionAddr(sym *elf.Sym32) uint64 {
	if e.isRelocatable() && e.realSection(sym.Shndx) {
		return e.sections.Index(int(sym.Shndx)).Addr
	}
	return 0
}

func (e *ElfLoader) relocate386(s *models.Section) {
	relocs, err := e.readRelocs(s, false)
	if err != nil {
		e.warn(errors.Wrapf(err, "reading %s", s.Name))
		return
	}
	symtab := e.sections.Index(int(s.Link))
	var strtab *models.Section
	if symtab != nil {
		strtab = e.sections.Index(int(symtab.Link))
	}
	for _, r := range relocs {
		typ := elf.R_386(r.Type)
		switch typ {
		case elf.R_386_NONE, elf.R_386_JMP_SLOT, elf.R_386_RELATIVE:
			continue
		case elf.R_386_32, elf.R_386_PC32:
		default:
			e.warn(errors.Wrapf(models.ErrUnsupportedRelocation, "%s at 0x%x in %s", typ, r.Off, s.Name))
			continue
		}
		word, p, ok := e.relocDest(s, r.Off)
		if !ok {
			e.warn(models.Corrupt("%s: relocation at 0x%x is outside its section", s.Name, r.Off))
			continue
		}
		sym, err := e.readSym(symtab, r.Sym)
		if err != nil {
			e.warn(errors.Wrapf(err, "%s: relocation at 0x%x", s.Name, r.Off))
			continue
		}
		a, err := e.img.ReadU32(word)
		if err != nil {
			e.warn(models.Corrupt("%s: relocation at 0x%x: %v", s.Name, r.Off, err))
			continue
		}
		var v uint32
		if typ == elf.R_386_32 {
			S := uint64(sym.Value) + e.sectionAddr(&sym)
			v = uint32(S) + a
		} else {
			S := e.pcRelTarget(r.Sym, &sym, strtab)
			v = uint32(S) + a - uint32(p)
		}
		if err := e.img.WriteU32(word, v); err != nil {
			e.warn(models.Corrupt("%s: relocation at 0x%x: %v", s.Name, r.Off, err))
		}
	}
}

// pcRelTarget resolves S for R_386_PC32. A section symbol resolves to its
// section. A symbol with no value isn't in this module and isn't reached
// through the PLT, so it gets a fresh synthetic address near the top of
// the address space and an imported symbol there. Only names synthesised
// by this load are reused.
func (e *ElfLoader) pcRelTarget(idx uint32, sym *elf.Sym32, strtab *models.Section) uint64 {
	if idx == 0 {
		return 0
	}
	if elf.ST_TYPE(sym.Info) == elf.STT_SECTION {
		if !e.realSection(sym.Shndx) {
			e.warn(models.Corrupt("section symbol %d names section %d", idx, sym.Shndx))
			return 0
		}
		return e.sections.Index(int(sym.Shndx)).Addr
	}
	if sym.Value != 0 {
		return uint64(sym.Value) + e.sectionAddr(sym)
	}
	name := ""
	if strtab != nil {
		if s, err := e.img.CString(strtab.Offset + uint64(sym.Name)); err == nil {
			name = StripVersion(s)
		}
	}
	if addr, ok := e.externs[name]; ok && name != "" {
		return addr
	}
	addr := e.nextFake
	e.nextFake--
	if name != "" {
		e.externs[name] = addr
	}
	if sym, ok := e.symbols.Create(addr, name); ok {
		sym.Bind = elf.STB_GLOBAL
		sym.Attrs.Imported = true
	}
	return addr
}

// scanSparc only reports: SPARC relocation algebra isn't implemented.
func (e *ElfLoader) scanSparc(s *models.Section) {
	relocs, err := e.readRelocs(s, true)
	if err != nil {
		e.warn(errors.Wrapf(err, "reading %s", s.Name))
		return
	}
	for _, r := range relocs {
		if typ := elf.R_SPARC(r.Type); typ != elf.R_SPARC_NONE {
			e.warn(errors.Wrapf(models.ErrUnsupportedRelocation, "%s at 0x%x in %s", typ, r.Off, s.Name))
		}
	}
}

// IsRelocationAt reports whether an i386 relocation patches the word at addr.
func (e *ElfLoader) IsRelocationAt(addr uint64) bool {
	if !e.loaded() || elf.Machine(e.header.Machine) != elf.EM_386 {
		return false
	}
	for _, s := range e.sections.All() {
		if s.Type != elf.SHT_REL || s.Size == 0 {
			continue
		}
		relocs, err := e.readRelocs(s, false)
		if err != nil {
			continue
		}
		for _, r := range relocs {
			if _, p, ok := e.relocDest(s, r.Off); ok && p == addr {
				return true
			}
		}
	}
	return false
}
