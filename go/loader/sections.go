package loader

import (
	"debug/elf"
	"strings"

	"github.com/lunixbochs/elfcorn/go/models"
)

// addrCursor hands out synthetic addresses to sections that have none.
type addrCursor struct {
	next uint64
}

// alloc rounds up to align (when > 1) and advances by size, or by 1 for an
// empty section so no two sections share an address.
func (c *addrCursor) alloc(size, align uint64) uint64 {
	if align > 1 && c.next%align != 0 {
		c.next += align - c.next%align
	}
	addr := c.next
	if size == 0 {
		c.next++
	} else {
		c.next += size
	}
	return addr
}

func isRelocName(name string) bool {
	return strings.HasPrefix(name, ".rel")
}

// buildSections reads the section header table in two passes. Regular
// sections are placed first so relocation sections can't perturb the
// address order of the data sections.
//
// Classification assumes the usual file layout: junk, code, rodata, data,
// bss. Data is only recognised after the first code section.
func (e *ElfLoader) buildSections() error {
	img, h := e.img, &e.header
	var strtab uint64
	haveNames := h.Shstrndx != 0
	if haveNames {
		var sh elf.Section32
		if _, err := img.Unpack(e.sectionHeaderOffset(int(h.Shstrndx)), &sh); err != nil {
			return models.Corrupt("section name table header: %v", err)
		}
		strtab = uint64(sh.Off)
	}

	cursor := &addrCursor{next: e.config.LoadBase}
	list := make([]*models.Section, 0, h.Shnum)
	gotCode := false
	for i := 0; i < int(h.Shnum); i++ {
		var sh elf.Section32
		if _, err := img.Unpack(e.sectionHeaderOffset(i), &sh); err != nil {
			return models.Corrupt("section %d header is outside the image", i)
		}
		name := ""
		if haveNames {
			var err error
			if name, err = img.CString(strtab + uint64(sh.Name)); err != nil {
				return models.Corrupt("name for section %d is outside the image", i)
			}
		}
		flags := elf.SectionFlag(sh.Flags)
		typ := elf.SectionType(sh.Type)
		s := &models.Section{
			Index:   i,
			Name:    name,
			Addr:    uint64(sh.Addr),
			Size:    uint64(sh.Size),
			EntSize: uint64(sh.Entsize),
			Align:   uint64(sh.Addralign),
			Offset:  uint64(sh.Off),
			Type:    typ,
			Link:    sh.Link,
			Info:    sh.Info,
		}
		if s.Addr == 0 && !isRelocName(name) {
			s.Addr = cursor.alloc(s.Size, s.Align)
		}
		if end := s.Addr + s.Size; end > e.firstExtern {
			e.firstExtern = end
		}
		// SHF_ALLOC can't identify bss (.comment is NOBITS too), so go by name
		s.Flags.Bss = name == ".bss"
		s.Flags.ReadOnly = flags&elf.SHF_WRITE == 0
		if flags&elf.SHF_EXECINSTR != 0 {
			s.Flags.Code = true
			gotCode = true
		}
		if gotCode && flags&(elf.SHF_EXECINSTR|elf.SHF_ALLOC) == elf.SHF_ALLOC && typ != elf.SHT_NOBITS {
			s.Flags.Data = true
		}
		list = append(list, s)
	}
	for _, s := range list {
		if s.Addr == 0 && isRelocName(s.Name) {
			s.Addr = cursor.alloc(s.Size, 0)
		}
	}
	for _, s := range list {
		if s.Size == 0 {
			e.config.Debugf("[loader] not adding 0 sized section %q", s.Name)
		}
	}
	e.sections = models.NewSectionTable(list)
	e.pltMin, e.pltMax = e.sections.Range(".plt")
	return nil
}

// realSection reports whether a symbol section index names an entry of the
// section table, as opposed to UNDEF or a reserved index.
func (e *ElfLoader) realSection(shndx uint16) bool {
	idx := elf.SectionIndex(shndx)
	return idx != elf.SHN_UNDEF && idx < elf.SHN_LORESERVE && int(idx) < e.sections.Len()
}
