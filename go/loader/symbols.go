package loader

import (
	"debug/elf"
	"strings"

	"github.com/lunixbochs/elfcorn/go/models"
)

const sym32Size = 16

// StripVersion drops a "@@VERSION" suffix from a dynamic symbol name.
func StripVersion(name string) string {
	if i := strings.Index(name, "@@"); i >= 0 {
		return name[:i]
	}
	return name
}

// symbolMerge carries the state shared across every symbol table of a load.
type symbolMerge struct {
	e           *ElfLoader
	currentFile string
}

// mergeSymbols folds every SHT_SYMTAB and SHT_DYNSYM section into one table.
func (e *ElfLoader) mergeSymbols() error {
	e.symbols = models.NewSymbolTable()
	m := &symbolMerge{e: e}
	for _, s := range e.sections.All() {
		if s.Type != elf.SHT_SYMTAB && s.Type != elf.SHT_DYNSYM {
			continue
		}
		if err := m.table(s); err != nil {
			return err
		}
		e.synthesizeMain()
	}
	return nil
}

func (m *symbolMerge) table(s *models.Section) error {
	e := m.e
	strtab := e.sections.Index(int(s.Link))
	if strtab == nil {
		return models.Corrupt("symbol table %q links to missing string table %d", s.Name, s.Link)
	}
	if !e.img.InBounds(s.Offset, s.Size) {
		return models.Corrupt("symbol table %q is outside the image", s.Name)
	}
	entSize := s.EntSize
	if entSize < sym32Size {
		entSize = sym32Size
	}
	count := s.Size / entSize
	dynamic := s.Type == elf.SHT_DYNSYM
	// entry 0 is the null symbol
	for i := uint64(1); i < count; i++ {
		var sym elf.Sym32
		if _, err := e.img.Unpack(s.Offset+i*entSize, &sym); err != nil {
			return models.Corrupt("symbol %d of %q: %v", i, s.Name, err)
		}
		if sym.Name == 0 {
			continue
		}
		name, err := e.img.CString(strtab.Offset + uint64(sym.Name))
		if err != nil {
			e.warn(models.Corrupt("symbol %d of %q has a bad name: %v", i, s.Name, err))
			continue
		}
		if name = StripVersion(name); name == "" {
			continue
		}
		m.add(int(i), &sym, name, dynamic)
	}
	return nil
}

func (m *symbolMerge) add(idx int, sym *elf.Sym32, name string, dynamic bool) {
	e := m.e
	value := uint64(sym.Value)
	imported := elf.SectionIndex(sym.Shndx) == elf.SHN_UNDEF
	if e.isRelocatable() && e.realSection(sym.Shndx) {
		value += e.sections.Index(int(sym.Shndx)).Addr
	}
	if value == 0 && e.sections.ByName(".plt") != nil {
		value = e.findRelPltOffset(idx)
	}

	var existing *models.Symbol
	if value == 0 {
		existing = e.symbols.FindName(name)
	} else {
		existing = e.symbols.Find(value)
	}
	if existing != nil {
		return
	}

	bind, typ := elf.ST_BIND(sym.Info), elf.ST_TYPE(sym.Info)
	if bind == elf.STB_WEAK && typ == elf.STT_NOTYPE {
		return
	}
	if typ == elf.STT_FILE {
		m.currentFile = name
		return
	}
	if bind != elf.STB_LOCAL {
		m.currentFile = ""
	}
	if value == 0 {
		e.config.Debugf("[loader] skipping symbol %s with unknown location", name)
		return
	}
	e.symbols.Add(models.Symbol{
		Name:       name,
		Start:      value,
		End:        value + uint64(sym.Size),
		Size:       uint64(sym.Size),
		Bind:       bind,
		Type:       typ,
		Visibility: elf.ST_VISIBILITY(sym.Other),
		Dynamic:    dynamic,
		Attrs: models.SymbolAttrs{
			Imported:   imported,
			Function:   typ == elf.STT_FUNC,
			SourceFile: m.currentFile,
		},
	})
}

// synthesizeMain names the entry point "main" when no symbol claims either.
func (e *ElfLoader) synthesizeMain() {
	entry := uint64(e.header.Entry)
	if entry == 0 || e.symbols.FindName("main") != nil || e.symbols.Find(entry) != nil {
		return
	}
	e.symbols.Add(models.Symbol{
		Name:  "main",
		Start: entry,
		End:   entry,
		Bind:  elf.STB_GLOBAL,
		Type:  elf.STT_FUNC,
		Attrs: models.SymbolAttrs{Function: true},
	})
}
