package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

type testSection struct {
	Name    string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Addr    uint32
	Align   uint32
	EntSize uint32
	Link    uint32
	Info    uint32
	Data    []byte
	// Size is used for sections without Data, like .bss
	Size uint32
}

type testProg struct {
	Type    elf.ProgType
	Flags   elf.ProgFlag
	Section string
	Vaddr   uint32
	Memsz   uint32
}

// elfBuilder lays out a small ELF32 image: header, program headers, section
// contents, .shstrtab, then the section header table.
type elfBuilder struct {
	Order    binary.ByteOrder
	Type     elf.Type
	Machine  elf.Machine
	Entry    uint32
	Sections []*testSection
	Progs    []testProg
}

func newBuilder(order binary.ByteOrder) *elfBuilder {
	return &elfBuilder{Order: order, Type: elf.ET_EXEC, Machine: elf.EM_386}
}

// add appends a section and returns its section index.
func (b *elfBuilder) add(s *testSection) uint32 {
	b.Sections = append(b.Sections, s)
	return uint32(len(b.Sections))
}

func (b *elfBuilder) pack(v interface{}) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, b.Order, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func (b *elfBuilder) build() []byte {
	shstrtab := newStrtab()
	names := make([]uint32, len(b.Sections))
	for i, s := range b.Sections {
		names[i] = shstrtab.add(s.Name)
	}
	shstrName := shstrtab.add(".shstrtab")

	phoff := 52
	pos := phoff + len(b.Progs)*32
	offsets := make([]int, len(b.Sections))
	for i, s := range b.Sections {
		pos = align4(pos)
		offsets[i] = pos
		pos += len(s.Data)
	}
	shstrOff := pos
	pos += len(shstrtab.buf)
	shoff := align4(pos)
	shnum := len(b.Sections) + 2

	out := make([]byte, shoff)
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elfMagic)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	if b.Order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	} else {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr := elf.Header32{
		Ident:     ident,
		Type:      uint16(b.Type),
		Machine:   uint16(b.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     b.Entry,
		Shoff:     uint32(shoff),
		Ehsize:    52,
		Phentsize: 32,
		Phnum:     uint16(len(b.Progs)),
		Shentsize: 40,
		Shnum:     uint16(shnum),
		Shstrndx:  uint16(shnum - 1),
	}
	if len(b.Progs) > 0 {
		hdr.Phoff = uint32(phoff)
	}
	copy(out, b.pack(&hdr))

	for i, p := range b.Progs {
		prog := elf.Prog32{
			Type:  uint32(p.Type),
			Flags: uint32(p.Flags),
			Vaddr: p.Vaddr,
			Paddr: p.Vaddr,
			Memsz: p.Memsz,
		}
		for j, s := range b.Sections {
			if s.Name == p.Section {
				prog.Off = uint32(offsets[j])
				prog.Filesz = uint32(len(s.Data))
			}
		}
		if prog.Memsz < prog.Filesz {
			prog.Memsz = prog.Filesz
		}
		copy(out[phoff+i*32:], b.pack(&prog))
	}
	for i, s := range b.Sections {
		copy(out[offsets[i]:], s.Data)
	}
	copy(out[shstrOff:], shstrtab.buf)

	headers := []elf.Section32{{}}
	for i, s := range b.Sections {
		size := s.Size
		if s.Data != nil {
			size = uint32(len(s.Data))
		}
		headers = append(headers, elf.Section32{
			Name:      names[i],
			Type:      uint32(s.Type),
			Flags:     uint32(s.Flags),
			Addr:      s.Addr,
			Off:       uint32(offsets[i]),
			Size:      size,
			Link:      s.Link,
			Info:      s.Info,
			Addralign: s.Align,
			Entsize:   s.EntSize,
		})
	}
	headers = append(headers, elf.Section32{
		Name:      shstrName,
		Type:      uint32(elf.SHT_STRTAB),
		Off:       uint32(shstrOff),
		Size:      uint32(len(shstrtab.buf)),
		Addralign: 1,
	})
	for _, h := range headers {
		out = append(out, b.pack(&h)...)
	}
	return out
}

func (b *elfBuilder) load(t *testing.T) *ElfLoader {
	t.Helper()
	e, err := NewElfLoader(b.build(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

type strtab struct {
	buf []byte
	idx map[string]uint32
}

func newStrtab() *strtab {
	return &strtab{buf: []byte{0}, idx: make(map[string]uint32)}
}

func (s *strtab) add(name string) uint32 {
	if name == "" {
		return 0
	}
	if off, ok := s.idx[name]; ok {
		return off
	}
	off := uint32(len(s.buf))
	s.buf = append(append(s.buf, name...), 0)
	s.idx[name] = off
	return off
}

type testSym struct {
	Name  string
	Value uint32
	Size  uint32
	Bind  elf.SymBind
	Type  elf.SymType
	Shndx uint16
}

// symtab packs syms (behind the null entry) and their string table.
func (b *elfBuilder) symtab(syms ...testSym) (symData, strData []byte) {
	strs := newStrtab()
	out := b.pack(&elf.Sym32{})
	for _, s := range syms {
		out = append(out, b.pack(&elf.Sym32{
			Name:  strs.add(s.Name),
			Value: s.Value,
			Size:  s.Size,
			Info:  elf.ST_INFO(s.Bind, s.Type),
			Shndx: s.Shndx,
		})...)
	}
	return out, strs.buf
}

// addSymtab adds a symbol table of typ and its string table, returning the
// symbol table's index.
func (b *elfBuilder) addSymtab(typ elf.SectionType, syms ...testSym) uint32 {
	symData, strData := b.symtab(syms...)
	strName, symName := ".strtab", ".symtab"
	if typ == elf.SHT_DYNSYM {
		strName, symName = ".dynstr", ".dynsym"
	}
	str := b.add(&testSection{Name: strName, Type: elf.SHT_STRTAB, Data: strData, Align: 1})
	return b.add(&testSection{Name: symName, Type: typ, Data: symData, Link: str, EntSize: 16, Align: 4})
}

func (b *elfBuilder) rels(rels ...elf.Rel32) []byte {
	var out []byte
	for i := range rels {
		out = append(out, b.pack(&rels[i])...)
	}
	return out
}

func (b *elfBuilder) relas(relas ...elf.Rela32) []byte {
	var out []byte
	for i := range relas {
		out = append(out, b.pack(&relas[i])...)
	}
	return out
}

func (b *elfBuilder) words(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		b.Order.PutUint32(out[i*4:], w)
	}
	return out
}

func rel(off, sym uint32, typ elf.R_386) elf.Rel32 {
	return elf.Rel32{Off: off, Info: elf.R_INFO32(sym, uint32(typ))}
}
