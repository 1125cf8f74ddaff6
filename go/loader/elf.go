package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

// EM_ST20 is missing from debug/elf.
const emST20 elf.Machine = 0xa8

var machineMap = map[elf.Machine]string{
	elf.EM_386:         "x86",
	elf.EM_X86_64:      "x86_64",
	elf.EM_ARM:         "arm",
	elf.EM_MIPS:        "mips",
	elf.EM_PPC:         "ppc",
	elf.EM_PPC64:       "ppc64",
	elf.EM_SPARC:       "sparc",
	elf.EM_SPARC32PLUS: "sparc",
	elf.EM_PARISC:      "hppa",
	elf.EM_68K:         "m68k",
	emST20:             "st20",
}

var machineKinds = map[elf.Machine]models.Machine{
	elf.EM_SPARC:       models.MachineSparc,
	elf.EM_SPARC32PLUS: models.MachineSparc,
	elf.EM_386:         models.MachinePentium,
	elf.EM_PARISC:      models.MachineHPRisc,
	elf.EM_68K:         models.MachinePalm,
	elf.EM_PPC:         models.MachinePPC,
	emST20:             models.MachineST20,
	elf.EM_MIPS:        models.MachineMIPS,
}

var elfMagic = []byte{0x7f, 0x45, 0x4c, 0x46}

func MatchElf(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), elfMagic)
}

// ElfLoader holds one loaded ELF32 image and everything derived from it.
type ElfLoader struct {
	LoaderBase
	config *models.Config

	img      *models.Image
	header   elf.Header32
	sections *models.SectionTable
	symbols  *models.SymbolTable

	// firstExtern is the end of the highest real section. Synthesised
	// extern addresses are handed out from the top of the address space,
	// and externs remembers the ones given out by name.
	firstExtern    uint64
	nextFake       uint64
	externs        map[string]uint64
	pltMin, pltMax uint64

	warnings []error
}

func NewElfLoader(p []byte, config *models.Config) (*ElfLoader, error) {
	e := &ElfLoader{config: config.Init()}
	if err := e.Load(p); err != nil {
		return nil, err
	}
	return e, nil
}

// Load parses p into a fresh model. On failure the previous model (if any)
// is left untouched.
func (e *ElfLoader) Load(p []byte) error {
	l := &ElfLoader{
		config:   e.config.Init(),
		nextFake: fakeExternBase,
		externs:  make(map[string]uint64),
	}
	l.img = models.NewImage(p, nil)
	if err := l.validate(); err != nil {
		return err
	}
	if err := l.buildSections(); err != nil {
		return err
	}
	if err := l.mergeSymbols(); err != nil {
		return err
	}
	l.applyRelocations()
	l.markImports()

	l.bits = 32
	l.byteOrder = l.img.ByteOrder()
	l.os = "linux"
	l.entry = uint64(l.header.Entry)
	mach := elf.Machine(l.header.Machine)
	if name, ok := machineMap[mach]; ok {
		l.arch = name
	} else {
		l.arch = fmt.Sprintf("machine-%d", l.header.Machine)
	}
	*e = *l
	return nil
}

// Unload drops the image and every table derived from it.
func (e *ElfLoader) Unload() {
	*e = ElfLoader{config: e.config}
}

func (e *ElfLoader) loaded() bool {
	return e.img != nil
}

// warn records a non-fatal problem and logs it when verbose.
func (e *ElfLoader) warn(err error) {
	e.warnings = append(e.warnings, err)
	e.config.Debugf("[loader] warning: %v", err)
}

func (e *ElfLoader) Warnings() []error {
	return e.warnings
}

func (e *ElfLoader) Sections() *models.SectionTable {
	if e.sections == nil {
		return models.NewSectionTable(nil)
	}
	return e.sections
}

func (e *ElfLoader) Symbols() *models.SymbolTable {
	if e.symbols == nil {
		return models.NewSymbolTable()
	}
	return e.symbols
}

// FirstExtern is the lowest address reserved for symbols the loader
// synthesises: everything from the end of the highest real section up.
func (e *ElfLoader) FirstExtern() uint64 {
	return e.firstExtern
}

// MainEntry returns the address of the "main" symbol, if one is known.
func (e *ElfLoader) MainEntry() (uint64, bool) {
	if sym := e.Symbols().FindName("main"); sym != nil {
		return sym.Start, true
	}
	return 0, false
}

func (e *ElfLoader) Machine() (models.Machine, error) {
	mach := elf.Machine(e.header.Machine)
	if kind, ok := machineKinds[mach]; ok {
		return kind, nil
	}
	return models.MachineUnknown, errors.Wrapf(models.ErrUnsupportedMachine, "%s", mach)
}

func (e *ElfLoader) IsSharedObject() bool {
	return e.loaded() && elf.Type(e.header.Type) == elf.ET_DYN
}

func (e *ElfLoader) isRelocatable() bool {
	return elf.Type(e.header.Type) == elf.ET_REL
}

func (e *ElfLoader) Type() int {
	if !e.loaded() {
		return UNKNOWN
	}
	switch elf.Type(e.header.Type) {
	case elf.ET_EXEC:
		return EXEC
	case elf.ET_DYN:
		return DYN
	case elf.ET_REL:
		return REL
	default:
		return UNKNOWN
	}
}

func (e *ElfLoader) progs() []elf.Prog32 {
	if !e.loaded() || e.header.Phoff == 0 {
		return nil
	}
	ret := make([]elf.Prog32, 0, e.header.Phnum)
	for i := 0; i < int(e.header.Phnum); i++ {
		var prog elf.Prog32
		off := uint64(e.header.Phoff) + uint64(i)*uint64(e.header.Phentsize)
		if _, err := e.img.Unpack(off, &prog); err != nil {
			break
		}
		ret = append(ret, prog)
	}
	return ret
}

func (e *ElfLoader) Interp() string {
	for _, prog := range e.progs() {
		if elf.ProgType(prog.Type) == elf.PT_INTERP {
			data, err := e.img.Slice(uint64(prog.Off), uint64(prog.Filesz))
			if err != nil {
				return ""
			}
			return strings.TrimRight(string(data), "\x00")
		}
	}
	return ""
}

func (e *ElfLoader) DataSegment() (start, end uint64) {
	return e.Sections().Range(".data")
}

func (e *ElfLoader) Segments() ([]models.SegmentData, error) {
	var ret []models.SegmentData
	for _, prog := range e.progs() {
		if elf.ProgType(prog.Type) != elf.PT_LOAD {
			continue
		}
		off, filesz, memsz := uint64(prog.Off), uint64(prog.Filesz), uint64(prog.Memsz)
		if !e.img.InBounds(off, filesz) {
			return nil, models.Corrupt("segment at 0x%x is outside the image", prog.Vaddr)
		}
		img := e.img
		ret = append(ret, models.SegmentData{
			Off:      off,
			Addr:     uint64(prog.Vaddr),
			Size:     memsz,
			FileSize: filesz,
			Prot:     int(prog.Flags),
			DataFunc: func() ([]byte, error) {
				data, err := img.Slice(off, filesz)
				if err != nil {
					return nil, err
				}
				if memsz > filesz {
					data = append(data, make([]byte, memsz-filesz)...)
				}
				return data, nil
			},
		})
	}
	return ret, nil
}

// ReadAddr reads size bytes at a loaded address from the section holding it.
// NOBITS sections read as zeros.
func (e *ElfLoader) ReadAddr(addr, size uint64) ([]byte, error) {
	s := e.Sections().ByAddr(addr)
	if s == nil {
		return nil, errors.Errorf("no section contains 0x%x", addr)
	}
	if addr+size > s.Addr+s.Size {
		size = s.Addr + s.Size - addr
	}
	if s.Type == elf.SHT_NOBITS {
		return make([]byte, size), nil
	}
	return e.img.Slice(s.Offset+addr-s.Addr, size)
}

// Symbolicate renders addr as sym+0xoff against the nearest symbol below it.
func (e *ElfLoader) Symbolicate(addr uint64) (string, error) {
	sym, dist := e.Symbols().Nearest(addr)
	if sym == nil {
		return "", nil
	}
	if dist == 0 {
		return sym.Name, nil
	}
	return fmt.Sprintf("%s+0x%x", sym.Name, dist), nil
}
