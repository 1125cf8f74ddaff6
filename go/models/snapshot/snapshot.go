// Package snapshot saves the section and symbol model of a loaded image so
// it can be inspected later without the source image.
//
// The format is a fixed struc header followed by a snappy stream of
// section records then symbol records.
package snapshot

import (
	"debug/elf"
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

var MAGIC = "ELFS"

const VERSION = 1

type Header struct {
	// MAGIC ("ELFS")
	Magic   string `struc:"[4]byte"`
	Version uint32
	// Right-null-padded.
	Arch string `struc:"[32]byte"`
	OS   string `struc:"[32]byte"`
	// 0 for little, 1 for big
	OrderNum uint8
	Entry    uint64

	SectionCount uint32
	SymbolCount  uint32

	Order binary.ByteOrder `struc:"skip"`
}

const (
	secCode = 1 << iota
	secData
	secBss
	secReadOnly
)

const (
	symImported = 1 << iota
	symFunction
	symDynamic
)

type sectionRecord struct {
	NameLen int    `struc:"uint16,sizeof=Name"`
	Name    string `struc:"[]byte"`
	Index   uint32
	Addr    uint64
	Size    uint64
	EntSize uint64
	Align   uint64
	Offset  uint64
	Type    uint32
	Link    uint32
	Info    uint32
	Flags   uint8
}

type symbolRecord struct {
	NameLen    int    `struc:"uint16,sizeof=Name"`
	Name       string `struc:"[]byte"`
	Start      uint64
	End        uint64
	Size       uint64
	Bind       uint8
	Type       uint8
	Visibility uint8
	Flags      uint8
	FileLen    int    `struc:"uint16,sizeof=SourceFile"`
	SourceFile string `struc:"[]byte"`
}

// Snapshot is a decoded snapshot file.
type Snapshot struct {
	Header   Header
	Sections *models.SectionTable
	Symbols  *models.SymbolTable
}

// Source is the part of a loader a snapshot records.
type Source interface {
	Arch() string
	OS() string
	ByteOrder() binary.ByteOrder
	Entry() uint64
	Sections() *models.SectionTable
	Symbols() *models.SymbolTable
}

func Write(w io.Writer, l Source) error {
	order := l.ByteOrder()
	var num uint8
	if order == binary.BigEndian {
		num = 1
	}
	sections := l.Sections().All()
	symbols := l.Symbols().All()
	header := &Header{
		Magic:        MAGIC,
		Version:      VERSION,
		Arch:         l.Arch(),
		OS:           l.OS(),
		OrderNum:     num,
		Entry:        l.Entry(),
		SectionCount: uint32(len(sections)),
		SymbolCount:  uint32(len(symbols)),
	}
	if err := struc.Pack(w, header); err != nil {
		return errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	stream := &models.StrucStream{W: zw, Order: binary.BigEndian}
	for _, s := range sections {
		var flags uint8
		for bit, set := range map[uint8]bool{secCode: s.Flags.Code, secData: s.Flags.Data, secBss: s.Flags.Bss, secReadOnly: s.Flags.ReadOnly} {
			if set {
				flags |= bit
			}
		}
		rec := &sectionRecord{
			Name:    s.Name,
			Index:   uint32(s.Index),
			Addr:    s.Addr,
			Size:    s.Size,
			EntSize: s.EntSize,
			Align:   s.Align,
			Offset:  s.Offset,
			Type:    uint32(s.Type),
			Link:    s.Link,
			Info:    s.Info,
			Flags:   flags,
		}
		if err := stream.Pack(rec); err != nil {
			return errors.Wrapf(err, "section %q", s.Name)
		}
	}
	for _, s := range symbols {
		var flags uint8
		for bit, set := range map[uint8]bool{symImported: s.Attrs.Imported, symFunction: s.Attrs.Function, symDynamic: s.Dynamic} {
			if set {
				flags |= bit
			}
		}
		rec := &symbolRecord{
			Name:       s.Name,
			Start:      s.Start,
			End:        s.End,
			Size:       s.Size,
			Bind:       uint8(s.Bind),
			Type:       uint8(s.Type),
			Visibility: uint8(s.Visibility),
			Flags:      flags,
			SourceFile: s.Attrs.SourceFile,
		}
		if err := stream.Pack(rec); err != nil {
			return errors.Wrapf(err, "symbol %q", s.Name)
		}
	}
	return errors.Wrap(zw.Close(), "failed to flush snapshot")
}

func Read(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	h := &snap.Header
	if err := struc.Unpack(r, h); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if h.Magic != MAGIC {
		return nil, errors.New("invalid snapshot magic")
	}
	if h.Version != VERSION {
		return nil, errors.Errorf("unsupported snapshot version %d", h.Version)
	}
	h.Arch = strings.TrimRight(h.Arch, "\x00")
	h.OS = strings.TrimRight(h.OS, "\x00")
	switch h.OrderNum {
	case 0:
		h.Order = binary.LittleEndian
	case 1:
		h.Order = binary.BigEndian
	default:
		return nil, errors.Errorf("bad byte order %d", h.OrderNum)
	}

	stream := &models.StrucStream{R: snappy.NewReader(r), Order: binary.BigEndian}
	list := make([]*models.Section, 0, h.SectionCount)
	for i := uint32(0); i < h.SectionCount; i++ {
		var rec sectionRecord
		if err := stream.Unpack(&rec); err != nil {
			return nil, errors.Wrapf(err, "section %d", i)
		}
		list = append(list, &models.Section{
			Index:   int(rec.Index),
			Name:    rec.Name,
			Addr:    rec.Addr,
			Size:    rec.Size,
			EntSize: rec.EntSize,
			Align:   rec.Align,
			Offset:  rec.Offset,
			Type:    elf.SectionType(rec.Type),
			Link:    rec.Link,
			Info:    rec.Info,
			Flags: models.SectionFlags{
				Code:     rec.Flags&secCode != 0,
				Data:     rec.Flags&secData != 0,
				Bss:      rec.Flags&secBss != 0,
				ReadOnly: rec.Flags&secReadOnly != 0,
			},
		})
	}
	snap.Sections = models.NewSectionTable(list)

	snap.Symbols = models.NewSymbolTable()
	for i := uint32(0); i < h.SymbolCount; i++ {
		var rec symbolRecord
		if err := stream.Unpack(&rec); err != nil {
			return nil, errors.Wrapf(err, "symbol %d", i)
		}
		snap.Symbols.Add(models.Symbol{
			Name:       rec.Name,
			Start:      rec.Start,
			End:        rec.End,
			Size:       rec.Size,
			Bind:       elf.SymBind(rec.Bind),
			Type:       elf.SymType(rec.Type),
			Visibility: elf.SymVis(rec.Visibility),
			Dynamic:    rec.Flags&symDynamic != 0,
			Attrs: models.SymbolAttrs{
				Imported:   rec.Flags&symImported != 0,
				Function:   rec.Flags&symFunction != 0,
				SourceFile: rec.SourceFile,
			},
		})
	}
	return snap, nil
}
