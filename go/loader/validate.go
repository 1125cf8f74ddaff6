package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

const (
	section32Size = 40
	prog32Size    = 32
)

// validate checks the identification bytes and that every header table
// the later stages dereference sits inside the buffer. It leaves the image
// byte order and e.header set.
func (e *ElfLoader) validate() error {
	img := e.img
	magic, err := img.Slice(0, uint64(len(elfMagic)))
	if err != nil || !bytes.Equal(magic, elfMagic) {
		return models.Corrupt("incorrect header magic % x", magic)
	}
	data, err := img.ReadU8(elf.EI_DATA)
	if err != nil {
		return models.Corrupt("truncated identification")
	}
	switch elf.Data(data) {
	case elf.ELFDATA2LSB:
		img.SetByteOrder(binary.LittleEndian)
	case elf.ELFDATA2MSB:
		img.SetByteOrder(binary.BigEndian)
	default:
		return errors.Wrapf(models.ErrUnsupportedEndianness, "EI_DATA 0x%02x", data)
	}
	class, _ := img.ReadU8(elf.EI_CLASS)
	if elf.Class(class) != elf.ELFCLASS32 {
		return models.Corrupt("unsupported class %s", elf.Class(class))
	}
	if _, err := img.Unpack(0, &e.header); err != nil {
		return models.Corrupt("file header: %v", err)
	}
	h := &e.header

	if h.Phoff != 0 {
		if h.Phnum > 0 && h.Phentsize < prog32Size {
			return models.Corrupt("program header entry size %d", h.Phentsize)
		}
		if !img.InBounds(uint64(h.Phoff), uint64(h.Phnum)*uint64(h.Phentsize)) {
			return models.Corrupt("program header table at 0x%x is outside the image", h.Phoff)
		}
	}
	if h.Shoff != 0 {
		if h.Shnum > 0 && h.Shentsize < section32Size {
			return models.Corrupt("section header entry size %d", h.Shentsize)
		}
		if !img.InBounds(uint64(h.Shoff), uint64(h.Shnum)*uint64(h.Shentsize)) {
			return models.Corrupt("section header table at 0x%x is outside the image", h.Shoff)
		}
	} else if h.Shnum > 0 {
		return models.Corrupt("%d sections but no section header table", h.Shnum)
	}
	if h.Shstrndx != 0 {
		if h.Shstrndx >= h.Shnum {
			return models.Corrupt("section name table index %d out of range (%d sections)", h.Shstrndx, h.Shnum)
		}
		var sh elf.Section32
		if _, err := img.Unpack(e.sectionHeaderOffset(int(h.Shstrndx)), &sh); err != nil {
			return models.Corrupt("section name table header: %v", err)
		}
		if !img.InBounds(uint64(sh.Off), 1) {
			return models.Corrupt("section name table at 0x%x is outside the image", sh.Off)
		}
	}
	return nil
}

func (e *ElfLoader) sectionHeaderOffset(i int) uint64 {
	return uint64(e.header.Shoff) + uint64(i)*uint64(e.header.Shentsize)
}
