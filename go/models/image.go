package models

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Image is the raw file buffer of one load, read through its declared byte
// order. Every multi-byte access is bounds checked.
type Image struct {
	buf   []byte
	order binary.ByteOrder
}

// NewImage copies p so the caller's buffer is never written by relocation.
func NewImage(p []byte, order binary.ByteOrder) *Image {
	buf := make([]byte, len(p))
	copy(buf, p)
	if order == nil {
		order = binary.LittleEndian
	}
	return &Image{buf: buf, order: order}
}

func (i *Image) Len() int                    { return len(i.buf) }
func (i *Image) ByteOrder() binary.ByteOrder { return i.order }

// SetByteOrder switches the order used for subsequent reads. The validator
// calls it once EI_DATA has been read.
func (i *Image) SetByteOrder(order binary.ByteOrder) { i.order = order }

func (i *Image) check(off, size uint64) error {
	end := off + size
	if end < off || end > uint64(len(i.buf)) {
		return errors.Wrapf(ErrOutOfBounds, "0x%x bytes at 0x%x (image size 0x%x)", size, off, len(i.buf))
	}
	return nil
}

func (i *Image) InBounds(off, size uint64) bool {
	return i.check(off, size) == nil
}

func (i *Image) readUint(off uint64, size int) (uint64, error) {
	if err := i.check(off, uint64(size)); err != nil {
		return 0, err
	}
	p := i.buf[off : off+uint64(size)]
	switch size {
	case 4:
		return uint64(i.order.Uint32(p)), nil
	case 2:
		return uint64(i.order.Uint16(p)), nil
	case 1:
		return uint64(p[0]), nil
	default:
		return 0, errors.Errorf("unsupported uint size: %d", size)
	}
}

func (i *Image) ReadU8(off uint64) (uint8, error) {
	v, err := i.readUint(off, 1)
	return uint8(v), err
}

func (i *Image) ReadU16(off uint64) (uint16, error) {
	v, err := i.readUint(off, 2)
	return uint16(v), err
}

func (i *Image) ReadU32(off uint64) (uint32, error) {
	v, err := i.readUint(off, 4)
	return uint32(v), err
}

func (i *Image) WriteU32(off uint64, v uint32) error {
	if err := i.check(off, 4); err != nil {
		return err
	}
	i.order.PutUint32(i.buf[off:off+4], v)
	return nil
}

// Slice returns a copy of n bytes at off.
func (i *Image) Slice(off, n uint64) ([]byte, error) {
	if err := i.check(off, n); err != nil {
		return nil, err
	}
	ret := make([]byte, n)
	copy(ret, i.buf[off:off+n])
	return ret, nil
}

// CString reads a NUL terminated string starting at off. A string running
// off the end of the buffer is an error.
func (i *Image) CString(off uint64) (string, error) {
	if err := i.check(off, 1); err != nil {
		return "", err
	}
	rest := i.buf[off:]
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return "", errors.Wrapf(ErrOutOfBounds, "unterminated string at 0x%x", off)
	}
	return string(rest[:n]), nil
}

// Unpack decodes a fixed-size struct at off using the image byte order.
func (i *Image) Unpack(off uint64, v interface{}) (int, error) {
	size, err := struc.Sizeof(v)
	if err != nil {
		return 0, errors.Wrap(err, "struc.Sizeof() failed")
	}
	if err := i.check(off, uint64(size)); err != nil {
		return 0, err
	}
	r := io.NewSectionReader(bytes.NewReader(i.buf), int64(off), int64(size))
	if err := struc.UnpackWithOrder(r, v, i.order); err != nil {
		return 0, errors.Wrap(err, "struc.Unpack() failed")
	}
	return size, nil
}

// ReaderAt exposes the (possibly relocated) image contents.
func (i *Image) ReaderAt() io.ReaderAt {
	return bytes.NewReader(i.buf)
}
