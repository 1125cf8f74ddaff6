package models

import "encoding/binary"

// Loader is what the analysis pipeline consumes once an image is loaded.
type Loader interface {
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	OS() string
	Entry() uint64
	MainEntry() (uint64, bool)
	Machine() (Machine, error)
	Type() int
	IsSharedObject() bool
	Interp() string
	Sections() *SectionTable
	Symbols() *SymbolTable
	Segments() ([]SegmentData, error)
	DataSegment() (uint64, uint64)
	Dependencies() ([]string, error)
	NativeToHostOffset(addr uint64) (uint64, error)
	IsRelocationAt(addr uint64) bool
	ReadAddr(addr, size uint64) ([]byte, error)
	Symbolicate(addr uint64) (string, error)
	Warnings() []error
	Unload()
}
