package models

import "fmt"

// SegmentData is one PT_LOAD program header. Off is the file offset.
type SegmentData struct {
	Off        uint64
	Addr, Size uint64
	FileSize   uint64
	Prot       int
	DataFunc   func() ([]byte, error)
}

func (s *SegmentData) Data() ([]byte, error) {
	return s.DataFunc()
}

func (s *SegmentData) ContainsPhys(addr uint64) bool {
	return s.Off <= addr && addr < s.Off+s.FileSize
}

func (s *SegmentData) ContainsVirt(addr uint64) bool {
	return s.Addr <= addr && addr < s.Addr+s.Size
}

func (s *SegmentData) String() string {
	prot := ""
	for i, c := range []string{"r", "w", "x"} {
		// PF_R=4 PF_W=2 PF_X=1
		if s.Prot&(4>>uint(i)) != 0 {
			prot += c
		} else {
			prot += "-"
		}
	}
	return fmt.Sprintf("0x%08x-0x%08x %s off=0x%x", s.Addr, s.Addr+s.Size, prot, s.Off)
}
