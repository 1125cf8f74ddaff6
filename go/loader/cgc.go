package loader

import (
	"bytes"
	"io"

	"github.com/lunixbochs/elfcorn/go/models"
)

var cgcMagic = []byte{0x7f, 0x43, 0x47, 0x43}

func MatchCgc(r io.ReaderAt) bool {
	return bytes.Equal(getMagic(r), cgcMagic)
}

// CgcLoader loads DECREE binaries, which are ELF32 images behind a
// different magic.
type CgcLoader struct {
	*ElfLoader
}

func (c *CgcLoader) OS() string {
	return "cgc"
}

func NewCgcLoader(p []byte, config *models.Config) (models.Loader, error) {
	if len(p) < len(elfMagic) {
		return nil, models.Corrupt("cgc image too short")
	}
	fake := make([]byte, len(p))
	copy(fake, p)
	copy(fake, elfMagic)
	l, err := NewElfLoader(fake, config)
	if err != nil {
		return nil, err
	}
	return &CgcLoader{l}, nil
}
