package loader

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

func TestCanLoad(t *testing.T) {
	elfImage := textBuilder(binary.LittleEndian).build()
	if !CanLoad(bytes.NewReader(elfImage)) {
		t.Error("elf not recognised")
	}
	if !CanLoad(bytes.NewReader(cgcImage())) {
		t.Error("cgc not recognised")
	}
	if CanLoad(bytes.NewReader([]byte("MZ\x90\x00"))) || CanLoad(bytes.NewReader(nil)) {
		t.Error("junk recognised")
	}
	if f := NewRegistry().Detect(bytes.NewReader(cgcImage())); f == nil || f.Name != "cgc" {
		t.Errorf("bad detect result %v", f)
	}
}

func TestLoad(t *testing.T) {
	l, err := Load(textBuilder(binary.LittleEndian).build(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.OS() != "linux" {
		t.Errorf("bad os %q", l.OS())
	}
	l, err = Load(cgcImage(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.OS() != "cgc" {
		t.Errorf("bad os %q", l.OS())
	}
	if _, err := Load([]byte(""), nil); errors.Cause(err) != UnknownMagic {
		t.Fatalf("Failed to error on loading bad file: %v", err)
	}
	p := textBuilder(binary.LittleEndian).build()
	p[5] = 9
	if _, err := Load(p, nil); errors.Cause(err) != models.ErrUnsupportedEndianness {
		t.Fatalf("expected endianness error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x86.linux.elf")
	if err := ioutil.WriteFile(path, textBuilder(binary.LittleEndian).build(), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path+".missing", nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRegistryOrder(t *testing.T) {
	refused := errors.New("refused")
	r := &Registry{}
	r.Register(&Format{
		Name:  "any",
		Match: func(io.ReaderAt) bool { return true },
		New: func([]byte, *models.Config) (models.Loader, error) {
			return nil, refused
		},
	})
	for _, f := range NewRegistry().formats {
		r.Register(f)
	}
	_, err := r.Load(textBuilder(binary.LittleEndian).build(), nil)
	if errors.Cause(err) != refused {
		t.Fatalf("first matching format should win, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "any load failed") {
		t.Fatalf("bad error %q", err)
	}
}
