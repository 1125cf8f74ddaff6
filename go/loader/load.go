package loader

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/models"
)

var UnknownMagic = errors.New("Could not identify file magic.")

// Format is one loadable file format, recognised by its magic.
type Format struct {
	Name  string
	Match func(r io.ReaderAt) bool
	New   func(p []byte, config *models.Config) (models.Loader, error)
}

// Registry is an ordered list of formats. The first matching format loads
// the file.
type Registry struct {
	formats []*Format
}

// NewRegistry returns the registry of every format this package supports.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(&Format{
		Name:  "elf32",
		Match: MatchElf,
		New: func(p []byte, config *models.Config) (models.Loader, error) {
			return NewElfLoader(p, config)
		},
	})
	r.Register(&Format{Name: "cgc", Match: MatchCgc, New: NewCgcLoader})
	return r
}

func (r *Registry) Register(f *Format) {
	r.formats = append(r.formats, f)
}

// Detect returns the format able to load r, or nil.
func (r *Registry) Detect(rd io.ReaderAt) *Format {
	for _, f := range r.formats {
		if f.Match(rd) {
			return f
		}
	}
	return nil
}

func (r *Registry) Load(p []byte, config *models.Config) (models.Loader, error) {
	f := r.Detect(bytes.NewReader(p))
	if f == nil {
		return nil, errors.WithStack(UnknownMagic)
	}
	l, err := f.New(p, config)
	if err != nil {
		return nil, errors.Wrapf(err, "%s load failed", f.Name)
	}
	return l, nil
}

func (r *Registry) LoadFile(path string, config *models.Config) (models.Loader, error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return r.Load(p, config)
}

var defaultRegistry = NewRegistry()

func Load(p []byte, config *models.Config) (models.Loader, error) {
	return defaultRegistry.Load(p, config)
}

func LoadFile(path string, config *models.Config) (models.Loader, error) {
	return defaultRegistry.LoadFile(path, config)
}

// CanLoad is the cheap 4-byte magic check.
func CanLoad(r io.ReaderAt) bool {
	return defaultRegistry.Detect(r) != nil
}

func getMagic(r io.ReaderAt) []byte {
	ret := make([]byte, 4)
	if _, err := r.ReadAt(ret, 0); err != nil {
		return nil
	}
	return ret
}
