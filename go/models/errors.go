package models

import "github.com/pkg/errors"

// Structural errors abort a load. The rest are recorded as warnings and the
// load carries on with whatever it could resolve.
var (
	ErrCorruptImage          = errors.New("corrupt image")
	ErrOutOfBounds           = errors.New("access outside image bounds")
	ErrUnsupportedEndianness = errors.New("unsupported endianness")
	ErrUnsupportedMachine    = errors.New("unsupported machine")
	ErrUnsupportedRelocation = errors.New("unsupported relocation")
	ErrMissingSection        = errors.New("missing optional section")
)

// Corrupt wraps ErrCorruptImage with a reason.
func Corrupt(format string, args ...interface{}) error {
	return errors.Wrapf(ErrCorruptImage, format, args...)
}
