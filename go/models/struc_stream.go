package models

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// StrucStream packs records to W and unpacks them from R in Order.
type StrucStream struct {
	R     io.Reader
	W     io.Writer
	Order binary.ByteOrder
}

func (s *StrucStream) Pack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.PackWithOrder(s.W, v, s.Order); err != nil {
			return errors.Wrap(err, "struc.Pack() failed")
		}
	}
	return nil
}

func (s *StrucStream) Unpack(vals ...interface{}) error {
	for _, v := range vals {
		if err := struc.UnpackWithOrder(s.R, v, s.Order); err != nil {
			return errors.Wrap(err, "struc.Unpack() failed")
		}
	}
	return nil
}
