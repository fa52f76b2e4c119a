package view

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

var byteOrder = binary.BigEndian

// ErrInvalidEncoding is returned when a view encoding is malformed.
var ErrInvalidEncoding = errors.New("invalid view encoding")

// WriteTo encodes the view. Subgroups of a merge view are encoded
// recursively, so nested merge views round-trip.
func (v *View) WriteTo(w *binario.Writer) error {
	if err := v.id.writeTo(w); err != nil {
		return err
	}

	if err := address.WriteAll(w, v.members); err != nil {
		return err
	}

	if err := w.WriteBool(v.IsMergeView()); err != nil {
		return err
	}

	if !v.IsMergeView() {
		return nil
	}

	if err := w.WriteInt32(int32(len(v.subgroups))); err != nil {
		return err
	}

	for _, sub := range v.subgroups {
		if err := sub.WriteTo(w); err != nil {
			return err
		}
	}

	return nil
}

// Read decodes a view written by WriteTo.
func Read(r *binario.Reader, reg *address.Registry) (*View, error) {
	id, err := readViewID(r, reg)
	if err != nil {
		return nil, err
	}

	members, err := reg.ReadAll(r)
	if err != nil {
		return nil, err
	}

	v := &View{id: id, members: members}

	merge, err := r.ReadBool()
	if err != nil {
		return nil, err
	}

	if !merge {
		return v, nil
	}

	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}

	if n < 0 {
		return nil, fmt.Errorf("%w: negative subgroup count %d", ErrInvalidEncoding, n)
	}

	v.subgroups = []*View{}

	for i := int32(0); i < n; i++ {
		sub, err := Read(r, reg)
		if err != nil {
			return nil, err
		}

		v.subgroups = append(v.subgroups, sub)
	}

	return v, nil
}

// Marshal returns the binary encoding of the view.
func Marshal(v *View) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, v.SerializedSize()))

	if err := v.WriteTo(binario.NewWriter(buf, byteOrder)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a view produced by Marshal.
func Unmarshal(data []byte, reg *address.Registry) (*View, error) {
	return Read(binario.NewReader(bytes.NewReader(data), byteOrder), reg)
}

// SerializedSize returns the number of bytes written by WriteTo.
func (v *View) SerializedSize() int {
	size := v.id.size() + address.SizeAll(v.members) + 1

	if v.IsMergeView() {
		size += 4
		for _, sub := range v.subgroups {
			size += sub.SerializedSize()
		}
	}

	return size
}
