// Package address defines the identity of a cluster member and its binary
// encoding.
package address

import (
	"errors"
	"fmt"

	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/internal/generic"
)

// Kind is the wire discriminant of a concrete address type.
type Kind uint8

const (
	// KindNull marks an absent address on the wire.
	KindNull Kind = 0

	// KindUUID is a 128-bit random address.
	KindUUID Kind = 1
)

// maxPrealloc bounds the list capacity allocated from a count read off the
// wire.
const maxPrealloc int32 = 64

var (
	ErrUnknownKind   = errors.New("unknown address kind")
	ErrDuplicateKind = errors.New("address kind already registered")
)

// Address is an immutable, totally ordered identity of a cluster member.
// Implementations must be comparable with == so they can be used as map keys.
type Address interface {
	Kind() Kind

	// Compare returns -1, 0 or 1. Addresses of different kinds are ordered
	// by kind.
	Compare(other Address) int

	// Size is the number of bytes written by WriteTo.
	Size() int

	WriteTo(w *binario.Writer) error

	String() string
}

// Equal reports whether two possibly nil addresses are the same.
func Equal(a, b Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Compare(b) == 0
}

// Compare orders two possibly nil addresses, nil sorts first.
func Compare(a, b Address) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(b)
	}
}

// Size returns the encoded size of the address including the kind byte.
func Size(a Address) int {
	if a == nil {
		return 1
	}

	return 1 + a.Size()
}

// Write encodes the address prefixed with its kind. A nil address is written
// as a single KindNull byte.
func Write(w *binario.Writer, a Address) error {
	if a == nil {
		return w.WriteUint8(uint8(KindNull))
	}

	if err := w.WriteUint8(uint8(a.Kind())); err != nil {
		return err
	}

	return a.WriteTo(w)
}

// WriteAll writes a length-prefixed list of addresses. A nil list is encoded
// with length -1 so it can be told apart from an empty one.
func WriteAll(w *binario.Writer, addrs []Address) error {
	if addrs == nil {
		return w.WriteInt32(-1)
	}

	if err := w.WriteInt32(int32(len(addrs))); err != nil {
		return err
	}

	for _, a := range addrs {
		if err := Write(w, a); err != nil {
			return err
		}
	}

	return nil
}

// SizeAll returns the encoded size of the list written by WriteAll.
func SizeAll(addrs []Address) int {
	size := 4
	for _, a := range addrs {
		size += Size(a)
	}

	return size
}

// ReadFunc decodes the body of an address of a particular kind.
type ReadFunc func(r *binario.Reader) (Address, error)

// Registry maps address kinds to their decoders.
type Registry struct {
	readers [256]ReadFunc
}

// NewRegistry creates a registry with the built-in address kinds.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.readers[KindUUID] = readUUID

	return reg
}

// Register adds a decoder for a custom address kind.
func (reg *Registry) Register(kind Kind, fn ReadFunc) error {
	if kind == KindNull {
		return fmt.Errorf("%w: kind %d is reserved", ErrDuplicateKind, kind)
	}

	if reg.readers[kind] != nil {
		return fmt.Errorf("%w: %d", ErrDuplicateKind, kind)
	}

	reg.readers[kind] = fn

	return nil
}

// Read decodes an address written by Write. It returns nil for KindNull.
func (reg *Registry) Read(r *binario.Reader) (Address, error) {
	b, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	kind := Kind(b)
	if kind == KindNull {
		return nil, nil
	}

	fn := reg.readers[kind]
	if fn == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	return fn(r)
}

// ReadAll decodes a list written by WriteAll.
func (reg *Registry) ReadAll(r *binario.Reader) ([]Address, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}

	if n < 0 {
		return nil, nil
	}

	addrs := make([]Address, 0, generic.Min(n, maxPrealloc))

	for i := int32(0); i < n; i++ {
		a, err := reg.Read(r)
		if err != nil {
			return nil, err
		}

		addrs = append(addrs, a)
	}

	return addrs, nil
}
