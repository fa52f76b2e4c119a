package message

import (
	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// BytesMessage carries a subrange of a byte slice. The slice is referenced,
// not copied, and must not be modified after it has been attached.
type BytesMessage struct {
	Envelope
	array  []byte
	offset int
	length int
}

var _ Message = (*BytesMessage)(nil)

// NewBytesMessage creates a message carrying the whole data slice. A nil
// slice means no payload.
func NewBytesMessage(dest address.Address, data []byte) *BytesMessage {
	m := &BytesMessage{}
	m.dest = dest
	m.array = data
	m.length = len(data)

	return m
}

// NewObjectBytesMessage creates a message carrying the serialized form of
// obj. See SetObject.
func NewObjectBytesMessage(dest address.Address, obj any) (*BytesMessage, error) {
	m := &BytesMessage{}
	m.dest = dest

	if err := m.SetObject(obj); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *BytesMessage) Type() Type {
	return TypeBytes
}

func (m *BytesMessage) HasPayload() bool {
	return m.array != nil
}

func (m *BytesMessage) HasArray() bool {
	return true
}

func (m *BytesMessage) Array() ([]byte, error) {
	return m.view(), nil
}

func (m *BytesMessage) view() []byte {
	if m.array == nil {
		return nil
	}

	return m.array[m.offset : m.offset+m.length]
}

func (m *BytesMessage) Offset() int {
	return m.offset
}

func (m *BytesMessage) Length() int {
	return m.length
}

// SetArray attaches b[offset:offset+length] as the payload. The range is
// validated before the message is modified. A nil slice clears the payload.
func (m *BytesMessage) SetArray(b []byte, offset, length int) error {
	if b == nil {
		m.array, m.offset, m.length = nil, 0, 0
		return nil
	}

	if err := checkBounds(b, offset, length); err != nil {
		return err
	}

	m.array, m.offset, m.length = b, offset, length

	return nil
}

// SetObject serializes obj and attaches the result as the payload. Byte
// slices are attached as is.
func (m *BytesMessage) SetObject(obj any) error {
	if obj == nil {
		m.ClearFlag(FlagSerialized)
		return m.SetArray(nil, 0, 0)
	}

	if b, ok := obj.([]byte); ok {
		m.ClearFlag(FlagSerialized)
		return m.SetArray(b, 0, len(b))
	}

	data, err := encodeObject(obj)
	if err != nil {
		return err
	}

	m.SetFlag(FlagSerialized)

	return m.SetArray(data, 0, len(data))
}

// Object returns the deserialized value when the payload is a serialized
// object, or the byte payload otherwise.
func (m *BytesMessage) Object() (any, error) {
	if m.array == nil {
		return nil, nil
	}

	if m.IsFlagSet(FlagSerialized) {
		return decodeAny(m.view())
	}

	return m.view(), nil
}

func (m *BytesMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *BytesMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &BytesMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.array, cp.offset, cp.length = m.array, m.offset, m.length
	}

	return cp
}

func (m *BytesMessage) String() string {
	return m.describe(m)
}

func (m *BytesMessage) payloadSize() int {
	size := 4
	if m.array != nil {
		size += m.length
	}

	return size
}

func (m *BytesMessage) writePayload(w *binario.Writer) error {
	if m.array == nil {
		return w.WriteInt32(-1)
	}

	if err := w.WriteInt32(int32(m.length)); err != nil {
		return err
	}

	return w.WriteRaw(m.view())
}

func (m *BytesMessage) readPayload(r *binario.Reader, _ *Codec) error {
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}

	if n < 0 {
		m.array, m.offset, m.length = nil, 0, 0
		return nil
	}

	data, err := r.ReadRaw(int(n))
	if err != nil {
		return err
	}

	m.array, m.offset, m.length = data, 0, len(data)

	return nil
}

func checkBounds(b []byte, offset, length int) error {
	if offset < 0 || offset > len(b) {
		return ErrOutOfBounds.Wrapf(nil, "offset %d, array length %d", offset, len(b))
	}

	if length < 0 || offset+length > len(b) {
		return ErrOutOfBounds.Wrapf(nil, "offset %d + length %d > array length %d", offset, length, len(b))
	}

	return nil
}
