package message

import (
	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// EmptyMessage has no payload. It is used for header-only traffic.
type EmptyMessage struct {
	Envelope
}

var _ Message = (*EmptyMessage)(nil)

func NewEmptyMessage(dest address.Address) *EmptyMessage {
	m := &EmptyMessage{}
	m.dest = dest

	return m
}

func (m *EmptyMessage) Type() Type {
	return TypeEmpty
}

func (m *EmptyMessage) HasPayload() bool {
	return false
}

func (m *EmptyMessage) HasArray() bool {
	return false
}

func (m *EmptyMessage) Array() ([]byte, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "empty message has no array")
}

func (m *EmptyMessage) Object() (any, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "empty message has no object")
}

func (m *EmptyMessage) Offset() int {
	return 0
}

func (m *EmptyMessage) Length() int {
	return 0
}

func (m *EmptyMessage) Size() int {
	return m.Envelope.size(nil)
}

func (m *EmptyMessage) Copy(_, copyHeaders bool) Message {
	cp := &EmptyMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	return cp
}

func (m *EmptyMessage) String() string {
	return m.describe(m)
}

func (m *EmptyMessage) payloadSize() int {
	return 0
}

func (m *EmptyMessage) writePayload(*binario.Writer) error {
	return nil
}

func (m *EmptyMessage) readPayload(*binario.Reader, *Codec) error {
	return nil
}
