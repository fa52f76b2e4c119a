package message

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// BufferMessage carries a memory buffer without copying it. A direct buffer
// is memory the message does not own as a plain byte array (e.g. a mapped
// region), so its contents are reachable through Buffer only.
type BufferMessage struct {
	Envelope
	buf    []byte
	offset int
	direct bool
}

var _ Message = (*BufferMessage)(nil)

func NewBufferMessage(dest address.Address, buf []byte) *BufferMessage {
	m := &BufferMessage{buf: buf}
	m.dest = dest

	return m
}

// NewDirectBufferMessage creates a message over a direct buffer.
func NewDirectBufferMessage(dest address.Address, buf []byte) *BufferMessage {
	m := NewBufferMessage(dest, buf)
	m.direct = true

	return m
}

func (m *BufferMessage) Type() Type {
	return TypeBuffer
}

func (m *BufferMessage) IsDirect() bool {
	return m.direct
}

// UseDirectMemory sets whether the payload is treated as a direct buffer.
// It also applies to payloads read from the wire.
func (m *BufferMessage) UseDirectMemory(direct bool) {
	m.direct = direct
}

func (m *BufferMessage) HasPayload() bool {
	return m.buf != nil
}

func (m *BufferMessage) HasArray() bool {
	return m.buf != nil && !m.direct
}

func (m *BufferMessage) Array() ([]byte, error) {
	if m.direct {
		return nil, ErrUnsupportedOperation.Wrapf(nil, "direct buffer has no array")
	}

	return m.buf, nil
}

// Buffer returns the payload regardless of the buffer flavor.
func (m *BufferMessage) Buffer() []byte {
	return m.buf
}

// SetBuffer attaches the buffer as the payload.
func (m *BufferMessage) SetBuffer(buf []byte) {
	m.buf, m.offset = buf, 0
}

// SetArray attaches b[offset:offset+length] as the payload. The range is
// validated before the message is modified.
func (m *BufferMessage) SetArray(b []byte, offset, length int) error {
	if b == nil {
		m.buf, m.offset = nil, 0
		return nil
	}

	if err := checkBounds(b, offset, length); err != nil {
		return err
	}

	m.buf, m.offset = b[offset:offset+length], offset

	return nil
}

func (m *BufferMessage) SetObject(obj any) error {
	if obj == nil {
		m.ClearFlag(FlagSerialized)
		m.SetBuffer(nil)

		return nil
	}

	if b, ok := obj.([]byte); ok {
		m.ClearFlag(FlagSerialized)
		m.SetBuffer(b)

		return nil
	}

	data, err := encodeObject(obj)
	if err != nil {
		return err
	}

	m.SetFlag(FlagSerialized)
	m.SetBuffer(data)

	return nil
}

func (m *BufferMessage) Object() (any, error) {
	if m.buf == nil {
		return nil, nil
	}

	if m.IsFlagSet(FlagSerialized) {
		return decodeAny(m.buf)
	}

	return m.buf, nil
}

func (m *BufferMessage) Offset() int {
	if !m.HasArray() {
		return 0
	}

	return m.offset
}

func (m *BufferMessage) Length() int {
	return len(m.buf)
}

func (m *BufferMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *BufferMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &BufferMessage{direct: m.direct}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.buf, cp.offset = m.buf, m.offset
	}

	return cp
}

func (m *BufferMessage) String() string {
	s := m.describe(m)
	if m.direct {
		s = fmt.Sprintf("%s (direct)", s)
	}

	return s
}

func (m *BufferMessage) payloadSize() int {
	return 1 + 4 + len(m.buf)
}

func (m *BufferMessage) writePayload(w *binario.Writer) error {
	if err := w.WriteBool(m.direct); err != nil {
		return err
	}

	if m.buf == nil {
		return w.WriteInt32(-1)
	}

	if err := w.WriteInt32(int32(len(m.buf))); err != nil {
		return err
	}

	return w.WriteRaw(m.buf)
}

func (m *BufferMessage) readPayload(r *binario.Reader, _ *Codec) error {
	direct, err := r.ReadBool()
	if err != nil {
		return err
	}

	m.direct = direct

	n, err := r.ReadInt32()
	if err != nil {
		return err
	}

	if n < 0 {
		m.buf, m.offset = nil, 0
		return nil
	}

	data, err := r.ReadRaw(int(n))
	if err != nil {
		return err
	}

	m.buf, m.offset = data, 0

	return nil
}
