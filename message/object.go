package message

import (
	"sync"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

const (
	objectNull       uint8 = 0
	objectStreamable uint8 = 1
	objectSerialized uint8 = 2
)

// ObjectMessage carries an arbitrary value. Values implementing Streamable
// are written directly. Any other value is serialized lazily, the first time
// its wire length or bytes are needed, and the serialized form is cached.
type ObjectMessage struct {
	Envelope

	mu         sync.Mutex
	obj        any
	serialized []byte
	err        error
}

var _ Message = (*ObjectMessage)(nil)

func NewObjectMessage(dest address.Address, obj any) *ObjectMessage {
	m := &ObjectMessage{obj: obj}
	m.dest = dest

	return m
}

func (m *ObjectMessage) Type() Type {
	return TypeObject
}

// SetObject replaces the payload and drops the cached serialized form.
func (m *ObjectMessage) SetObject(obj any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.obj = obj
	m.serialized = nil
	m.err = nil
}

// Object returns the payload. A payload received from the wire in
// serialized form is decoded into a generic value.
func (m *ObjectMessage) Object() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.obj == nil && m.serialized != nil {
		obj, err := decodeAny(m.serialized)
		if err != nil {
			return nil, err
		}

		m.obj = obj
	}

	return m.obj, nil
}

func (m *ObjectMessage) HasPayload() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.obj != nil || m.serialized != nil
}

func (m *ObjectMessage) HasArray() bool {
	return false
}

func (m *ObjectMessage) Array() ([]byte, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "object message has no array")
}

func (m *ObjectMessage) Offset() int {
	return 0
}

func (m *ObjectMessage) Length() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.obj.(Streamable); ok {
		return s.Size()
	}

	if err := m.serializeLocked(); err != nil {
		return 0
	}

	return len(m.serialized)
}

// serialize returns the serialized form of a non-streamable payload.
func (m *ObjectMessage) serialize() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.obj.(Streamable); ok {
		return nil, ErrUnsupportedOperation.Wrapf(nil, "streamable payload is not serialized")
	}

	if err := m.serializeLocked(); err != nil {
		return nil, err
	}

	return m.serialized, nil
}

func (m *ObjectMessage) serializeLocked() error {
	if m.serialized != nil || m.obj == nil {
		return nil
	}

	if m.err != nil {
		return m.err
	}

	m.serialized, m.err = encodeObject(m.obj)

	return m.err
}

func (m *ObjectMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *ObjectMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &ObjectMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		m.mu.Lock()
		cp.obj, cp.serialized = m.obj, m.serialized
		m.mu.Unlock()
	}

	return cp
}

func (m *ObjectMessage) String() string {
	return m.describe(m)
}

func (m *ObjectMessage) payloadSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.obj.(Streamable); ok {
		return 1 + 2 + s.Size()
	}

	if m.obj == nil && m.serialized == nil {
		return 1
	}

	if err := m.serializeLocked(); err != nil {
		return 1
	}

	return 1 + 4 + len(m.serialized)
}

func (m *ObjectMessage) writePayload(w *binario.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.obj.(Streamable); ok {
		if err := w.WriteUint8(objectStreamable); err != nil {
			return err
		}

		if err := w.WriteUint16(s.Magic()); err != nil {
			return err
		}

		return s.WriteTo(w)
	}

	if m.obj == nil && m.serialized == nil {
		return w.WriteUint8(objectNull)
	}

	if err := m.serializeLocked(); err != nil {
		return err
	}

	if err := w.WriteUint8(objectSerialized); err != nil {
		return err
	}

	return w.WriteBytes(m.serialized)
}

func (m *ObjectMessage) readPayload(r *binario.Reader, c *Codec) error {
	kind, err := r.ReadUint8()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.obj, m.serialized, m.err = nil, nil, nil

	switch kind {
	case objectNull:
		return nil
	case objectStreamable:
		magic, err := r.ReadUint16()
		if err != nil {
			return err
		}

		s, err := c.Objects.Create(magic)
		if err != nil {
			return err
		}

		if err := s.ReadFrom(r); err != nil {
			return err
		}

		m.obj = s

		return nil
	case objectSerialized:
		data, err := r.ReadBytes()
		if err != nil {
			return err
		}

		m.serialized = data

		return nil
	default:
		return ErrDecode.Wrapf(nil, "unknown object payload kind %d", kind)
	}
}
