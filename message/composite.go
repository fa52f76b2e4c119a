package message

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// CompositeMessage carries an ordered list of messages sharing the
// destination of the container. Every entry is written with its addresses.
type CompositeMessage struct {
	Envelope
	msgs []Message
}

var _ Message = (*CompositeMessage)(nil)

func NewCompositeMessage(dest address.Address, msgs ...Message) (*CompositeMessage, error) {
	m := &CompositeMessage{}
	m.dest = dest

	if err := m.Add(msgs...); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *CompositeMessage) Type() Type {
	return TypeComposite
}

// Add appends the messages. If any of them has a different destination,
// nothing is added and ErrDestMismatch is returned.
func (m *CompositeMessage) Add(msgs ...Message) error {
	if err := checkSameDest(m.dest, msgs); err != nil {
		return err
	}

	m.msgs = append(m.msgs, msgs...)

	return nil
}

func (m *CompositeMessage) Get(i int) Message {
	return m.msgs[i]
}

func (m *CompositeMessage) Len() int {
	return len(m.msgs)
}

// Messages returns a copy of the list of entries.
func (m *CompositeMessage) Messages() []Message {
	msgs := make([]Message, len(m.msgs))
	copy(msgs, m.msgs)

	return msgs
}

func (m *CompositeMessage) HasPayload() bool {
	return len(m.msgs) > 0
}

func (m *CompositeMessage) HasArray() bool {
	return false
}

func (m *CompositeMessage) Array() ([]byte, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "composite message has no array")
}

func (m *CompositeMessage) Object() (any, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "composite message has no object")
}

func (m *CompositeMessage) Offset() int {
	return 0
}

func (m *CompositeMessage) Length() int {
	length := 0
	for _, msg := range m.msgs {
		length += msg.Length()
	}

	return length
}

func (m *CompositeMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *CompositeMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &CompositeMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.msgs = m.Messages()
	}

	return cp
}

func (m *CompositeMessage) String() string {
	return fmt.Sprintf("%s (%d messages)", m.describe(m), len(m.msgs))
}

func (m *CompositeMessage) payloadSize() int {
	size := 4
	for _, msg := range m.msgs {
		size += 2 + msg.Size()
	}

	return size
}

func (m *CompositeMessage) writePayload(w *binario.Writer) error {
	if err := w.WriteInt32(int32(len(m.msgs))); err != nil {
		return err
	}

	for _, msg := range m.msgs {
		if err := w.WriteUint16(uint16(msg.Type())); err != nil {
			return err
		}

		if err := WriteTo(w, msg); err != nil {
			return err
		}
	}

	return nil
}

func (m *CompositeMessage) readPayload(r *binario.Reader, c *Codec) error {
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}

	if n < 0 {
		return ErrDecode.Wrapf(nil, "negative entry count %d", n)
	}

	m.msgs = nil

	for i := int32(0); i < n; i++ {
		msg, err := c.ReadMessage(r)
		if err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}

		m.msgs = append(m.msgs, msg)
	}

	return nil
}

func checkSameDest(dest address.Address, msgs []Message) error {
	for _, msg := range msgs {
		if !address.Equal(msg.Dest(), dest) {
			return ErrDestMismatch.Wrapf(nil, "container dest %s, message dest %s",
				addrString(dest), addrString(msg.Dest()))
		}
	}

	return nil
}
