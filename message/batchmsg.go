package message

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// BatchMessage carries an ordered list of messages from the same original
// sender. Entries are written without destination, and without source when
// it equals the original sender.
type BatchMessage struct {
	Envelope
	origSrc address.Address
	msgs    []Message
}

var _ Message = (*BatchMessage)(nil)

func NewBatchMessage(dest, origSrc address.Address, msgs ...Message) (*BatchMessage, error) {
	m := &BatchMessage{origSrc: origSrc}
	m.dest = dest

	if err := m.Add(msgs...); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *BatchMessage) Type() Type {
	return TypeBatch
}

// OrigSrc is the sender the entries were originally sent by.
func (m *BatchMessage) OrigSrc() address.Address {
	return m.origSrc
}

func (m *BatchMessage) SetOrigSrc(src address.Address) {
	m.origSrc = src
}

// Add appends the messages. If any of them has a different destination,
// nothing is added and ErrDestMismatch is returned.
func (m *BatchMessage) Add(msgs ...Message) error {
	if err := checkSameDest(m.dest, msgs); err != nil {
		return err
	}

	m.msgs = append(m.msgs, msgs...)

	return nil
}

func (m *BatchMessage) Get(i int) Message {
	return m.msgs[i]
}

func (m *BatchMessage) Len() int {
	return len(m.msgs)
}

func (m *BatchMessage) Messages() []Message {
	msgs := make([]Message, len(m.msgs))
	copy(msgs, m.msgs)

	return msgs
}

func (m *BatchMessage) HasPayload() bool {
	return len(m.msgs) > 0
}

func (m *BatchMessage) HasArray() bool {
	return false
}

func (m *BatchMessage) Array() ([]byte, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "batch message has no array")
}

func (m *BatchMessage) Object() (any, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "batch message has no object")
}

func (m *BatchMessage) Offset() int {
	return 0
}

func (m *BatchMessage) Length() int {
	length := 0
	for _, msg := range m.msgs {
		length += msg.Length()
	}

	return length
}

func (m *BatchMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *BatchMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &BatchMessage{origSrc: m.origSrc}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.msgs = m.Messages()
	}

	return cp
}

func (m *BatchMessage) String() string {
	return fmt.Sprintf("%s (%d messages)", m.describe(m), len(m.msgs))
}

func (m *BatchMessage) payloadSize() int {
	size := 4
	if len(m.msgs) == 0 {
		return size
	}

	size += address.Size(m.origSrc)
	for _, msg := range m.msgs {
		size += 2 + sizeNoAddrs(msg, m.origSrc)
	}

	return size
}

func (m *BatchMessage) writePayload(w *binario.Writer) error {
	if err := w.WriteInt32(int32(len(m.msgs))); err != nil {
		return err
	}

	if len(m.msgs) == 0 {
		return nil
	}

	if err := address.Write(w, m.origSrc); err != nil {
		return err
	}

	for _, msg := range m.msgs {
		if err := w.WriteUint16(uint16(msg.Type())); err != nil {
			return err
		}

		if err := WriteToNoAddrs(w, msg, m.origSrc); err != nil {
			return err
		}
	}

	return nil
}

func (m *BatchMessage) readPayload(r *binario.Reader, c *Codec) error {
	n, err := r.ReadInt32()
	if err != nil {
		return err
	}

	if n < 0 {
		return ErrDecode.Wrapf(nil, "negative entry count %d", n)
	}

	m.msgs = nil

	if n == 0 {
		return nil
	}

	if m.origSrc, err = c.Addresses.Read(r); err != nil {
		return err
	}

	for i := int32(0); i < n; i++ {
		msg, err := c.ReadMessage(r)
		if err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}

		if msg.Src() == nil {
			msg.SetSrc(m.origSrc)
		}

		msg.SetDest(m.dest)

		m.msgs = append(m.msgs, msg)
	}

	return nil
}
