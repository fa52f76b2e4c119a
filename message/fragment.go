package message

import (
	"bytes"
	"fmt"
	"io"

	"github.com/maxpoletaev/groupcast/internal/binario"
)

// FragmentedMessage is a byte range over the serialized form of another
// message. The range is produced while writing, so the whole serialized
// message is never held in memory. A fragment read from the wire carries
// the plain bytes of its range.
type FragmentedMessage struct {
	BytesMessage
	original Message
}

var _ Message = (*FragmentedMessage)(nil)

// NewFragmentedMessage creates a fragment covering length bytes of the
// serialized original, starting at offset. The envelope of the original is
// copied without headers.
func NewFragmentedMessage(original Message, offset, length int) *FragmentedMessage {
	m := &FragmentedMessage{original: original}
	original.envelope().copyTo(&m.Envelope, false)
	m.offset, m.length = offset, length

	return m
}

func (m *FragmentedMessage) Type() Type {
	return TypeFragment
}

// Original is the fragmented message, nil for fragments read from the wire.
func (m *FragmentedMessage) Original() Message {
	return m.original
}

func (m *FragmentedMessage) HasPayload() bool {
	return m.original != nil || m.array != nil
}

func (m *FragmentedMessage) HasArray() bool {
	return m.original == nil
}

func (m *FragmentedMessage) Array() ([]byte, error) {
	if m.original != nil {
		return nil, ErrUnsupportedOperation.Wrapf(nil, "fragment is not materialized")
	}

	return m.view(), nil
}

func (m *FragmentedMessage) Object() (any, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "fragment has no object")
}

// Bytes returns the bytes of the fragment, materializing the range of the
// original if needed.
func (m *FragmentedMessage) Bytes() ([]byte, error) {
	if m.original == nil {
		return m.view(), nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, m.length))

	if err := m.writeRange(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (m *FragmentedMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *FragmentedMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &FragmentedMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.original = m.original
		cp.array, cp.offset, cp.length = m.array, m.offset, m.length
	}

	return cp
}

func (m *FragmentedMessage) String() string {
	return fmt.Sprintf("%s (offset=%d, length=%d)", m.describe(m), m.offset, m.length)
}

func (m *FragmentedMessage) payloadSize() int {
	return 4 + m.length
}

func (m *FragmentedMessage) writePayload(w *binario.Writer) error {
	if m.original == nil {
		return m.BytesMessage.writePayload(w)
	}

	if err := w.WriteInt32(int32(m.length)); err != nil {
		return err
	}

	return m.writeRange(&writerAdapter{w})
}

func (m *FragmentedMessage) writeRange(out io.Writer) error {
	pw := &partialWriter{out: out, skip: m.offset, remaining: m.length}
	w := binario.NewWriter(pw, ByteOrder)

	if err := w.WriteUint16(uint16(m.original.Type())); err != nil {
		return err
	}

	if err := WriteTo(w, m.original); err != nil {
		return err
	}

	if pw.remaining > 0 {
		return ErrOutOfBounds.Wrapf(nil, "fragment range exceeds serialized message by %d bytes", pw.remaining)
	}

	return nil
}

func (m *FragmentedMessage) readPayload(r *binario.Reader, c *Codec) error {
	m.original = nil
	return m.BytesMessage.readPayload(r, c)
}

// partialWriter passes through only the bytes within a range of the stream
// and discards the rest.
type partialWriter struct {
	out       io.Writer
	skip      int
	remaining int
}

func (pw *partialWriter) Write(p []byte) (int, error) {
	n := len(p)

	if pw.skip > 0 {
		if pw.skip >= len(p) {
			pw.skip -= len(p)
			return n, nil
		}

		p = p[pw.skip:]
		pw.skip = 0
	}

	if len(p) > pw.remaining {
		p = p[:pw.remaining]
	}

	if len(p) > 0 {
		if _, err := pw.out.Write(p); err != nil {
			return 0, err
		}

		pw.remaining -= len(p)
	}

	return n, nil
}

// writerAdapter exposes a binario.Writer as an io.Writer.
type writerAdapter struct {
	w *binario.Writer
}

func (a *writerAdapter) Write(p []byte) (int, error) {
	if err := a.w.WriteRaw(p); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Fragment splits the serialized form of the message into fragments of at
// most fragSize bytes each.
func Fragment(m Message, fragSize int) ([]*FragmentedMessage, error) {
	if fragSize <= 0 {
		return nil, fmt.Errorf("invalid fragment size %d", fragSize)
	}

	total, err := SerializedSize(m)
	if err != nil {
		return nil, err
	}

	frags := make([]*FragmentedMessage, 0, (total+fragSize-1)/fragSize)

	for offset := 0; offset < total; offset += fragSize {
		length := fragSize
		if offset+length > total {
			length = total - offset
		}

		frags = append(frags, NewFragmentedMessage(m, offset, length))
	}

	return frags, nil
}

// Reassemble decodes the original message from its fragments, which must be
// given in order.
func (c *Codec) Reassemble(frags []Message) (Message, error) {
	var buf bytes.Buffer

	for i, msg := range frags {
		frag, ok := msg.(*FragmentedMessage)
		if !ok {
			return nil, ErrInvalidFragment.Wrapf(nil, "entry %d is %s", i, msg.Type())
		}

		data, err := frag.Bytes()
		if err != nil {
			return nil, err
		}

		buf.Write(data)
	}

	return c.Unmarshal(buf.Bytes())
}
