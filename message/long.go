package message

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// LongMessage carries a single integer in a variable-length encoding.
type LongMessage struct {
	Envelope
	value int64
}

var _ Message = (*LongMessage)(nil)

func NewLongMessage(dest address.Address, value int64) *LongMessage {
	m := &LongMessage{value: value}
	m.dest = dest

	return m
}

func (m *LongMessage) Type() Type {
	return TypeLong
}

func (m *LongMessage) Value() int64 {
	return m.value
}

func (m *LongMessage) SetValue(v int64) {
	m.value = v
}

func (m *LongMessage) HasPayload() bool {
	return true
}

func (m *LongMessage) HasArray() bool {
	return false
}

func (m *LongMessage) Array() ([]byte, error) {
	return nil, ErrUnsupportedOperation.Wrapf(nil, "long message has no array")
}

func (m *LongMessage) Object() (any, error) {
	return m.value, nil
}

func (m *LongMessage) Offset() int {
	return 0
}

func (m *LongMessage) Length() int {
	return m.payloadSize()
}

func (m *LongMessage) Size() int {
	return m.Envelope.size(nil) + m.payloadSize()
}

func (m *LongMessage) Copy(copyPayload, copyHeaders bool) Message {
	cp := &LongMessage{}
	m.copyTo(&cp.Envelope, copyHeaders)

	if copyPayload {
		cp.value = m.value
	}

	return cp
}

func (m *LongMessage) String() string {
	return m.describe(m)
}

func (m *LongMessage) payloadSize() int {
	return protowire.SizeVarint(protowire.EncodeZigZag(m.value))
}

func (m *LongMessage) writePayload(w *binario.Writer) error {
	return w.WriteVarUint(protowire.EncodeZigZag(m.value))
}

func (m *LongMessage) readPayload(r *binario.Reader, _ *Codec) error {
	v, err := r.ReadVarUint()
	if err != nil {
		return err
	}

	m.value = protowire.DecodeZigZag(v)

	return nil
}
