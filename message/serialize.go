package message

import (
	"github.com/hashicorp/go-msgpack/codec"
)

var msgpackHandle = &codec.MsgpackHandle{
	RawToString: true,
	WriteExt:    true,
}

func encodeObject(obj any) ([]byte, error) {
	var buf []byte

	if err := codec.NewEncoderBytes(&buf, msgpackHandle).Encode(obj); err != nil {
		return nil, err
	}

	return buf, nil
}

func decodeObject(data []byte, out any) error {
	return codec.NewDecoderBytes(data, msgpackHandle).Decode(out)
}

func decodeAny(data []byte) (any, error) {
	var v any

	if err := decodeObject(data, &v); err != nil {
		return nil, err
	}

	return v, nil
}

// DecodeObject decodes a serialized object payload of the message into out,
// which must be a pointer. It works for object messages and for byte or
// buffer messages carrying a serialized object.
func DecodeObject(m Message, out any) error {
	var data []byte

	switch msg := m.(type) {
	case *ObjectMessage:
		if s, ok := msg.obj.(Streamable); ok {
			if dst, ok := out.(*Streamable); ok {
				*dst = s
				return nil
			}
		}

		b, err := msg.serialize()
		if err != nil {
			return err
		}

		data = b
	case *BytesMessage:
		if !msg.IsFlagSet(FlagSerialized) {
			return ErrUnsupportedOperation.Wrapf(nil, "payload is not a serialized object")
		}

		data = msg.view()
	case *BufferMessage:
		if !msg.IsFlagSet(FlagSerialized) {
			return ErrUnsupportedOperation.Wrapf(nil, "payload is not a serialized object")
		}

		data = msg.buf
	default:
		return ErrUnsupportedOperation.Wrapf(nil, "%s has no object payload", m.Type())
	}

	return decodeObject(data, out)
}
