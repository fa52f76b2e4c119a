package binario

import (
	"encoding/binary"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

type Writer struct {
	writer    io.Writer
	byteOrder binary.ByteOrder
	buf       [binary.MaxVarintLen64]byte
}

func NewWriter(writer io.Writer, byteOrder binary.ByteOrder) *Writer {
	return &Writer{
		writer:    writer,
		byteOrder: byteOrder,
	}
}

func (w *Writer) WriteUint8(value uint8) error {
	w.buf[0] = value
	_, err := w.writer.Write(w.buf[:1])

	return err
}

func (w *Writer) WriteUint16(value uint16) error {
	w.byteOrder.PutUint16(w.buf[:2], value)
	_, err := w.writer.Write(w.buf[:2])

	return err
}

func (w *Writer) WriteUint32(value uint32) error {
	w.byteOrder.PutUint32(w.buf[:4], value)
	_, err := w.writer.Write(w.buf[:4])

	return err
}

func (w *Writer) WriteUint64(value uint64) error {
	w.byteOrder.PutUint64(w.buf[:8], value)
	_, err := w.writer.Write(w.buf[:8])

	return err
}

func (w *Writer) WriteInt16(value int16) error {
	return w.WriteUint16(uint16(value))
}

func (w *Writer) WriteInt32(value int32) error {
	return w.WriteUint32(uint32(value))
}

func (w *Writer) WriteInt64(value int64) error {
	return w.WriteUint64(uint64(value))
}

func (w *Writer) WriteBool(value bool) error {
	if value {
		return w.WriteUint8(1)
	}

	return w.WriteUint8(0)
}

// WriteRaw writes the bytes as is, without a length prefix.
func (w *Writer) WriteRaw(value []byte) error {
	_, err := w.writer.Write(value)
	return err
}

func (w *Writer) WriteBytes(value []byte) error {
	length := uint32(len(value))
	if err := w.WriteUint32(length); err != nil {
		return err
	}

	_, err := w.writer.Write(value)

	return err
}

func (w *Writer) WriteString(value string) error {
	return w.WriteBytes([]byte(value))
}

// WriteVarUint writes the value in the base-128 varint encoding.
func (w *Writer) WriteVarUint(value uint64) error {
	_, err := w.writer.Write(protowire.AppendVarint(w.buf[:0], value))
	return err
}
