package binario

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrInvalidLength is returned when a length read from the stream is negative.
var ErrInvalidLength = errors.New("binario: invalid length")

// maxPrealloc caps the allocation made up front for a raw read. Longer reads
// grow the buffer as data actually arrives.
const maxPrealloc = 64 << 10

// Reader reads fixed-size primitives from the underlying reader. Every read
// is a full read: a short stream yields io.ErrUnexpectedEOF.
type Reader struct {
	byteOrder binary.ByteOrder
	reader    io.Reader
	buf       [8]byte
}

func NewReader(reader io.Reader, byteOrder binary.ByteOrder) *Reader {
	return &Reader{
		reader:    reader,
		byteOrder: byteOrder,
	}
}

func (r *Reader) read(n int) ([]byte, error) {
	bs := r.buf[:n]
	if _, err := io.ReadFull(r.reader, bs); err != nil {
		return nil, err
	}

	return bs, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	bs, err := r.read(1)
	if err != nil {
		return 0, err
	}

	return bs[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	bs, err := r.read(2)
	if err != nil {
		return 0, err
	}

	return r.byteOrder.Uint16(bs), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	bs, err := r.read(4)
	if err != nil {
		return 0, err
	}

	return r.byteOrder.Uint32(bs), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	bs, err := r.read(8)
	if err != nil {
		return 0, err
	}

	return r.byteOrder.Uint64(bs), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	return b != 0, err
}

// ReadRaw reads exactly n bytes into a newly allocated slice.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidLength
	}

	if n <= maxPrealloc {
		bs := make([]byte, n)
		if _, err := io.ReadFull(r.reader, bs); err != nil {
			return nil, err
		}

		return bs, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, maxPrealloc))
	if _, err := io.CopyN(buf, r.reader, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	return r.ReadRaw(int(length))
}

func (r *Reader) ReadString() (string, error) {
	bs, err := r.ReadBytes()
	return string(bs), err
}

func (r *Reader) ReadVarUint() (uint64, error) {
	var value uint64
	var shift uint

	for {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}

		value |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}

		shift += 7
	}

	return value, nil
}
