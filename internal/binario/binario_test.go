package binario

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, binary.BigEndian)

	require.NoError(t, w.WriteUint8(7))
	require.NoError(t, w.WriteInt16(-2))
	require.NoError(t, w.WriteInt32(-3))
	require.NoError(t, w.WriteInt64(-4))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteString("hello"))
	require.NoError(t, w.WriteVarUint(300))
	require.NoError(t, w.WriteRaw([]byte{1, 2}))

	r := NewReader(buf, binary.BigEndian)

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), u8)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-3), i32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-4), i64)

	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	v, err := r.ReadVarUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)

	raw, err := r.ReadRaw(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)
}

func TestWriter_BigEndian(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, binary.BigEndian)

	require.NoError(t, w.WriteUint16(0x0102))
	assert.Equal(t, []byte{0x01, 0x02}, buf.Bytes())
}

func TestReader_ShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}), binary.BigEndian)

	_, err := r.ReadUint32()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_ReadRaw(t *testing.T) {
	large := bytes.Repeat([]byte{7}, maxPrealloc*2+1)

	tests := map[string]struct {
		data    []byte
		n       int
		want    []byte
		wantErr error
	}{
		"Small":          {data: []byte{1, 2, 3}, n: 3, want: []byte{1, 2, 3}},
		"Large":          {data: large, n: len(large), want: large},
		"Negative":       {data: []byte{1}, n: -1, wantErr: ErrInvalidLength},
		"ShortSmall":     {data: []byte{1, 2}, n: 3, wantErr: io.ErrUnexpectedEOF},
		"ShortLarge":     {data: large[:maxPrealloc], n: len(large), wantErr: io.ErrUnexpectedEOF},
		"EmptyLargeRead": {data: nil, n: maxPrealloc + 1, wantErr: io.ErrUnexpectedEOF},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data), binary.BigEndian)

			got, err := r.ReadRaw(tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_ReadBytesHugeLength(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 1, 2, 3}
	r := NewReader(bytes.NewReader(data), binary.BigEndian)

	_, err := r.ReadBytes()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
