package message

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/internal/generic"
)

// ByteOrder is the byte order of all multi-byte integers on the wire.
var ByteOrder = binary.BigEndian

// Streamable is a self-describing value that knows its own wire length. It
// is used as the payload of an ObjectMessage without generic serialization.
type Streamable interface {
	Magic() uint16
	Size() int
	WriteTo(w *binario.Writer) error
	ReadFrom(r *binario.Reader) error
}

// Codec encodes and decodes messages. All registries needed for decoding
// are held by the codec, so several independent codecs can coexist.
type Codec struct {
	Types     *TypeRegistry
	Headers   *HeaderRegistry
	Objects   *ObjectRegistry
	Addresses *address.Registry

	// HeaderCapacity is the minimum capacity of the header table of a
	// decoded message.
	HeaderCapacity int
}

// NewCodec creates a codec with the built-in message variants and address
// kinds, and empty header and object registries.
func NewCodec() *Codec {
	return &Codec{
		Types:          NewTypeRegistry(),
		Headers:        NewMagicRegistry[Header](),
		Objects:        NewMagicRegistry[Streamable](),
		Addresses:      address.NewRegistry(),
		HeaderCapacity: DefaultHeaders,
	}
}

// Marshal returns the type discriminant followed by the message encoding.
func (c *Codec) Marshal(m Message) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 2+m.Size()))

	if err := c.WriteMessage(binario.NewWriter(buf, ByteOrder), m); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a message produced by Marshal.
func (c *Codec) Unmarshal(data []byte) (Message, error) {
	return c.ReadMessage(binario.NewReader(bytes.NewReader(data), ByteOrder))
}

// WriteMessage writes the type discriminant and the message.
func (c *Codec) WriteMessage(w *binario.Writer, m Message) error {
	if err := w.WriteUint16(uint16(m.Type())); err != nil {
		return err
	}

	return WriteTo(w, m)
}

// ReadMessage reads a message written by WriteMessage.
func (c *Codec) ReadMessage(r *binario.Reader) (Message, error) {
	t, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	m, err := c.Types.Create(Type(t))
	if err != nil {
		return nil, err
	}

	if err := c.ReadFrom(r, m); err != nil {
		return nil, err
	}

	return m, nil
}

// WriteTo writes the envelope and the payload of the message, without the
// type discriminant.
func WriteTo(w *binario.Writer, m Message) error {
	e := m.envelope()

	var leading uint8
	if e.dest != nil {
		leading |= destSet
	}

	if e.src != nil {
		leading |= srcSet
	}

	if err := w.WriteUint8(leading); err != nil {
		return err
	}

	if err := w.WriteUint16(uint16(e.Flags())); err != nil {
		return err
	}

	if e.dest != nil {
		if err := address.Write(w, e.dest); err != nil {
			return err
		}
	}

	if e.src != nil {
		if err := address.Write(w, e.src); err != nil {
			return err
		}
	}

	if err := writeHeaders(w, e, nil); err != nil {
		return err
	}

	return m.writePayload(w)
}

// WriteToNoAddrs writes the message without the destination. The source is
// written only when it differs from src, which is the sender known from the
// context. Headers of the excluded protocols are skipped.
func WriteToNoAddrs(w *binario.Writer, m Message, src address.Address, excluded ...uint16) error {
	e := m.envelope()
	writeSrc := src == nil || (e.src != nil && !address.Equal(e.src, src))

	var leading uint8
	if writeSrc {
		leading |= srcSet
	}

	if err := w.WriteUint8(leading); err != nil {
		return err
	}

	if err := w.WriteUint16(uint16(e.Flags())); err != nil {
		return err
	}

	if writeSrc {
		if err := address.Write(w, e.src); err != nil {
			return err
		}
	}

	if err := writeHeaders(w, e, excluded); err != nil {
		return err
	}

	return m.writePayload(w)
}

func sizeNoAddrs(m Message, src address.Address) int {
	e := m.envelope()
	size := 1 + 2 + 2 + e.headers.marshalledSize(nil) + m.payloadSize()

	if src == nil || (e.src != nil && !address.Equal(e.src, src)) {
		size += address.Size(e.src)
	}

	return size
}

func writeHeaders(w *binario.Writer, e *Envelope, excluded []uint16) error {
	hdrs := e.headers.list()

	count := 0
	for _, hdr := range hdrs {
		if !containsID(excluded, hdr.ProtID()) {
			count++
		}
	}

	if err := w.WriteUint16(uint16(count)); err != nil {
		return err
	}

	for _, hdr := range hdrs {
		if containsID(excluded, hdr.ProtID()) {
			continue
		}

		if err := w.WriteUint16(hdr.ProtID()); err != nil {
			return err
		}

		if err := w.WriteUint16(hdr.Magic()); err != nil {
			return err
		}

		if err := hdr.WriteTo(w); err != nil {
			return fmt.Errorf("write header %d: %w", hdr.ProtID(), err)
		}
	}

	return nil
}

// ReadFrom decodes the envelope and the payload into m. An unknown header
// magic id fails the whole message.
func (c *Codec) ReadFrom(r *binario.Reader, m Message) error {
	e := m.envelope()

	leading, err := r.ReadUint8()
	if err != nil {
		return err
	}

	flags, err := r.ReadUint16()
	if err != nil {
		return err
	}

	e.flags.Store(uint32(flags))
	e.transient.Store(0)

	if leading&destSet != 0 {
		if e.dest, err = c.Addresses.Read(r); err != nil {
			return fmt.Errorf("read dest: %w", err)
		}
	}

	if leading&srcSet != 0 {
		if e.src, err = c.Addresses.Read(r); err != nil {
			return fmt.Errorf("read src: %w", err)
		}
	}

	count, err := r.ReadUint16()
	if err != nil {
		return err
	}

	e.headers.reset(generic.Max(int(count), c.HeaderCapacity))

	for i := 0; i < int(count); i++ {
		hdr, err := c.readHeader(r)
		if err != nil {
			return err
		}

		e.headers.put(hdr.ProtID(), hdr)
	}

	return m.readPayload(r, c)
}

func (c *Codec) readHeader(r *binario.Reader) (Header, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	magic, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	hdr, err := c.Headers.Create(magic)
	if err != nil {
		return nil, err
	}

	if err := hdr.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read header %d: %w", id, err)
	}

	hdr.SetProtID(id)

	return hdr, nil
}

// countingWriter counts the bytes written to it and discards them.
type countingWriter struct {
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	cw.n += len(p)
	return len(p), nil
}

// SerializedSize returns the exact length of the output of Marshal without
// materializing it.
func SerializedSize(m Message) (int, error) {
	cw := &countingWriter{}

	w := binario.NewWriter(cw, ByteOrder)
	if err := w.WriteUint16(uint16(m.Type())); err != nil {
		return 0, err
	}

	if err := WriteTo(w, m); err != nil {
		return 0, err
	}

	return cw.n, nil
}

var _ io.Writer = (*countingWriter)(nil)
