// Package message implements the message variants exchanged by group members
// and their binary wire format.
package message

import (
	"fmt"
	"sync/atomic"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// Message is the unit of exchange between group members. The set of variants
// is closed: every implementation embeds one of the variants defined in this
// package.
type Message interface {
	Type() Type

	// Dest is the receiver of the message. Nil means the whole group.
	Dest() address.Address
	SetDest(dest address.Address)

	// Src is the sender of the message. Nil is filled in by the channel
	// when the message is sent.
	Src() address.Address
	SetSrc(src address.Address)

	Flags() Flag
	SetFlag(flags ...Flag)
	ClearFlag(flags ...Flag)
	IsFlagSet(flag Flag) bool

	TransientFlags() TransientFlag
	SetTransientFlag(flags ...TransientFlag)
	ClearTransientFlag(flags ...TransientFlag)
	IsTransientFlagSet(flag TransientFlag) bool

	// SetTransientFlagIfAbsent atomically sets the flag and reports whether
	// it was absent before the call.
	SetTransientFlagIfAbsent(flag TransientFlag) bool

	// PutHeader attaches the header under the protocol id, replacing the
	// previous one. A nil header removes the entry.
	PutHeader(id uint16, hdr Header)
	Header(id uint16) Header
	RemoveHeader(id uint16) Header
	Headers() map[uint16]Header
	NumHeaders() int

	HasPayload() bool
	HasArray() bool

	// Array returns the byte payload without copying. Variants that do not
	// keep their payload as a byte slice return ErrUnsupportedOperation.
	Array() ([]byte, error)

	// Offset is the position of the payload within the array it was
	// attached from.
	Offset() int

	// Length is the length of the payload in bytes. For object payloads it
	// is the serialized length.
	Length() int

	// Object returns the payload as a value.
	Object() (any, error)

	// Size is the number of bytes the message occupies on the wire,
	// excluding the type discriminant.
	Size() int

	// Copy creates a new message with the same envelope. Payload and headers
	// are copied only when requested. The copy gets its own header table,
	// but the header values are shared: a header must not be mutated once
	// attached, so sharing it is equivalent to copying it.
	Copy(copyPayload, copyHeaders bool) Message

	String() string

	envelope() *Envelope
	payloadSize() int
	writePayload(w *binario.Writer) error
	readPayload(r *binario.Reader, c *Codec) error
}

const (
	destSet uint8 = 1
	srcSet  uint8 = 1 << 1
)

// Envelope holds the part of a message shared by all variants. It is
// embedded into every variant and cannot be used on its own.
type Envelope struct {
	dest      address.Address
	src       address.Address
	flags     atomic.Uint32
	transient atomic.Uint32
	headers   headerTable
}

func (e *Envelope) envelope() *Envelope {
	return e
}

func (e *Envelope) Dest() address.Address {
	return e.dest
}

func (e *Envelope) SetDest(dest address.Address) {
	e.dest = dest
}

func (e *Envelope) Src() address.Address {
	return e.src
}

func (e *Envelope) SetSrc(src address.Address) {
	e.src = src
}

func (e *Envelope) Flags() Flag {
	return Flag(e.flags.Load())
}

func (e *Envelope) SetFlag(flags ...Flag) {
	for _, f := range flags {
		orUint32(&e.flags, uint32(f))
	}
}

func (e *Envelope) ClearFlag(flags ...Flag) {
	for _, f := range flags {
		andNotUint32(&e.flags, uint32(f))
	}
}

func (e *Envelope) IsFlagSet(flag Flag) bool {
	return flag != 0 && Flag(e.flags.Load())&flag == flag
}

func (e *Envelope) TransientFlags() TransientFlag {
	return TransientFlag(e.transient.Load())
}

func (e *Envelope) SetTransientFlag(flags ...TransientFlag) {
	for _, f := range flags {
		orUint32(&e.transient, uint32(f))
	}
}

func (e *Envelope) ClearTransientFlag(flags ...TransientFlag) {
	for _, f := range flags {
		andNotUint32(&e.transient, uint32(f))
	}
}

func (e *Envelope) IsTransientFlagSet(flag TransientFlag) bool {
	return flag != 0 && TransientFlag(e.transient.Load())&flag == flag
}

func (e *Envelope) SetTransientFlagIfAbsent(flag TransientFlag) bool {
	for {
		old := e.transient.Load()
		if old&uint32(flag) == uint32(flag) {
			return false
		}

		if e.transient.CompareAndSwap(old, old|uint32(flag)) {
			return true
		}
	}
}

func (e *Envelope) PutHeader(id uint16, hdr Header) {
	e.headers.put(id, hdr)
}

func (e *Envelope) Header(id uint16) Header {
	return e.headers.get(id)
}

func (e *Envelope) RemoveHeader(id uint16) Header {
	return e.headers.remove(id)
}

func (e *Envelope) Headers() map[uint16]Header {
	return e.headers.asMap()
}

func (e *Envelope) NumHeaders() int {
	return e.headers.len()
}

// copyTo copies addresses and persistent flags into dst, and optionally the
// header table. Transient flags are never copied.
func (e *Envelope) copyTo(dst *Envelope, copyHeaders bool) {
	dst.dest = e.dest
	dst.src = e.src
	dst.flags.Store(e.flags.Load())

	if copyHeaders {
		e.headers.copyTo(&dst.headers)
	}
}

func (e *Envelope) size(excluded []uint16) int {
	size := 1 + 2 // leading byte + flags

	if e.dest != nil {
		size += address.Size(e.dest)
	}

	if e.src != nil {
		size += address.Size(e.src)
	}

	size += 2 // number of headers
	size += e.headers.marshalledSize(excluded)

	return size
}

func (e *Envelope) describe(m Message) string {
	s := fmt.Sprintf("[%s to %s, %d bytes", srcString(e.src), addrString(e.dest), m.Length())

	if f := e.Flags(); f != 0 {
		s += ", flags=" + f.String()
	}

	if f := e.TransientFlags(); f != 0 {
		s += ", transient_flags=" + f.String()
	}

	return s + "]"
}

func addrString(a address.Address) string {
	if a == nil {
		return "<all>"
	}

	return a.String()
}

func orUint32(v *atomic.Uint32, mask uint32) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

func andNotUint32(v *atomic.Uint32, mask uint32) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, old&^mask) {
			return
		}
	}
}

func srcString(a address.Address) string {
	if a == nil {
		return "<nil>"
	}

	return a.String()
}
