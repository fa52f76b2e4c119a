package message

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
)

// Mode describes the delivery flavor of the messages in a batch.
type Mode int

const (
	ModeReg Mode = iota
	ModeOOB
	ModeMixed
)

func (m Mode) String() string {
	switch m {
	case ModeReg:
		return "REG"
	case ModeOOB:
		return "OOB"
	case ModeMixed:
		return "MIXED"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Batch is a group of messages received from the same sender and delivered
// up in one call. It is not safe for concurrent use.
type Batch struct {
	dest        address.Address
	sender      address.Address
	clusterName string
	multicast   bool
	mode        Mode
	msgs        []Message
}

func NewBatch(dest, sender address.Address, clusterName string, multicast bool, msgs ...Message) *Batch {
	b := &Batch{
		dest:        dest,
		sender:      sender,
		clusterName: clusterName,
		multicast:   multicast,
	}

	b.Add(msgs...)

	return b
}

func (b *Batch) Dest() address.Address {
	return b.dest
}

func (b *Batch) Sender() address.Address {
	return b.sender
}

func (b *Batch) ClusterName() string {
	return b.clusterName
}

func (b *Batch) Multicast() bool {
	return b.multicast
}

func (b *Batch) Mode() Mode {
	return b.mode
}

// Add appends messages and updates the mode of the batch.
func (b *Batch) Add(msgs ...Message) {
	for _, msg := range msgs {
		if msg == nil {
			continue
		}

		b.msgs = append(b.msgs, msg)
		b.updateMode(msg)
	}
}

func (b *Batch) updateMode(msg Message) {
	oob := msg.IsFlagSet(FlagOOB)

	if len(b.msgs) == 1 {
		if oob {
			b.mode = ModeOOB
		} else {
			b.mode = ModeReg
		}

		return
	}

	if (b.mode == ModeReg && oob) || (b.mode == ModeOOB && !oob) {
		b.mode = ModeMixed
	}
}

func (b *Batch) determineMode() {
	msgs := b.msgs
	b.msgs = b.msgs[:0]
	b.mode = ModeReg

	for _, msg := range msgs {
		b.msgs = append(b.msgs, msg)
		b.updateMode(msg)
	}
}

// RemoveIf removes the messages matching the predicate and returns how many
// were removed.
func (b *Batch) RemoveIf(pred func(Message) bool) int {
	kept := b.msgs[:0]
	removed := 0

	for _, msg := range b.msgs {
		if pred(msg) {
			removed++
			continue
		}

		kept = append(kept, msg)
	}

	for i := len(kept); i < len(b.msgs); i++ {
		b.msgs[i] = nil
	}

	b.msgs = kept
	b.determineMode()

	return removed
}

// Len is the number of messages in the batch.
func (b *Batch) Len() int {
	return len(b.msgs)
}

func (b *Batch) IsEmpty() bool {
	return len(b.msgs) == 0
}

// Length is the total payload length of all messages.
func (b *Batch) Length() int {
	length := 0
	for _, msg := range b.msgs {
		length += msg.Length()
	}

	return length
}

// TotalSize is the total wire size of all messages.
func (b *Batch) TotalSize() int {
	size := 0
	for _, msg := range b.msgs {
		size += msg.Size()
	}

	return size
}

func (b *Batch) First() Message {
	if len(b.msgs) == 0 {
		return nil
	}

	return b.msgs[0]
}

func (b *Batch) Last() Message {
	if len(b.msgs) == 0 {
		return nil
	}

	return b.msgs[len(b.msgs)-1]
}

// Messages returns a copy of the messages.
func (b *Batch) Messages() []Message {
	msgs := make([]Message, len(b.msgs))
	copy(msgs, b.msgs)

	return msgs
}

// Each calls fn for every message until it returns false.
func (b *Batch) Each(fn func(Message) bool) {
	for _, msg := range b.msgs {
		if !fn(msg) {
			return
		}
	}
}

func (b *Batch) String() string {
	return fmt.Sprintf("dest=%s, sender=%s, cluster=%s, multicast=%t, mode=%s, size=%d",
		addrString(b.dest), srcString(b.sender), b.clusterName, b.multicast, b.mode, len(b.msgs))
}

// Reply creates an empty message addressed to the sender of m.
func Reply(m Message) *EmptyMessage {
	reply := NewEmptyMessage(m.Src())
	if m.Dest() != nil {
		reply.SetSrc(m.Dest())
	}

	return reply
}
