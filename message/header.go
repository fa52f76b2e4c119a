package message

import (
	"strconv"
	"strings"
	"sync"

	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/internal/generic"
)

// DefaultHeaders is the initial capacity of a header table.
const DefaultHeaders = 4

// Header is protocol-specific metadata attached to a message. A header must
// not be modified after it has been attached.
type Header interface {
	// Magic identifies the concrete header type on the wire.
	Magic() uint16

	// ProtID is the id of the protocol owning the header. It is assigned by
	// the header table on insertion.
	ProtID() uint16
	SetProtID(id uint16)

	// Size is an estimate of the encoded size, used for fragmentation.
	Size() int

	WriteTo(w *binario.Writer) error
	ReadFrom(r *binario.Reader) error
}

// HeaderBase implements the protocol id bookkeeping of Header and is meant to
// be embedded into concrete header types.
type HeaderBase struct {
	protID uint16
}

func (h *HeaderBase) ProtID() uint16 {
	return h.protID
}

func (h *HeaderBase) SetProtID(id uint16) {
	h.protID = id
}

// headerTable is a small array of headers with at most one entry per
// protocol id. Lookups are linear.
type headerTable struct {
	mu    sync.RWMutex
	slots []Header
	count int
}

func (t *headerTable) put(id uint16, hdr Header) {
	if hdr == nil {
		t.remove(id)
		return
	}

	hdr.SetProtID(id)

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < t.count; i++ {
		if t.slots[i].ProtID() == id {
			t.slots[i] = hdr
			return
		}
	}

	if t.slots == nil {
		t.slots = make([]Header, DefaultHeaders)
	}

	if t.count == len(t.slots) {
		t.grow(t.count + 1)
	}

	t.slots[t.count] = hdr
	t.count++
}

func (t *headerTable) grow(needed int) {
	slots := make([]Header, needed+1)
	copy(slots, t.slots[:t.count])
	t.slots = slots
}

func (t *headerTable) get(id uint16) Header {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := 0; i < t.count; i++ {
		if t.slots[i].ProtID() == id {
			return t.slots[i]
		}
	}

	return nil
}

func (t *headerTable) remove(id uint16) Header {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < t.count; i++ {
		if hdr := t.slots[i]; hdr.ProtID() == id {
			copy(t.slots[i:], t.slots[i+1:t.count])
			t.count--
			t.slots[t.count] = nil

			return hdr
		}
	}

	return nil
}

func (t *headerTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.count
}

// list returns a snapshot of the attached headers in insertion order.
func (t *headerTable) list() []Header {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hdrs := make([]Header, t.count)
	copy(hdrs, t.slots[:t.count])

	return hdrs
}

func (t *headerTable) asMap() map[uint16]Header {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := make(map[uint16]Header, t.count)
	for i := 0; i < t.count; i++ {
		m[t.slots[i].ProtID()] = t.slots[i]
	}

	return m
}

// copyTo copies the slot array into dst. The headers themselves are shared.
func (t *headerTable) copyTo(dst *headerTable) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	dst.mu.Lock()
	defer dst.mu.Unlock()

	dst.slots = make([]Header, generic.Max(t.count, DefaultHeaders))
	dst.count = copy(dst.slots, t.slots[:t.count])
}

// reset replaces the table with an empty one of the given capacity.
func (t *headerTable) reset(capacity int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.slots = make([]Header, capacity)
	t.count = 0
}

func (t *headerTable) marshalledSize(excluded []uint16) int {
	size := 0

	for _, hdr := range t.list() {
		if containsID(excluded, hdr.ProtID()) {
			continue
		}

		size += 2 + 2 + hdr.Size() // prot id + magic + body
	}

	return size
}

func containsID(ids []uint16, id uint16) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}

	return false
}

// PrintHeaders formats the headers of the message ordered by protocol id.
func PrintHeaders(m Message) string {
	hdrs := m.Headers()
	parts := make([]string, 0, len(hdrs))

	for _, id := range generic.SortedKeys(hdrs) {
		parts = append(parts, strconv.Itoa(int(id))+": "+headerString(hdrs[id]))
	}

	return strings.Join(parts, ", ")
}

func headerString(hdr Header) string {
	if s, ok := hdr.(interface{ String() string }); ok {
		return s.String()
	}

	return "magic=" + strconv.Itoa(int(hdr.Magic()))
}
