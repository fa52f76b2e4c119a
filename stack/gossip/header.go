package gossip

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/message"
)

const (
	// StateHeaderMagic identifies StateHeader on the wire.
	StateHeaderMagic uint16 = 1100

	// stateProtID is the protocol id the state header is attached under.
	stateProtID uint16 = 40
)

type StateKind uint8

const (
	StateRequest StateKind = iota + 1
	StateResponse
)

func (k StateKind) String() string {
	switch k {
	case StateRequest:
		return "REQ"
	case StateResponse:
		return "RSP"
	default:
		return fmt.Sprintf("StateKind(%d)", uint8(k))
	}
}

// StateHeader marks a message as part of a state transfer. A response
// carries the state as its payload, or the provider error.
type StateHeader struct {
	message.HeaderBase
	Kind  StateKind
	Error string
}

var _ message.Header = (*StateHeader)(nil)

func (h *StateHeader) Magic() uint16 {
	return StateHeaderMagic
}

func (h *StateHeader) Size() int {
	return 1 + 4 + len(h.Error)
}

func (h *StateHeader) WriteTo(w *binario.Writer) error {
	if err := w.WriteUint8(uint8(h.Kind)); err != nil {
		return err
	}

	return w.WriteString(h.Error)
}

func (h *StateHeader) ReadFrom(r *binario.Reader) error {
	kind, err := r.ReadUint8()
	if err != nil {
		return err
	}

	h.Kind = StateKind(kind)

	h.Error, err = r.ReadString()

	return err
}

func (h *StateHeader) String() string {
	if h.Error != "" {
		return fmt.Sprintf("STATE %s (err=%s)", h.Kind, h.Error)
	}

	return "STATE " + h.Kind.String()
}
