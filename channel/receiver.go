package channel

import (
	"io"

	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

// Receiver is the application callback for inbound messages. A receiver may
// additionally implement any of the listener interfaces below. Callbacks
// are invoked from pipeline goroutines. Returned errors are logged.
type Receiver interface {
	Receive(msg message.Message) error
}

// BatchReceiver receives a whole batch at once. Without it, every message
// of a batch is passed to Receive.
type BatchReceiver interface {
	ReceiveBatch(batch *message.Batch) error
}

type ViewListener interface {
	ViewAccepted(v *view.View)
}

// BlockListener is notified when a flush starts. No messages should be sent
// until Unblock.
type BlockListener interface {
	Block()
}

type UnblockListener interface {
	Unblock()
}

// StateProvider writes the application state when another member requests
// it.
type StateProvider interface {
	GetState(w io.Writer) error
}

// StateReceiver installs the state fetched from another member.
type StateReceiver interface {
	SetState(r io.Reader) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(msg message.Message) error

func (f ReceiverFunc) Receive(msg message.Message) error {
	return f(msg)
}
