package channel

//go:generate mockgen -source=pipeline.go -destination=pipeline_mock_test.go -package=channel

import (
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/message"
)

// Pipeline is the protocol stack a channel sits on. It carries messages and
// events down to the network and delivers inbound traffic to its Upper.
type Pipeline interface {
	// SetUpper installs the receiver of inbound traffic.
	SetUpper(up Upper)

	Start() error
	Stop() error
	Destroy() error

	// Down passes a control event down and returns the result computed by
	// the pipeline.
	Down(evt *event.Event) (any, error)

	// DownMessage accepts a message for delivery.
	DownMessage(msg message.Message) error

	// FlushSupported reports whether Suspend and Resume are implemented.
	FlushSupported() bool
}

// Upper receives traffic coming up from a pipeline. Calls may come from
// several goroutines concurrently.
type Upper interface {
	Up(evt *event.Event) any
	UpMessage(msg message.Message)
	UpBatch(batch *message.Batch)
}
