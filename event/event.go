// Package event defines the control events exchanged between a channel and
// its pipeline.
package event

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/maxpoletaev/groupcast/address"
)

// Type is an event code. Each code documents the type of its argument.
type Type int

const (
	// Msg carries a message.Message.
	Msg Type = iota + 1

	// Connect carries the cluster name as a string.
	Connect

	// ConnectWithState carries the cluster name as a string. The pipeline
	// keeps the flush started by the join running until Resume.
	ConnectWithState

	// Disconnect carries the local address.
	Disconnect

	// ViewChange carries a *view.View.
	ViewChange

	// SetLocalAddress carries the local address.
	SetLocalAddress

	// Suspect carries the address of the suspected member.
	Suspect

	// Block asks the application to stop sending. No argument.
	Block

	// Unblock tells the application it may send again. No argument.
	Unblock

	// Suspend starts a flush. No argument. The pipeline returns a bool
	// telling whether the flush succeeded.
	Suspend

	// Resume stops a flush. No argument.
	Resume

	// GetState requests the state from a member. Carries *StateTransferInfo.
	GetState

	// GetStateOK delivers the state requested with GetState. Carries
	// *StateTransferResult.
	GetStateOK

	// GetApplState asks the application for its state. Carries an
	// io.Writer the state must be written to.
	GetApplState

	// StateTransferInputStream delivers the state as a stream. Carries
	// *StateTransferResult with Reader set.
	StateTransferInputStream

	// Config carries a map[string]any of pipeline settings.
	Config
)

var typeNames = map[Type]string{
	Msg:                      "MSG",
	Connect:                  "CONNECT",
	ConnectWithState:         "CONNECT_WITH_STATE_TRANSFER",
	Disconnect:               "DISCONNECT",
	ViewChange:               "VIEW_CHANGE",
	SetLocalAddress:          "SET_LOCAL_ADDRESS",
	Suspect:                  "SUSPECT",
	Block:                    "BLOCK",
	Unblock:                  "UNBLOCK",
	Suspend:                  "SUSPEND",
	Resume:                   "RESUME",
	GetState:                 "GET_STATE",
	GetStateOK:               "GET_STATE_OK",
	GetApplState:             "GET_APPLSTATE",
	StateTransferInputStream: "STATE_TRANSFER_INPUTSTREAM",
	Config:                   "CONFIG",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Event is a control event passed up or down the pipeline.
type Event struct {
	Type Type
	Arg  any
}

func New(t Type, arg any) *Event {
	return &Event{Type: t, Arg: arg}
}

func (e *Event) String() string {
	if e.Arg == nil {
		return e.Type.String()
	}

	return fmt.Sprintf("%s (arg=%v)", e.Type, e.Arg)
}

// StateTransferInfo is the argument of a GetState request.
type StateTransferInfo struct {
	// Target is the member to fetch the state from.
	Target address.Address

	// Timeout bounds the whole transfer.
	Timeout time.Duration
}

// StateTransferResult is the outcome of a state transfer. Either State or
// Reader is set on success, Err on failure.
type StateTransferResult struct {
	Provider address.Address
	State    []byte
	Reader   io.Reader
	Err      error
}

// StateReader returns the transferred state as a stream.
func (r *StateTransferResult) StateReader() io.Reader {
	if r.Reader != nil {
		return r.Reader
	}

	return bytes.NewReader(r.State)
}
