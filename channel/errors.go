package channel

import "github.com/maxpoletaev/groupcast/internal/baseerror"

var (
	ErrIllegalState     = baseerror.New("illegal state")
	ErrChannelClosed    = ErrIllegalState.New("channel is closed")
	ErrNotConnected     = ErrIllegalState.New("channel is not connected")
	ErrFlushUnsupported = ErrIllegalState.New("flush is not supported by the pipeline")

	ErrConnectFailed = baseerror.New("connect failed")

	ErrStateTransfer        = baseerror.New("state transfer failed")
	ErrStateTransferTimeout = ErrStateTransfer.New("state transfer timed out")
	ErrFlushFailed          = ErrStateTransfer.New("flush failed")
	ErrStateProvider        = ErrStateTransfer.New("state provider failed")
	ErrStateReceiver        = ErrStateTransfer.New("state receiver failed")

	ErrNoStateProvider = baseerror.New("no state provider")
)
