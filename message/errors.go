package message

import "github.com/maxpoletaev/groupcast/internal/baseerror"

var (
	// ErrUnsupportedOperation is returned by payload accessors that are
	// foreign to the message variant.
	ErrUnsupportedOperation = baseerror.New("unsupported operation")

	ErrOutOfBounds = baseerror.New("index out of bounds")

	ErrIllegalState = baseerror.New("illegal state")

	// ErrDestMismatch is returned when a sub-message added to a container
	// has a different destination than the container.
	ErrDestMismatch = ErrIllegalState.New("destination mismatch")

	ErrDecode       = baseerror.New("decode failed")
	ErrUnknownType  = ErrDecode.New("unknown message type")
	ErrUnknownMagic = ErrDecode.New("unknown magic id")

	ErrRegistry        = baseerror.New("registry error")
	ErrReservedType    = ErrRegistry.New("message type is reserved")
	ErrTypeOutOfRange  = ErrRegistry.New("message type out of range")
	ErrDuplicateType   = ErrRegistry.New("message type already registered")
	ErrDuplicateMagic  = ErrRegistry.New("magic id already registered")
	ErrInvalidFragment = ErrDecode.New("invalid fragment")
)
