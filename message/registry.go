package message

import (
	"fmt"
	"sync"
)

// Type is the wire discriminant of a message variant.
type Type uint16

const (
	TypeBytes Type = iota
	TypeBuffer
	TypeEmpty
	TypeObject
	TypeLong
	TypeComposite
	TypeFragment
	TypeBatch
)

const (
	// MinUserType is the lowest discriminant available for custom variants.
	// Everything below is reserved for built-in variants.
	MinUserType Type = 32

	maxTypes = 256
)

var typeNames = map[Type]string{
	TypeBytes:     "BytesMessage",
	TypeBuffer:    "BufferMessage",
	TypeEmpty:     "EmptyMessage",
	TypeObject:    "ObjectMessage",
	TypeLong:      "LongMessage",
	TypeComposite: "CompositeMessage",
	TypeFragment:  "FragmentedMessage",
	TypeBatch:     "BatchMessage",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", uint16(t))
}

// Factory creates an empty message of a particular variant, ready to be
// decoded into.
type Factory func() Message

// TypeRegistry maps message discriminants to their factories. It is used
// only while decoding.
type TypeRegistry struct {
	mu        sync.RWMutex
	factories [maxTypes]Factory
}

// NewTypeRegistry creates a registry populated with the built-in variants.
func NewTypeRegistry() *TypeRegistry {
	reg := &TypeRegistry{}

	reg.factories[TypeBytes] = func() Message { return &BytesMessage{} }
	reg.factories[TypeBuffer] = func() Message { return &BufferMessage{} }
	reg.factories[TypeEmpty] = func() Message { return &EmptyMessage{} }
	reg.factories[TypeObject] = func() Message { return &ObjectMessage{} }
	reg.factories[TypeLong] = func() Message { return &LongMessage{} }
	reg.factories[TypeComposite] = func() Message { return &CompositeMessage{} }
	reg.factories[TypeFragment] = func() Message { return &FragmentedMessage{} }
	reg.factories[TypeBatch] = func() Message { return &BatchMessage{} }

	return reg
}

// Register adds a custom variant. The discriminant must not be lower than
// MinUserType and must not be registered already.
func (reg *TypeRegistry) Register(t Type, factory Factory) error {
	if t < MinUserType {
		return ErrReservedType.Wrapf(nil, "type %d", t)
	}

	if t >= maxTypes {
		return ErrTypeOutOfRange.Wrapf(nil, "type %d", t)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.factories[t] != nil {
		return ErrDuplicateType.Wrapf(nil, "type %d", t)
	}

	reg.factories[t] = factory

	return nil
}

// Create returns a new empty message of the given variant.
func (reg *TypeRegistry) Create(t Type) (Message, error) {
	if t >= maxTypes {
		return nil, ErrUnknownType.Wrapf(nil, "type %d", t)
	}

	reg.mu.RLock()
	factory := reg.factories[t]
	reg.mu.RUnlock()

	if factory == nil {
		return nil, ErrUnknownType.Wrapf(nil, "type %d", t)
	}

	return factory(), nil
}

// MagicRegistry maps magic ids to constructors of self-describing values,
// such as headers.
type MagicRegistry[T any] struct {
	mu    sync.RWMutex
	ctors map[uint16]func() T
}

func NewMagicRegistry[T any]() *MagicRegistry[T] {
	return &MagicRegistry[T]{
		ctors: make(map[uint16]func() T),
	}
}

func (reg *MagicRegistry[T]) Register(magic uint16, ctor func() T) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.ctors[magic]; ok {
		return ErrDuplicateMagic.Wrapf(nil, "magic %d", magic)
	}

	reg.ctors[magic] = ctor

	return nil
}

func (reg *MagicRegistry[T]) Create(magic uint16) (T, error) {
	reg.mu.RLock()
	ctor, ok := reg.ctors[magic]
	reg.mu.RUnlock()

	if !ok {
		var zero T
		return zero, ErrUnknownMagic.Wrapf(nil, "magic %d", magic)
	}

	return ctor(), nil
}

// HeaderRegistry maps header magic ids to header constructors.
type HeaderRegistry = MagicRegistry[Header]

// ObjectRegistry maps magic ids to constructors of Streamable payloads.
type ObjectRegistry = MagicRegistry[Streamable]
