package channel

import (
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxpoletaev/groupcast/address"
)

type Config struct {
	// Name is the logical name of the member. When empty, a name is
	// generated from the address on every connect.
	Name string

	// DiscardOwnMessages drops inbound messages sent by this channel.
	DiscardOwnMessages bool

	// StatsEnabled enables message and byte counters.
	StatsEnabled bool

	// UnblockTimeout bounds the wait for Unblock after a flush is stopped.
	UnblockTimeout time.Duration

	// AddressGenerator creates the local address on connect.
	AddressGenerator func() address.Address

	Logger kitlog.Logger
}

func DefaultConfig() Config {
	return Config{
		StatsEnabled:   true,
		UnblockTimeout: 5 * time.Second,
		Logger:         kitlog.NewNopLogger(),
		AddressGenerator: func() address.Address {
			return address.NewUUID()
		},
	}
}

type Option func(*Channel)

// WithReceiver installs the application callbacks.
func WithReceiver(r Receiver) Option {
	return func(c *Channel) {
		c.receiver = r
	}
}

// WithUpHandler installs a low-level handler receiving all inbound traffic.
// When set, the receiver is not called.
func WithUpHandler(h Upper) Option {
	return func(c *Channel) {
		c.upHandler = h
	}
}

// WithNameCache shares a logical name cache between channels.
func WithNameCache(names *address.NameCache) Option {
	return func(c *Channel) {
		c.names = names
	}
}

// WithRegisterer registers the channel statistics with a prometheus
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Channel) {
		c.registerer = reg
	}
}
