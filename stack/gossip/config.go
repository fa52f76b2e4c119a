package gossip

import (
	"time"

	kitlog "github.com/go-kit/log"

	"github.com/maxpoletaev/groupcast/message"
)

type Config struct {
	BindAddr      string
	BindPort      int
	AdvertiseAddr string
	AdvertisePort int

	// Seeds are the gossip addresses of existing members to join through.
	Seeds []string

	// LeaveTimeout bounds the graceful leave on disconnect.
	LeaveTimeout time.Duration

	// Codec encodes every message sent over the gossip transport.
	Codec *message.Codec

	Logger kitlog.Logger
}

func DefaultConfig() Config {
	return Config{
		BindAddr:     "0.0.0.0",
		BindPort:     7946,
		LeaveTimeout: 5 * time.Second,
		Codec:        message.NewCodec(),
		Logger:       kitlog.NewNopLogger(),
	}
}
