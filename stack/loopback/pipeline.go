package loopback

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/internal/generic"
	"github.com/maxpoletaev/groupcast/message"
)

var errFlushRefused = errors.New("flush refused by a member")

// Pipeline connects one channel to a Network. It supports flush and
// state transfer.
type Pipeline struct {
	net     *Network
	upper   generic.Atomic[channel.Upper]
	addr    generic.Atomic[address.Address]
	started atomic.Bool

	// group is guarded by net.mu.
	group *group

	failFlush atomic.Bool
	dropState atomic.Bool
}

var _ channel.Pipeline = (*Pipeline)(nil)

// FailFlush makes every flush involving this member fail.
func (p *Pipeline) FailFlush(fail bool) {
	p.failFlush.Store(fail)
}

// DropStateResponses makes this member silently ignore state requests.
func (p *Pipeline) DropStateResponses(drop bool) {
	p.dropState.Store(drop)
}

func (p *Pipeline) Address() address.Address {
	return p.addr.Load()
}

func (p *Pipeline) SetUpper(up channel.Upper) {
	p.upper.Store(up)
}

func (p *Pipeline) Start() error {
	p.started.Store(true)

	p.up(event.New(event.Config, map[string]any{
		"transport": "loopback",
	}))

	return nil
}

func (p *Pipeline) Stop() error {
	p.net.leave(p)
	p.started.Store(false)

	return nil
}

func (p *Pipeline) Destroy() error {
	return p.Stop()
}

func (p *Pipeline) FlushSupported() bool {
	return true
}

func (p *Pipeline) Down(evt *event.Event) (any, error) {
	switch evt.Type {
	case event.SetLocalAddress:
		addr, _ := evt.Arg.(address.Address)
		p.addr.Store(addr)

	case event.Connect, event.ConnectWithState:
		if !p.started.Load() {
			return nil, ErrNotStarted
		}

		if p.Address() == nil {
			return nil, ErrNoLocalAddr
		}

		cluster, _ := evt.Arg.(string)
		p.net.join(p, cluster)

		if evt.Type == event.ConnectWithState && !p.net.suspend(p) {
			p.net.leave(p)
			return nil, errFlushRefused
		}

	case event.Disconnect:
		p.net.leave(p)

	case event.Suspend:
		return p.net.suspend(p), nil

	case event.Resume:
		p.net.resume(p)

	case event.GetState:
		info, ok := evt.Arg.(*event.StateTransferInfo)
		if !ok {
			return nil, fmt.Errorf("unexpected state request argument: %T", evt.Arg)
		}

		go p.net.fetchState(p, info)
	}

	return nil, nil
}

func (p *Pipeline) DownMessage(msg message.Message) error {
	if !p.started.Load() {
		return ErrNotStarted
	}

	return p.net.send(p, msg)
}

func (p *Pipeline) up(evt *event.Event) any {
	if up := p.upper.Load(); up != nil {
		return up.Up(evt)
	}

	return nil
}

// deliver passes a decoded message to the upper layer. Batch messages are
// unpacked and delivered as a single batch.
func (p *Pipeline) deliver(sender address.Address, msg message.Message) {
	up := p.upper.Load()
	if up == nil {
		return
	}

	if bm, ok := msg.(*message.BatchMessage); ok {
		batch := message.NewBatch(msg.Dest(), sender, p.clusterName(), msg.Dest() == nil, bm.Messages()...)
		up.UpBatch(batch)

		return
	}

	up.UpMessage(msg)
}

func (p *Pipeline) clusterName() string {
	p.net.mu.Lock()
	defer p.net.mu.Unlock()

	if p.group == nil {
		return ""
	}

	return p.group.name
}
