package channel

import (
	"io"

	"github.com/go-kit/log/level"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

// Up handles a control event coming from the pipeline. The channel keeps
// its own bookkeeping and then passes the event to the up handler, or to
// the receiver callbacks when no handler is installed.
func (c *Channel) Up(evt *event.Event) any {
	switch evt.Type {
	case event.ViewChange:
		if v, ok := evt.Arg.(*view.View); ok {
			c.installView(v)
		}

	case event.Config:
		if settings, ok := evt.Arg.(map[string]any); ok {
			c.infoMu.Lock()
			for k, v := range settings {
				c.info[k] = v
			}
			c.infoMu.Unlock()
		}

	case event.GetStateOK, event.StateTransferInputStream:
		res, _ := evt.Arg.(*event.StateTransferResult)
		if res == nil {
			res = &event.StateTransferResult{
				Err: ErrStateTransfer.Wrapf(nil, "empty state result"),
			}
		}

		if !c.statePromise.Claim() {
			level.Warn(c.logger).Log("msg", "dropped unexpected state result", "provider", res.Provider)
			return nil
		}

		c.statePromise.Complete(c.installState(evt.Type, res))

		return nil

	case event.Unblock:
		c.unblockPromise.SetResult(true)
	}

	if c.upHandler != nil {
		return c.upHandler.Up(evt)
	}

	return c.invokeCallback(evt)
}

func (c *Channel) installView(v *view.View) {
	old := c.view.Swap(v)

	members := v.Members()
	if addr := c.Address(); addr != nil && !v.Contains(addr) {
		members = append(members, addr)
	}

	c.names.Retain(members)

	if old != nil {
		joined, left := view.Diff(old, v)
		level.Debug(c.logger).Log("msg", "view installed", "view", v, "joined", len(joined), "left", len(left))
	} else {
		level.Debug(c.logger).Log("msg", "view installed", "view", v)
	}
}

// installState hands a successful result to the application before the
// waiting GetState call is released.
func (c *Channel) installState(evtType event.Type, res *event.StateTransferResult) *event.StateTransferResult {
	if res.Err != nil {
		return res
	}

	var err error

	if c.upHandler != nil {
		if ret, ok := c.upHandler.Up(event.New(evtType, res)).(error); ok {
			err = ret
		}
	} else if sr, ok := c.receiver.(StateReceiver); ok {
		err = sr.SetState(res.StateReader())
	}

	if err != nil {
		return &event.StateTransferResult{
			Provider: res.Provider,
			Err:      ErrStateReceiver.Wrap(err),
		}
	}

	return res
}

func (c *Channel) invokeCallback(evt *event.Event) any {
	switch evt.Type {
	case event.ViewChange:
		if vl, ok := c.receiver.(ViewListener); ok {
			vl.ViewAccepted(evt.Arg.(*view.View))
		}

	case event.Block:
		if bl, ok := c.receiver.(BlockListener); ok {
			bl.Block()
		}

		return true

	case event.Unblock:
		if ul, ok := c.receiver.(UnblockListener); ok {
			ul.Unblock()
		}

	case event.GetApplState:
		w, ok := evt.Arg.(io.Writer)
		if !ok {
			return ErrIllegalState.Wrapf(nil, "state request without a writer")
		}

		sp, ok := c.receiver.(StateProvider)
		if !ok {
			return ErrNoStateProvider
		}

		if err := sp.GetState(w); err != nil {
			level.Warn(c.logger).Log("msg", "state provider failed", "err", err)
			return err
		}
	}

	return nil
}

func (c *Channel) isOwnMessage(msg message.Message) bool {
	local := c.Address()
	return local != nil && address.Equal(msg.Src(), local)
}

// UpMessage delivers an inbound message.
func (c *Channel) UpMessage(msg message.Message) {
	if c.conf.DiscardOwnMessages && c.isOwnMessage(msg) {
		return
	}

	if c.conf.StatsEnabled {
		c.stats.recvMsgs.Add(1)
		c.stats.recvBytes.Add(uint64(msg.Length()))
	}

	if c.upHandler != nil {
		c.upHandler.UpMessage(msg)
		return
	}

	c.deliver(msg)
}

// UpBatch delivers a batch of inbound messages.
func (c *Channel) UpBatch(batch *message.Batch) {
	if c.conf.DiscardOwnMessages && c.Address() != nil {
		batch.RemoveIf(c.isOwnMessage)
	}

	if batch.IsEmpty() {
		return
	}

	if c.conf.StatsEnabled {
		c.stats.recvMsgs.Add(uint64(batch.Len()))
		c.stats.recvBytes.Add(uint64(batch.Length()))
	}

	if c.upHandler != nil {
		c.upHandler.UpBatch(batch)
		return
	}

	if br, ok := c.receiver.(BatchReceiver); ok {
		if err := br.ReceiveBatch(batch); err != nil {
			level.Warn(c.logger).Log("msg", "failed to receive batch", "sender", batch.Sender(), "err", err)
		}

		return
	}

	batch.Each(func(msg message.Message) bool {
		c.deliver(msg)
		return true
	})
}

func (c *Channel) deliver(msg message.Message) {
	if c.receiver == nil {
		return
	}

	if err := c.receiver.Receive(msg); err != nil {
		level.Warn(c.logger).Log("msg", "failed to receive message", "src", msg.Src(), "err", err)
	}
}
