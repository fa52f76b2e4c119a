package channel

import (
	"errors"
	"time"

	"github.com/go-kit/log/level"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/event"
)

// GetState fetches the application state from target, or from the
// coordinator when target is nil. When the pipeline supports flush, the
// cluster stops sending for the duration of the transfer. A zero timeout
// waits forever.
func (c *Channel) GetState(target address.Address, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkClosedOrNotConnected(); err != nil {
		return err
	}

	return c.getStateLocked(target, timeout, true)
}

// ConnectWithState connects and fetches the state within a single flush
// started by the join.
func (c *Channel) ConnectWithState(cluster string, target address.Address, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateClosed:
		return ErrChannelClosed
	case StateConnected:
		level.Debug(c.logger).Log("msg", "already connected", "cluster", c.ClusterName())
		return nil
	}

	if err := c.connectLocked(cluster, true); err != nil {
		return err
	}

	if c.pipeline.FlushSupported() {
		c.flushing = true
		defer c.stopFlushLocked()
	}

	if err := c.getStateLocked(target, timeout, false); err != nil {
		// The member stays connected, only the state is missing.
		level.Warn(c.logger).Log("msg", "failed to fetch state", "err", err)
		return err
	}

	return nil
}

func (c *Channel) getStateLocked(target address.Address, timeout time.Duration, useFlush bool) error {
	v := c.View()
	local := c.Address()

	if v == nil || v.Size() == 0 || (v.Size() == 1 && v.Contains(local)) {
		level.Debug(c.logger).Log("msg", "no other members, skipping state transfer")
		return nil
	}

	if target == nil {
		target = v.Coordinator()
	}

	if address.Equal(target, local) {
		level.Debug(c.logger).Log("msg", "cannot fetch state from self")
		return nil
	}

	if useFlush && c.pipeline.FlushSupported() {
		if err := c.startFlushLocked(); err != nil {
			return err
		}

		defer c.stopFlushLocked()
	}

	c.statePromise.Reset()

	info := &event.StateTransferInfo{Target: target, Timeout: timeout}
	if _, err := c.pipeline.Down(event.New(event.GetState, info)); err != nil {
		return ErrStateTransfer.Wrap(err)
	}

	res, ok := c.statePromise.Wait(timeout)
	if !ok {
		return ErrStateTransferTimeout.Wrapf(nil, "no state from %s within %s", target, timeout)
	}

	if res.Err != nil {
		if errors.Is(res.Err, ErrStateTransfer) {
			return res.Err
		}

		return ErrStateProvider.Wrap(res.Err)
	}

	level.Debug(c.logger).Log("msg", "state transferred", "provider", res.Provider)

	return nil
}

// StartFlush stops all members from sending until StopFlush.
func (c *Channel) StartFlush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkClosedOrNotConnected(); err != nil {
		return err
	}

	if !c.pipeline.FlushSupported() {
		return ErrFlushUnsupported
	}

	return c.startFlushLocked()
}

// StopFlush releases a flush started with StartFlush.
func (c *Channel) StopFlush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkClosedOrNotConnected(); err != nil {
		return err
	}

	if !c.pipeline.FlushSupported() {
		return ErrFlushUnsupported
	}

	return c.stopFlushLocked()
}

func (c *Channel) startFlushLocked() error {
	res, err := c.pipeline.Down(event.New(event.Suspend, nil))
	if err != nil {
		return ErrFlushFailed.Wrap(err)
	}

	if ok, _ := res.(bool); !ok {
		return ErrFlushFailed
	}

	c.flushing = true

	return nil
}

// stopFlushLocked resumes sending and waits, bounded by UnblockTimeout,
// until the pipeline confirms with Unblock.
func (c *Channel) stopFlushLocked() error {
	if !c.flushing {
		return nil
	}

	c.flushing = false
	c.unblockPromise.Reset()

	if _, err := c.pipeline.Down(event.New(event.Resume, nil)); err != nil {
		level.Warn(c.logger).Log("msg", "failed to resume after flush", "err", err)
		return err
	}

	if _, ok := c.unblockPromise.Wait(c.conf.UnblockTimeout); !ok {
		level.Debug(c.logger).Log("msg", "no unblock after flush", "timeout", c.conf.UnblockTimeout)
	}

	return nil
}
