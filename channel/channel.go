// Package channel implements the group membership endpoint an application
// uses to join a cluster, exchange messages and fetch the group state.
package channel

import (
	"fmt"
	"sync"
	"sync/atomic"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/internal/generic"
	"github.com/maxpoletaev/groupcast/internal/multierror"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

// Channel is a cluster endpoint sitting on top of a Pipeline. Connect,
// Disconnect, GetState and Close are mutually exclusive. Sending and
// inbound delivery run concurrently with them.
type Channel struct {
	mu         sync.Mutex
	state      atomic.Int32
	conf       Config
	logger     kitlog.Logger
	pipeline   Pipeline
	receiver   Receiver
	upHandler  Upper
	names      *address.NameCache
	registerer prometheus.Registerer

	cluster   generic.Atomic[string]
	localAddr generic.Atomic[address.Address]
	name      generic.Atomic[string]
	view      generic.Atomic[*view.View]

	statePromise   *Promise[*event.StateTransferResult]
	unblockPromise *Promise[bool]
	flushing       bool

	infoMu sync.RWMutex
	info   map[string]any

	stats counters
}

// New creates a channel in the OPEN state and installs it as the upper
// layer of the pipeline.
func New(pipeline Pipeline, conf Config, opts ...Option) (*Channel, error) {
	if conf.Logger == nil {
		conf.Logger = kitlog.NewNopLogger()
	}

	if conf.AddressGenerator == nil {
		conf.AddressGenerator = DefaultConfig().AddressGenerator
	}

	c := &Channel{
		conf:           conf,
		logger:         conf.Logger,
		pipeline:       pipeline,
		statePromise:   NewPromise[*event.StateTransferResult](),
		unblockPromise: NewPromise[bool](),
		info:           make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.names == nil {
		c.names = address.NewNameCache()
	}

	if c.registerer != nil {
		if err := c.registerer.Register(collector{ch: c}); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	c.state.Store(int32(StateOpen))
	pipeline.SetUpper(c)

	return c, nil
}

func (c *Channel) State() State {
	return State(c.state.Load())
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Channel) IsConnected() bool {
	return c.State() == StateConnected
}

// Address returns the local address, or nil when not connected.
func (c *Channel) Address() address.Address {
	return c.localAddr.Load()
}

// Name returns the logical name of the local member.
func (c *Channel) Name() string {
	return c.name.Load()
}

func (c *Channel) ClusterName() string {
	return c.cluster.Load()
}

// View returns the last installed view, or nil.
func (c *Channel) View() *view.View {
	return c.view.Load()
}

func (c *Channel) NameCache() *address.NameCache {
	return c.names
}

func (c *Channel) FlushSupported() bool {
	return c.pipeline.FlushSupported()
}

func (c *Channel) Stats() Stats {
	return c.stats.snapshot()
}

func (c *Channel) ResetStats() {
	c.stats.reset()
}

// Info returns the pipeline settings received through Config events.
func (c *Channel) Info() map[string]any {
	c.infoMu.RLock()
	defer c.infoMu.RUnlock()

	info := make(map[string]any, len(c.info))
	generic.MapCopy(c.info, info)

	return info
}

func (c *Channel) checkClosedOrNotConnected() error {
	switch c.State() {
	case StateClosed:
		return ErrChannelClosed
	case StateConnected:
		return nil
	default:
		return ErrNotConnected
	}
}

// Connect joins the cluster. It is a no-op when the channel is already
// connected, to this or any other cluster.
func (c *Channel) Connect(cluster string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateClosed:
		return ErrChannelClosed
	case StateConnected:
		level.Debug(c.logger).Log("msg", "already connected", "cluster", c.ClusterName())
		return nil
	}

	return c.connectLocked(cluster, false)
}

func (c *Channel) connectLocked(cluster string, withState bool) error {
	c.setState(StateConnecting)

	addr := c.conf.AddressGenerator()
	c.localAddr.Store(addr)
	c.name.Store(c.memberName(addr))
	c.names.Add(addr, c.Name())

	rollback := func(err error) error {
		c.names.Remove(addr)
		c.localAddr.Store(nil)
		c.setState(StateOpen)

		return ErrConnectFailed.Wrap(err)
	}

	if _, err := c.pipeline.Down(event.New(event.SetLocalAddress, addr)); err != nil {
		return rollback(err)
	}

	if err := c.pipeline.Start(); err != nil {
		return rollback(err)
	}

	evtType := event.Connect
	if withState {
		evtType = event.ConnectWithState
	}

	res, err := c.pipeline.Down(event.New(evtType, cluster))
	if err == nil {
		if resErr, ok := res.(error); ok {
			err = resErr
		}
	}

	if err != nil {
		if stopErr := c.pipeline.Stop(); stopErr != nil {
			level.Warn(c.logger).Log("msg", "failed to stop pipeline", "err", stopErr)
		}

		return rollback(err)
	}

	c.cluster.Store(cluster)
	c.setState(StateConnected)

	level.Info(c.logger).Log(
		"msg", "connected",
		"cluster", cluster,
		"addr", addr,
		"name", c.Name(),
	)

	return nil
}

func (c *Channel) memberName(addr address.Address) string {
	if c.conf.Name != "" {
		return c.conf.Name
	}

	if u, ok := addr.(address.UUID); ok {
		return address.GenerateName(u)
	}

	return addr.String()
}

// Disconnect leaves the cluster and moves the channel back to OPEN. The
// local address is discarded.
func (c *Channel) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StateClosed:
		return ErrChannelClosed
	case StateOpen:
		return nil
	}

	return c.disconnectLocked()
}

func (c *Channel) disconnectLocked() error {
	errs := multierror.New[string]()
	addr := c.Address()

	if _, err := c.pipeline.Down(event.New(event.Disconnect, addr)); err != nil {
		errs.Add("disconnect", err)
	}

	if err := c.pipeline.Stop(); err != nil {
		errs.Add("stop", err)
	}

	if addr != nil {
		c.names.Remove(addr)
	}

	c.localAddr.Store(nil)
	c.view.Store(nil)
	c.cluster.Store("")
	c.setState(StateOpen)

	level.Info(c.logger).Log("msg", "disconnected", "addr", addr)

	return errs.Combined()
}

// Close disconnects and releases the pipeline. The channel cannot be used
// afterwards. Closing a closed channel is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == StateClosed {
		return nil
	}

	errs := multierror.New[string]()

	if c.State() != StateOpen {
		if err := c.disconnectLocked(); err != nil {
			errs.Add("disconnect", err)
		}
	}

	if err := c.pipeline.Destroy(); err != nil {
		errs.Add("destroy", err)
	}

	c.setState(StateClosed)

	if c.registerer != nil {
		c.registerer.Unregister(collector{ch: c})
	}

	return errs.Combined()
}

// Send hands the message to the pipeline. A nil source is filled with the
// local address.
func (c *Channel) Send(msg message.Message) error {
	if err := c.checkClosedOrNotConnected(); err != nil {
		return err
	}

	if msg.Src() == nil {
		msg.SetSrc(c.Address())
	}

	if c.conf.StatsEnabled {
		c.stats.sentMsgs.Add(1)
		c.stats.sentBytes.Add(uint64(msg.Length()))
	}

	return c.pipeline.DownMessage(msg)
}

// SendTo sends a copy-free bytes message. A nil destination broadcasts.
func (c *Channel) SendTo(dest address.Address, data []byte) error {
	return c.Send(message.NewBytesMessage(dest, data))
}

// SendObject sends a value serialized on demand.
func (c *Channel) SendObject(dest address.Address, obj any) error {
	return c.Send(message.NewObjectMessage(dest, obj))
}

// Down passes a control event to the pipeline and returns its result.
func (c *Channel) Down(evt *event.Event) (any, error) {
	if c.State() == StateClosed {
		return nil, ErrChannelClosed
	}

	if evt.Type == event.Msg {
		msg, ok := evt.Arg.(message.Message)
		if !ok {
			return nil, ErrIllegalState.Wrapf(nil, "message event without a message")
		}

		return nil, c.Send(msg)
	}

	return c.pipeline.Down(evt)
}
