// Package loopback implements an in-process pipeline. Channels attached to
// the same Network form groups by cluster name and exchange wire-encoded
// messages without a transport.
package loopback

import (
	"bytes"
	"errors"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

var (
	ErrNotStarted  = errors.New("pipeline is not started")
	ErrNotJoined   = errors.New("pipeline has not joined a cluster")
	ErrNoSuchPeer  = errors.New("no such member")
	ErrNoLocalAddr = errors.New("local address is not set")
)

type Config struct {
	// Codec encodes every delivered message. Custom headers and objects
	// must be registered with it.
	Codec *message.Codec

	Logger kitlog.Logger
}

func DefaultConfig() Config {
	return Config{
		Codec:  message.NewCodec(),
		Logger: kitlog.NewNopLogger(),
	}
}

type group struct {
	name    string
	members []*Pipeline
	viewID  int64

	// flushOwner is the member that suspended the group, nil when nobody
	// is flushing.
	flushOwner *Pipeline
	resumed    *sync.Cond
}

func (g *group) indexOf(p *Pipeline) int {
	for i, m := range g.members {
		if m == p {
			return i
		}
	}

	return -1
}

func (g *group) find(addr address.Address) *Pipeline {
	for _, m := range g.members {
		if address.Equal(m.Address(), addr) {
			return m
		}
	}

	return nil
}

func (g *group) snapshot() []*Pipeline {
	members := make([]*Pipeline, len(g.members))
	copy(members, g.members)

	return members
}

func (g *group) view() *view.View {
	addrs := make([]address.Address, len(g.members))
	for i, m := range g.members {
		addrs[i] = m.Address()
	}

	var coord address.Address
	if len(addrs) > 0 {
		coord = addrs[0]
	}

	return view.Create(coord, g.viewID, addrs...)
}

// Network is a shared in-process medium for any number of pipelines.
type Network struct {
	mu     sync.Mutex
	viewMu sync.Mutex
	groups map[string]*group
	codec  *message.Codec
	logger kitlog.Logger
}

func NewNetwork(conf Config) *Network {
	if conf.Codec == nil {
		conf.Codec = message.NewCodec()
	}

	if conf.Logger == nil {
		conf.Logger = kitlog.NewNopLogger()
	}

	return &Network{
		groups: make(map[string]*group),
		codec:  conf.Codec,
		logger: conf.Logger,
	}
}

// Codec returns the codec shared by all pipelines of the network.
func (n *Network) Codec() *message.Codec {
	return n.codec
}

// NewPipeline creates a pipeline attached to the network.
func (n *Network) NewPipeline() *Pipeline {
	return &Pipeline{net: n}
}

// Members returns the members of the cluster in join order.
func (n *Network) Members(cluster string) []address.Address {
	n.mu.Lock()
	defer n.mu.Unlock()

	g, ok := n.groups[cluster]
	if !ok {
		return nil
	}

	return g.view().Members()
}

func (n *Network) join(p *Pipeline, cluster string) {
	n.viewMu.Lock()
	defer n.viewMu.Unlock()

	n.mu.Lock()

	g, ok := n.groups[cluster]
	if !ok {
		g = &group{name: cluster}
		g.resumed = sync.NewCond(&n.mu)
		n.groups[cluster] = g
	}

	g.members = append(g.members, p)
	g.viewID++
	v := g.view()
	members := g.snapshot()
	p.group = g

	n.mu.Unlock()

	level.Debug(n.logger).Log("msg", "member joined", "cluster", cluster, "addr", p.Address(), "view", v)

	n.installView(members, v)
}

func (n *Network) leave(p *Pipeline) {
	n.viewMu.Lock()
	defer n.viewMu.Unlock()

	n.mu.Lock()

	g := p.group
	if g == nil {
		n.mu.Unlock()
		return
	}

	if i := g.indexOf(p); i >= 0 {
		g.members = append(g.members[:i], g.members[i+1:]...)
	}

	if g.flushOwner == p {
		g.flushOwner = nil
		g.resumed.Broadcast()
	}

	p.group = nil

	if len(g.members) == 0 {
		delete(n.groups, g.name)
		n.mu.Unlock()

		return
	}

	g.viewID++
	v := g.view()
	members := g.snapshot()

	n.mu.Unlock()

	level.Debug(n.logger).Log("msg", "member left", "cluster", g.name, "addr", p.Address(), "view", v)

	n.installView(members, v)
}

// installView delivers the view to every member concurrently and returns
// when all of them have accepted it.
func (n *Network) installView(members []*Pipeline, v *view.View) {
	var eg errgroup.Group

	for _, m := range members {
		m := m

		eg.Go(func() error {
			m.up(event.New(event.ViewChange, v))
			return nil
		})
	}

	_ = eg.Wait()
}

// suspend blocks every member except p from sending. It fails when any
// member refuses the flush.
func (n *Network) suspend(p *Pipeline) bool {
	n.mu.Lock()

	g := p.group
	if g == nil {
		n.mu.Unlock()
		return false
	}

	for g.flushOwner != nil && g.flushOwner != p {
		g.resumed.Wait()
	}

	members := g.snapshot()

	for _, m := range members {
		if m.failFlush.Load() {
			n.mu.Unlock()
			level.Debug(n.logger).Log("msg", "flush refused", "by", m.Address())

			return false
		}
	}

	g.flushOwner = p

	n.mu.Unlock()

	for _, m := range members {
		m.up(event.New(event.Block, nil))
	}

	return true
}

func (n *Network) resume(p *Pipeline) {
	n.mu.Lock()

	g := p.group
	if g == nil || g.flushOwner != p {
		n.mu.Unlock()
		return
	}

	g.flushOwner = nil
	g.resumed.Broadcast()
	members := g.snapshot()

	n.mu.Unlock()

	for _, m := range members {
		m.up(event.New(event.Unblock, nil))
	}
}

// waitBarrier blocks while another member flushes the group.
func (n *Network) waitBarrier(p *Pipeline) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for p.group != nil && p.group.flushOwner != nil && p.group.flushOwner != p {
		p.group.resumed.Wait()
	}
}

func (n *Network) receivers(p *Pipeline, dest address.Address) ([]*Pipeline, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p.group == nil {
		return nil, ErrNotJoined
	}

	if dest == nil {
		return p.group.snapshot(), nil
	}

	target := p.group.find(dest)
	if target == nil {
		return nil, ErrNoSuchPeer
	}

	return []*Pipeline{target}, nil
}

func (n *Network) send(p *Pipeline, msg message.Message) error {
	if !msg.IsFlagSet(message.FlagSkipBarrier) {
		n.waitBarrier(p)
	}

	targets, err := n.receivers(p, msg.Dest())
	if err != nil {
		return err
	}

	data, err := n.codec.Marshal(msg)
	if err != nil {
		return err
	}

	noLoopback := msg.IsTransientFlagSet(message.TransientDontLoopback)

	for _, target := range targets {
		if target == p && noLoopback {
			continue
		}

		decoded, err := n.codec.Unmarshal(data)
		if err != nil {
			return err
		}

		target.deliver(p.Address(), decoded)
	}

	return nil
}

// fetchState asks the target for its state and hands the result to the
// requester. It runs in its own goroutine.
func (n *Network) fetchState(p *Pipeline, info *event.StateTransferInfo) {
	n.mu.Lock()

	var target *Pipeline
	if p.group != nil {
		target = p.group.find(info.Target)
	}

	n.mu.Unlock()

	if target == nil {
		p.up(event.New(event.GetStateOK, &event.StateTransferResult{
			Provider: info.Target,
			Err:      ErrNoSuchPeer,
		}))

		return
	}

	if target.dropState.Load() {
		level.Debug(n.logger).Log("msg", "dropping state response", "provider", target.Address())
		return
	}

	var buf bytes.Buffer

	res := &event.StateTransferResult{Provider: target.Address()}

	if ret, ok := target.up(event.New(event.GetApplState, &buf)).(error); ok {
		res.Err = ret
	} else {
		res.State = buf.Bytes()
	}

	p.up(event.New(event.GetStateOK, res))
}
