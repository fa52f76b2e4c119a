// Package gossip implements a pipeline on top of hashicorp/memberlist.
// Membership changes reported by memberlist become views, and messages are
// sent with reliable unicasts to every member of the view.
package gossip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/memberlist"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/internal/generic"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

var (
	ErrNotJoined     = errors.New("pipeline has not joined a cluster")
	ErrNoSuchMember  = errors.New("no such member")
	ErrNoLocalAddr   = errors.New("local address is not set")
	ErrAlreadyJoined = errors.New("pipeline has already joined a cluster")
)

type member struct {
	node *memberlist.Node
	addr address.Address
}

// Pipeline is a channel pipeline over a memberlist gossip cluster. It does
// not support flush.
type Pipeline struct {
	conf   Config
	codec  *message.Codec
	logger kitlog.Logger

	upper   generic.Atomic[channel.Upper]
	addr    generic.Atomic[address.Address]
	cluster generic.Atomic[string]

	mu    sync.Mutex
	mlist *memberlist.Memberlist

	viewMu  sync.Mutex
	viewID  int64
	members map[string]member

	// send delivers a frame to a node. It is replaced in tests.
	send func(node *memberlist.Node, data []byte) error
}

var _ channel.Pipeline = (*Pipeline)(nil)

func New(conf Config) (*Pipeline, error) {
	if conf.Codec == nil {
		conf.Codec = message.NewCodec()
	}

	if conf.Logger == nil {
		conf.Logger = kitlog.NewNopLogger()
	}

	err := conf.Codec.Headers.Register(StateHeaderMagic, func() message.Header {
		return &StateHeader{}
	})
	if err != nil && !errors.Is(err, message.ErrDuplicateMagic) {
		return nil, err
	}

	p := &Pipeline{
		conf:    conf,
		codec:   conf.Codec,
		logger:  conf.Logger,
		members: make(map[string]member),
	}

	p.send = p.sendReliable

	return p, nil
}

func (p *Pipeline) SetUpper(up channel.Upper) {
	p.upper.Store(up)
}

func (p *Pipeline) Start() error {
	p.up(event.New(event.Config, map[string]any{
		"transport": "memberlist",
		"bind_addr": p.conf.BindAddr,
		"bind_port": p.conf.BindPort,
	}))

	return nil
}

func (p *Pipeline) Stop() error {
	return p.leave()
}

func (p *Pipeline) Destroy() error {
	return p.leave()
}

func (p *Pipeline) FlushSupported() bool {
	return false
}

func (p *Pipeline) Down(evt *event.Event) (any, error) {
	switch evt.Type {
	case event.SetLocalAddress:
		addr, _ := evt.Arg.(address.Address)
		p.addr.Store(addr)

	case event.Connect, event.ConnectWithState:
		cluster, _ := evt.Arg.(string)
		return nil, p.join(cluster)

	case event.Disconnect:
		return nil, p.leave()

	case event.Suspend:
		return false, nil

	case event.GetState:
		info, ok := evt.Arg.(*event.StateTransferInfo)
		if !ok {
			return nil, fmt.Errorf("unexpected state request argument: %T", evt.Arg)
		}

		return nil, p.requestState(info.Target)
	}

	return nil, nil
}

func (p *Pipeline) join(cluster string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mlist != nil {
		return ErrAlreadyJoined
	}

	addr := p.addr.Load()
	if addr == nil {
		return ErrNoLocalAddr
	}

	p.cluster.Store(cluster)

	conf := memberlist.DefaultLANConfig()
	conf.Name = addr.String()
	conf.BindAddr = p.conf.BindAddr
	conf.BindPort = p.conf.BindPort
	conf.AdvertiseAddr = p.conf.AdvertiseAddr
	conf.AdvertisePort = p.conf.AdvertisePort
	conf.Delegate = &delegate{p: p}
	conf.Events = &eventDelegate{p: p}
	conf.LogOutput = io.Discard

	mlist, err := memberlist.Create(conf)
	if err != nil {
		return fmt.Errorf("failed to create memberlist: %w", err)
	}

	if len(p.conf.Seeds) > 0 {
		n, err := mlist.Join(p.conf.Seeds)
		if err != nil && n == 0 {
			_ = mlist.Shutdown()
			return fmt.Errorf("failed to join cluster: %w", err)
		}
	}

	p.mlist = mlist

	level.Info(p.logger).Log("msg", "joined gossip cluster", "cluster", cluster, "members", mlist.NumMembers())

	return nil
}

func (p *Pipeline) leave() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mlist == nil {
		return nil
	}

	if err := p.mlist.Leave(p.conf.LeaveTimeout); err != nil {
		level.Warn(p.logger).Log("msg", "graceful leave failed", "err", err)
	}

	err := p.mlist.Shutdown()
	p.mlist = nil

	p.viewMu.Lock()
	p.members = make(map[string]member)
	p.viewMu.Unlock()

	return err
}

func (p *Pipeline) sendReliable(node *memberlist.Node, data []byte) error {
	p.mu.Lock()
	mlist := p.mlist
	p.mu.Unlock()

	if mlist == nil {
		return ErrNotJoined
	}

	return mlist.SendReliable(node, data)
}

func (p *Pipeline) DownMessage(msg message.Message) error {
	data, err := p.codec.Marshal(msg)
	if err != nil {
		return err
	}

	local := p.addr.Load()
	noLoopback := msg.IsTransientFlagSet(message.TransientDontLoopback)

	if dest := msg.Dest(); dest != nil {
		if address.Equal(dest, local) {
			return p.deliver(data)
		}

		m, ok := p.member(dest)
		if !ok {
			return ErrNoSuchMember
		}

		return p.send(m.node, data)
	}

	for _, m := range p.snapshot() {
		if address.Equal(m.addr, local) {
			if !noLoopback {
				if err := p.deliver(data); err != nil {
					return err
				}
			}

			continue
		}

		if err := p.send(m.node, data); err != nil {
			level.Warn(p.logger).Log("msg", "failed to send message", "to", m.addr, "err", err)
		}
	}

	return nil
}

func (p *Pipeline) member(addr address.Address) (member, bool) {
	p.viewMu.Lock()
	defer p.viewMu.Unlock()

	m, ok := p.members[addr.String()]

	return m, ok
}

func (p *Pipeline) snapshot() []member {
	p.viewMu.Lock()
	defer p.viewMu.Unlock()

	return generic.MapValues(p.members)
}

func (p *Pipeline) up(evt *event.Event) any {
	if up := p.upper.Load(); up != nil {
		return up.Up(evt)
	}

	return nil
}

// deliver decodes a received frame and passes it up. State transfer
// messages are handled by the pipeline itself.
func (p *Pipeline) deliver(data []byte) error {
	msg, err := p.codec.Unmarshal(data)
	if err != nil {
		return err
	}

	if hdr, ok := msg.Header(stateProtID).(*StateHeader); ok {
		switch hdr.Kind {
		case StateRequest:
			go p.provideState(msg.Src())
		case StateResponse:
			p.installState(msg, hdr)
		}

		return nil
	}

	if up := p.upper.Load(); up != nil {
		up.UpMessage(msg)
	}

	return nil
}

func (p *Pipeline) requestState(target address.Address) error {
	req := message.NewEmptyMessage(target)
	req.SetSrc(p.addr.Load())
	req.SetFlag(message.FlagOOB)
	req.PutHeader(stateProtID, &StateHeader{Kind: StateRequest})

	return p.DownMessage(req)
}

func (p *Pipeline) provideState(requester address.Address) {
	var buf bytes.Buffer

	hdr := &StateHeader{Kind: StateResponse}

	if ret, ok := p.up(event.New(event.GetApplState, &buf)).(error); ok {
		hdr.Error = ret.Error()
		buf.Reset()
	}

	rsp := message.NewBytesMessage(requester, buf.Bytes())
	rsp.SetSrc(p.addr.Load())
	rsp.SetFlag(message.FlagOOB)
	rsp.PutHeader(stateProtID, hdr)

	if err := p.DownMessage(rsp); err != nil {
		level.Warn(p.logger).Log("msg", "failed to send state", "to", requester, "err", err)
	}
}

func (p *Pipeline) installState(msg message.Message, hdr *StateHeader) {
	res := &event.StateTransferResult{Provider: msg.Src()}

	if hdr.Error != "" {
		res.Err = errors.New(hdr.Error)
	} else {
		state, err := msg.Array()
		if err != nil {
			res.Err = err
		} else {
			res.State = state
		}
	}

	p.up(event.New(event.GetStateOK, res))
}

// updateView rebuilds the view from the known members. Members are ordered
// by address so that every node elects the same coordinator.
func (p *Pipeline) updateView(change func(members map[string]member) bool) {
	p.viewMu.Lock()

	if !change(p.members) {
		p.viewMu.Unlock()
		return
	}

	addrs := make([]address.Address, 0, len(p.members))
	for _, m := range p.members {
		addrs = append(addrs, m.addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		return address.Compare(addrs[i], addrs[j]) < 0
	})

	p.viewID++

	var coord address.Address
	if len(addrs) > 0 {
		coord = addrs[0]
	}

	v := view.Create(coord, p.viewID, addrs...)

	p.viewMu.Unlock()

	level.Debug(p.logger).Log("msg", "view changed", "view", v)

	p.up(event.New(event.ViewChange, v))
}

func encodeMeta(cluster string, addr address.Address) ([]byte, error) {
	var buf bytes.Buffer

	w := binario.NewWriter(&buf, message.ByteOrder)

	if err := w.WriteString(cluster); err != nil {
		return nil, err
	}

	if err := address.Write(w, addr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeMeta(data []byte, reg *address.Registry) (string, address.Address, error) {
	r := binario.NewReader(bytes.NewReader(data), message.ByteOrder)

	cluster, err := r.ReadString()
	if err != nil {
		return "", nil, err
	}

	addr, err := reg.Read(r)
	if err != nil {
		return "", nil, err
	}

	return cluster, addr, nil
}
