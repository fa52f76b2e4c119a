package gossip

import (
	"github.com/go-kit/log/level"
	"github.com/hashicorp/memberlist"
)

type delegate struct {
	p *Pipeline
}

var _ memberlist.Delegate = (*delegate)(nil)

func (d *delegate) NodeMeta(limit int) []byte {
	meta, err := encodeMeta(d.p.cluster.Load(), d.p.addr.Load())
	if err != nil || len(meta) > limit {
		level.Error(d.p.logger).Log("msg", "failed to encode node meta", "err", err, "size", len(meta))
		return nil
	}

	return meta
}

func (d *delegate) NotifyMsg(b []byte) {
	data := make([]byte, len(b))
	copy(data, b)

	if err := d.p.deliver(data); err != nil {
		level.Warn(d.p.logger).Log("msg", "failed to decode message", "err", err)
	}
}

func (d *delegate) GetBroadcasts(overhead, limit int) [][]byte {
	return nil
}

func (d *delegate) LocalState(join bool) []byte {
	return nil
}

func (d *delegate) MergeRemoteState(buf []byte, join bool) {}

type eventDelegate struct {
	p *Pipeline
}

var _ memberlist.EventDelegate = (*eventDelegate)(nil)

func (e *eventDelegate) NotifyJoin(node *memberlist.Node) {
	cluster, addr, err := decodeMeta(node.Meta, e.p.codec.Addresses)
	if err != nil {
		level.Warn(e.p.logger).Log("msg", "ignoring node with bad meta", "node", node.Name, "err", err)
		return
	}

	if cluster != e.p.cluster.Load() {
		level.Debug(e.p.logger).Log("msg", "ignoring node of another cluster", "node", node.Name, "cluster", cluster)
		return
	}

	e.p.updateView(func(members map[string]member) bool {
		members[node.Name] = member{node: node, addr: addr}
		return true
	})
}

func (e *eventDelegate) NotifyLeave(node *memberlist.Node) {
	e.p.updateView(func(members map[string]member) bool {
		if _, ok := members[node.Name]; !ok {
			return false
		}

		delete(members, node.Name)

		return true
	})
}

func (e *eventDelegate) NotifyUpdate(node *memberlist.Node) {
	e.p.updateView(func(members map[string]member) bool {
		if m, ok := members[node.Name]; ok {
			m.node = node
			members[node.Name] = m
		}

		return false
	})
}
