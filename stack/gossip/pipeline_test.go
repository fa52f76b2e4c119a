package gossip

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/memberlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/event"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

type fakeUpper struct {
	mu       sync.Mutex
	views    []*view.View
	msgs     []message.Message
	state    []byte
	stateErr error
	results  chan *event.StateTransferResult
}

func newFakeUpper() *fakeUpper {
	return &fakeUpper{results: make(chan *event.StateTransferResult, 1)}
}

func (u *fakeUpper) Up(evt *event.Event) any {
	switch evt.Type {
	case event.ViewChange:
		u.mu.Lock()
		u.views = append(u.views, evt.Arg.(*view.View))
		u.mu.Unlock()

	case event.GetApplState:
		if u.stateErr != nil {
			return u.stateErr
		}

		_, err := evt.Arg.(io.Writer).Write(u.state)
		if err != nil {
			return err
		}

	case event.GetStateOK:
		u.results <- evt.Arg.(*event.StateTransferResult)
	}

	return nil
}

func (u *fakeUpper) UpMessage(msg message.Message) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.msgs = append(u.msgs, msg)
}

func (u *fakeUpper) UpBatch(batch *message.Batch) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.msgs = append(u.msgs, batch.Messages()...)
}

func (u *fakeUpper) lastView() *view.View {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.views) == 0 {
		return nil
	}

	return u.views[len(u.views)-1]
}

func newTestPipeline(t *testing.T, cluster string) (*Pipeline, *fakeUpper) {
	t.Helper()

	p, err := New(DefaultConfig())
	require.NoError(t, err)

	up := newFakeUpper()
	p.SetUpper(up)
	p.addr.Store(address.NewUUID())
	p.cluster.Store(cluster)

	return p, up
}

func testNode(t *testing.T, cluster string, addr address.Address) *memberlist.Node {
	t.Helper()

	meta, err := encodeMeta(cluster, addr)
	require.NoError(t, err)

	return &memberlist.Node{Name: addr.String(), Meta: meta}
}

func TestMeta(t *testing.T) {
	addr := address.NewUUID()

	data, err := encodeMeta("chat", addr)
	require.NoError(t, err)

	cluster, got, err := decodeMeta(data, address.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "chat", cluster)
	assert.True(t, address.Equal(addr, got))

	_, _, err = decodeMeta(data[:3], address.NewRegistry())
	require.Error(t, err)
}

func TestEventDelegate_Views(t *testing.T) {
	p, up := newTestPipeline(t, "test")
	events := &eventDelegate{p: p}

	addrs := []address.Address{p.addr.Load(), address.NewUUID(), address.NewUUID()}
	nodes := make([]*memberlist.Node, len(addrs))

	for i, addr := range addrs {
		nodes[i] = testNode(t, "test", addr)
		events.NotifyJoin(nodes[i])
	}

	events.NotifyJoin(testNode(t, "other", address.NewUUID()))
	events.NotifyJoin(&memberlist.Node{Name: "broken", Meta: []byte{1}})

	require.Len(t, up.views, 3)

	v := up.lastView()
	assert.Equal(t, 3, v.Size())
	assert.True(t, v.ContainsAll(addrs...))

	members := v.Members()
	for i := 1; i < len(members); i++ {
		assert.Negative(t, address.Compare(members[i-1], members[i]), "members must be sorted")
	}

	coord := v.Coordinator()

	for _, n := range nodes {
		if n.Name == coord.String() {
			events.NotifyLeave(n)
		}
	}

	v = up.lastView()
	assert.Equal(t, 2, v.Size())
	assert.False(t, v.Contains(coord))
	assert.Greater(t, v.ID().ID, int64(3))

	events.NotifyLeave(testNode(t, "test", address.NewUUID()))
	assert.Len(t, up.views, 4, "unknown member leaving must not change the view")

	events.NotifyUpdate(nodes[0])
	assert.Len(t, up.views, 4)
}

func TestPipeline_DownMessage(t *testing.T) {
	p, up := newTestPipeline(t, "test")
	events := &eventDelegate{p: p}

	peers := []address.Address{address.NewUUID(), address.NewUUID()}

	events.NotifyJoin(testNode(t, "test", p.addr.Load()))
	for _, peer := range peers {
		events.NotifyJoin(testNode(t, "test", peer))
	}

	var (
		mu   sync.Mutex
		sent = make(map[string][]byte)
	)

	p.send = func(node *memberlist.Node, data []byte) error {
		mu.Lock()
		defer mu.Unlock()

		sent[node.Name] = data

		return nil
	}

	msg := message.NewBytesMessage(nil, []byte("hello"))
	msg.SetSrc(p.addr.Load())

	require.NoError(t, p.DownMessage(msg))
	require.Len(t, sent, 2)
	require.Len(t, up.msgs, 1)

	for _, peer := range peers {
		decoded, err := p.codec.Unmarshal(sent[peer.String()])
		require.NoError(t, err)

		data, err := decoded.Array()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	}

	err := p.DownMessage(message.NewEmptyMessage(address.NewUUID()))
	require.ErrorIs(t, err, ErrNoSuchMember)
}

func TestPipeline_DontLoopback(t *testing.T) {
	p, up := newTestPipeline(t, "test")
	(&eventDelegate{p: p}).NotifyJoin(testNode(t, "test", p.addr.Load()))

	msg := message.NewEmptyMessage(nil)
	msg.SetTransientFlag(message.TransientDontLoopback)

	require.NoError(t, p.DownMessage(msg))
	assert.Empty(t, up.msgs)
}

// linkPipelines makes both pipelines see each other and routes their sends
// directly into the other's delegate.
func linkPipelines(t *testing.T, a, b *Pipeline) {
	t.Helper()

	for _, p := range []*Pipeline{a, b} {
		events := &eventDelegate{p: p}
		events.NotifyJoin(testNode(t, "test", a.addr.Load()))
		events.NotifyJoin(testNode(t, "test", b.addr.Load()))
	}

	a.send = func(node *memberlist.Node, data []byte) error {
		(&delegate{p: b}).NotifyMsg(data)
		return nil
	}

	b.send = func(node *memberlist.Node, data []byte) error {
		(&delegate{p: a}).NotifyMsg(data)
		return nil
	}
}

func TestPipeline_StateTransfer(t *testing.T) {
	tests := map[string]struct {
		state    []byte
		stateErr error
		wantErr  string
	}{
		"Success": {
			state: []byte("chat history"),
		},
		"EmptyState": {
			state: []byte{},
		},
		"ProviderFailed": {
			stateErr: errors.New("not ready"),
			wantErr:  "not ready",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			provider, providerUp := newTestPipeline(t, "test")
			requester, requesterUp := newTestPipeline(t, "test")

			providerUp.state = tt.state
			providerUp.stateErr = tt.stateErr

			linkPipelines(t, provider, requester)

			_, err := requester.Down(event.New(event.GetState, &event.StateTransferInfo{
				Target:  provider.addr.Load(),
				Timeout: time.Second,
			}))
			require.NoError(t, err)

			var res *event.StateTransferResult

			select {
			case res = <-requesterUp.results:
			case <-time.After(time.Second):
				t.Fatal("no state response")
			}

			assert.True(t, address.Equal(provider.addr.Load(), res.Provider))

			if tt.wantErr != "" {
				require.Error(t, res.Err)
				assert.Contains(t, res.Err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, res.Err)
			assert.Equal(t, len(tt.state), len(res.State))
			assert.Equal(t, string(tt.state), string(res.State))

			// State messages never reach the application.
			assert.Empty(t, requesterUp.msgs)
			assert.Empty(t, providerUp.msgs)
		})
	}
}

func TestPipeline_NoFlush(t *testing.T) {
	p, _ := newTestPipeline(t, "test")

	assert.False(t, p.FlushSupported())

	res, err := p.Down(event.New(event.Suspend, nil))
	require.NoError(t, err)
	assert.Equal(t, false, res)
}

func TestDelegate_NotifyMsgGarbage(t *testing.T) {
	p, up := newTestPipeline(t, "test")

	(&delegate{p: p}).NotifyMsg([]byte{0xff, 0xff, 0x01})
	assert.Empty(t, up.msgs)
}

func TestDelegate_NodeMeta(t *testing.T) {
	p, _ := newTestPipeline(t, "test")
	d := &delegate{p: p}

	meta := d.NodeMeta(512)
	require.NotEmpty(t, meta)

	cluster, addr, err := decodeMeta(meta, p.codec.Addresses)
	require.NoError(t, err)
	assert.Equal(t, "test", cluster)
	assert.True(t, address.Equal(p.addr.Load(), addr))

	assert.Nil(t, d.NodeMeta(4))
}

func TestStateHeader(t *testing.T) {
	codec := message.NewCodec()
	require.NoError(t, codec.Headers.Register(StateHeaderMagic, func() message.Header {
		return &StateHeader{}
	}))

	msg := message.NewEmptyMessage(nil)
	msg.PutHeader(stateProtID, &StateHeader{Kind: StateResponse, Error: "boom"})

	data, err := codec.Marshal(msg)
	require.NoError(t, err)

	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)

	hdr, ok := decoded.Header(stateProtID).(*StateHeader)
	require.True(t, ok)
	assert.Equal(t, StateResponse, hdr.Kind)
	assert.Equal(t, "boom", hdr.Error)
	assert.Equal(t, stateProtID, hdr.ProtID())
	assert.Equal(t, "STATE RSP (err=boom)", hdr.String())
}
