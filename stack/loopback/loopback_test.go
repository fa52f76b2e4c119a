package loopback

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

type member struct {
	mu       sync.Mutex
	ch       *channel.Channel
	pipeline *Pipeline
	received []string
	state    []byte
	views    []*view.View
	blocks   int
	unblocks int
}

func (m *member) Receive(msg message.Message) error {
	data, err := msg.Array()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.received = append(m.received, string(data))
	m.mu.Unlock()

	return nil
}

func (m *member) ViewAccepted(v *view.View) {
	m.mu.Lock()
	m.views = append(m.views, v)
	m.mu.Unlock()
}

func (m *member) Block() {
	m.mu.Lock()
	m.blocks++
	m.mu.Unlock()
}

func (m *member) Unblock() {
	m.mu.Lock()
	m.unblocks++
	m.mu.Unlock()
}

func (m *member) GetState(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := w.Write(m.state)

	return err
}

func (m *member) SetState(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.state = data
	m.mu.Unlock()

	return nil
}

func (m *member) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.received...)
}

func newMember(t *testing.T, net *Network) *member {
	t.Helper()

	m := &member{pipeline: net.NewPipeline()}

	conf := channel.DefaultConfig()
	conf.UnblockTimeout = time.Second

	ch, err := channel.New(m.pipeline, conf, channel.WithReceiver(m))
	require.NoError(t, err)

	m.ch = ch

	t.Cleanup(func() {
		_ = ch.Close()
	})

	return m
}

func newGroup(t *testing.T, net *Network, n int) []*member {
	t.Helper()

	members := make([]*member, n)

	for i := range members {
		members[i] = newMember(t, net)
		require.NoError(t, members[i].ch.Connect("test"))
	}

	return members
}

func TestLoopback_Views(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 3)

	coord := members[0].ch.Address()

	for _, m := range members {
		v := m.ch.View()
		require.NotNil(t, v)
		assert.Equal(t, 3, v.Size())
		assert.Equal(t, coord, v.Coordinator())
		assert.Equal(t, int64(3), v.ID().ID)
	}

	assert.Len(t, members[0].views, 3)
	assert.Len(t, members[2].views, 1)
	assert.Equal(t, "loopback", members[0].ch.Info()["transport"])

	require.NoError(t, members[0].ch.Disconnect())

	for _, m := range members[1:] {
		v := m.ch.View()
		assert.Equal(t, 2, v.Size())
		assert.Equal(t, members[1].ch.Address(), v.Coordinator())
	}

	assert.Len(t, net.Members("test"), 2)
}

func TestLoopback_Send(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 3)

	require.NoError(t, members[0].ch.SendTo(nil, []byte("hello all")))
	require.NoError(t, members[1].ch.SendTo(members[2].ch.Address(), []byte("hello c")))

	assert.Equal(t, []string{"hello all"}, members[0].messages())
	assert.Equal(t, []string{"hello all"}, members[1].messages())
	assert.Equal(t, []string{"hello all", "hello c"}, members[2].messages())

	stats := members[2].ch.Stats()
	assert.Equal(t, uint64(2), stats.ReceivedMessages)
}

func TestLoopback_SendDontLoopback(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 2)

	msg := message.NewBytesMessage(nil, []byte("not to self"))
	msg.SetTransientFlag(message.TransientDontLoopback)

	require.NoError(t, members[0].ch.Send(msg))

	assert.Empty(t, members[0].messages())
	assert.Equal(t, []string{"not to self"}, members[1].messages())
}

func TestLoopback_SendBatch(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 2)

	src := members[0].ch.Address()
	msgs := []message.Message{
		message.NewBytesMessage(nil, []byte("one")),
		message.NewBytesMessage(nil, []byte("two")),
	}

	batch, err := message.NewBatchMessage(nil, src, msgs...)
	require.NoError(t, err)

	require.NoError(t, members[0].ch.Send(batch))
	assert.Equal(t, []string{"one", "two"}, members[1].messages())
}

func TestLoopback_UnknownDestination(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 1)
	other := newGroup(t, NewNetwork(DefaultConfig()), 1)

	err := members[0].ch.SendTo(other[0].ch.Address(), []byte("lost"))
	require.ErrorIs(t, err, ErrNoSuchPeer)
}

func TestLoopback_ConnectWithState(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 2)

	members[0].state = []byte("history")

	joiner := newMember(t, net)
	require.NoError(t, joiner.ch.ConnectWithState("test", nil, time.Second))

	assert.Equal(t, []byte("history"), joiner.state)
	assert.Equal(t, 3, joiner.ch.View().Size())

	for _, m := range append(members, joiner) {
		m.mu.Lock()
		assert.Equal(t, 1, m.blocks)
		assert.Equal(t, 1, m.unblocks)
		m.mu.Unlock()
	}

	// The flush is released, so everyone can send again.
	require.NoError(t, members[1].ch.SendTo(nil, []byte("after join")))
	assert.Equal(t, []string{"after join"}, joiner.messages())
}

func TestLoopback_ConnectWithStateFirstMember(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	first := newMember(t, net)

	require.NoError(t, first.ch.ConnectWithState("test", nil, time.Second))
	assert.Nil(t, first.state)
	assert.Equal(t, channel.StateConnected, first.ch.State())
}

func TestLoopback_GetState(t *testing.T) {
	tests := map[string]struct {
		setup     func(members []*member)
		timeout   time.Duration
		wantErr   error
		wantState []byte
	}{
		"FromCoordinator": {
			timeout:   time.Second,
			wantState: []byte("coord state"),
		},
		"FlushFailed": {
			setup: func(members []*member) {
				members[1].pipeline.FailFlush(true)
			},
			timeout: time.Second,
			wantErr: channel.ErrFlushFailed,
		},
		"ResponseDropped": {
			setup: func(members []*member) {
				members[0].pipeline.DropStateResponses(true)
			},
			timeout: 50 * time.Millisecond,
			wantErr: channel.ErrStateTransferTimeout,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			net := NewNetwork(DefaultConfig())
			members := newGroup(t, net, 3)
			members[0].state = []byte("coord state")

			if tt.setup != nil {
				tt.setup(members)
			}

			err := members[2].ch.GetState(nil, tt.timeout)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantState, members[2].state)
			}

			// No member may stay blocked after the transfer.
			done := make(chan error, 1)
			go func() {
				done <- members[1].ch.SendTo(nil, []byte("ping"))
			}()

			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(time.Second):
				t.Fatal("sender is still blocked by the flush")
			}
		})
	}
}

func TestLoopback_FlushBlocksSenders(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	members := newGroup(t, net, 2)

	require.NoError(t, members[0].ch.StartFlush())

	sent := make(chan struct{})

	go func() {
		_ = members[1].ch.SendTo(nil, []byte("held"))
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("message sent during flush")
	case <-time.After(50 * time.Millisecond):
	}

	// The flush owner is not blocked.
	require.NoError(t, members[0].ch.SendTo(nil, []byte("owner")))

	require.NoError(t, members[0].ch.StopFlush())

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("sender not released after flush")
	}

	assert.Equal(t, []string{"owner", "held"}, members[0].messages())
}

type chatLine struct {
	Author string
	Text   string
}

func TestLoopback_ObjectMessage(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	sender := newGroup(t, net, 1)[0]

	var got chatLine

	receiver := channel.ReceiverFunc(func(msg message.Message) error {
		return message.DecodeObject(msg, &got)
	})

	ch, err := channel.New(net.NewPipeline(), channel.DefaultConfig(), channel.WithReceiver(receiver))
	require.NoError(t, err)
	require.NoError(t, ch.Connect("test"))

	defer ch.Close()

	line := chatLine{Author: "alice", Text: "hi"}
	require.NoError(t, sender.ch.SendObject(ch.Address(), line))
	assert.Equal(t, line, got)
}

func TestLoopback_SendBeforeStart(t *testing.T) {
	net := NewNetwork(DefaultConfig())
	p := net.NewPipeline()

	err := p.DownMessage(message.NewBytesMessage(nil, bytes.Repeat([]byte("x"), 4)))
	require.ErrorIs(t, err, ErrNotStarted)
}
