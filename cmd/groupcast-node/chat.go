package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-msgpack/codec"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/message"
	"github.com/maxpoletaev/groupcast/view"
)

type chatLine struct {
	Author string
	Text   string
	Time   int64
}

func (l chatLine) String() string {
	ts := time.Unix(0, l.Time).Format(time.TimeOnly)
	return fmt.Sprintf("%s [%s] %s", ts, l.Author, l.Text)
}

// chatHistory keeps the last lines of the chat. The history is the state
// a joining node fetches from the coordinator.
type chatHistory struct {
	mu     sync.Mutex
	lines  []chatLine
	limit  int
	out    io.Writer
	names  *address.NameCache
	logger kitlog.Logger
}

func newChatHistory(limit int, out io.Writer, names *address.NameCache, logger kitlog.Logger) *chatHistory {
	return &chatHistory{
		limit:  limit,
		out:    out,
		names:  names,
		logger: logger,
	}
}

func (h *chatHistory) add(line chatLine) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines = append(h.lines, line)

	if h.limit > 0 && len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
}

func (h *chatHistory) Lines() []chatLine {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]chatLine(nil), h.lines...)
}

func (h *chatHistory) Receive(msg message.Message) error {
	var line chatLine

	if err := message.DecodeObject(msg, &line); err != nil {
		return fmt.Errorf("failed to decode chat line from %s: %w", msg.Src(), err)
	}

	h.add(line)
	fmt.Fprintln(h.out, line)

	return nil
}

func (h *chatHistory) ViewAccepted(v *view.View) {
	members := v.Members()
	names := make([]string, len(members))

	for i, m := range members {
		names[i] = h.names.Name(m)
	}

	fmt.Fprintf(h.out, "** view %d: %v\n", v.ID().ID, names)
}

func (h *chatHistory) Block() {
	level.Debug(h.logger).Log("msg", "flush started, sending is blocked")
}

func (h *chatHistory) Unblock() {
	level.Debug(h.logger).Log("msg", "flush stopped")
}

func (h *chatHistory) GetState(w io.Writer) error {
	lines := h.Lines()
	return codec.NewEncoder(w, &codec.MsgpackHandle{}).Encode(lines)
}

func (h *chatHistory) SetState(r io.Reader) error {
	var lines []chatLine

	if err := codec.NewDecoder(r, &codec.MsgpackHandle{}).Decode(&lines); err != nil {
		return err
	}

	h.mu.Lock()
	h.lines = lines
	h.mu.Unlock()

	fmt.Fprintf(h.out, "** received %d lines of history\n", len(lines))

	for _, line := range lines {
		fmt.Fprintln(h.out, line)
	}

	return nil
}
