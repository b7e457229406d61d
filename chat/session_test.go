package chat

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sbai-works/drawctl/types"
)

type fakeSender struct {
	mu      sync.Mutex
	calls   atomic.Int32
	reply   *types.ChatReply
	err     error
	block   chan struct{} // when set, Chat blocks until closed
	lastMsg string
}

func (f *fakeSender) Chat(_ context.Context, _, message string) (*types.ChatReply, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastMsg = message
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

func TestSendAppendsExchange(t *testing.T) {
	sender := &fakeSender{reply: &types.ChatReply{
		Response: "총 42개의 밸브가 있습니다.",
		SQLQuery: "SELECT COUNT(*) FROM valves",
		Data:     []map[string]any{{"count": 42}},
	}}
	s := NewSession("abc123", sender, nil)

	if !s.Send(t.Context(), "전체 밸브 수는 몇 개인가요?") {
		t.Fatal("send returned false")
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(msgs))
	}
	if msgs[0].Role != types.RoleUser || msgs[0].Content != "전체 밸브 수는 몇 개인가요?" {
		t.Errorf("user message = %+v", msgs[0])
	}
	bot := msgs[1]
	if bot.Role != types.RoleBot || bot.Content != "총 42개의 밸브가 있습니다." {
		t.Errorf("bot message = %+v", bot)
	}
	if bot.SQLQuery != "SELECT COUNT(*) FROM valves" {
		t.Errorf("SQLQuery = %q", bot.SQLQuery)
	}
	if bot.Table == nil || bot.Table.RowCount() != 1 {
		t.Fatalf("table = %+v, want one row", bot.Table)
	}
	if !reflect.DeepEqual(bot.Table.Columns, []string{"count"}) {
		t.Errorf("columns = %v, want [count]", bot.Table.Columns)
	}
}

func TestSendEmptyMessageIsNoop(t *testing.T) {
	sender := &fakeSender{reply: &types.ChatReply{Response: "ok"}}
	s := NewSession("abc123", sender, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		if s.Send(t.Context(), text) {
			t.Errorf("Send(%q) = true, want false", text)
		}
	}

	if got := sender.calls.Load(); got != 0 {
		t.Errorf("network calls = %d, want 0", got)
	}
	if len(s.Messages()) != 0 {
		t.Errorf("transcript length = %d, want 0", len(s.Messages()))
	}
}

func TestSendSingleFlight(t *testing.T) {
	block := make(chan struct{})
	sender := &fakeSender{reply: &types.ChatReply{Response: "ok"}, block: block}
	s := NewSession("abc123", sender, nil)

	done := make(chan struct{})
	go func() {
		s.Send(context.Background(), "first")
		close(done)
	}()

	// Wait for the first send to be outstanding.
	deadline := time.After(2 * time.Second)
	for !s.InFlight() {
		select {
		case <-deadline:
			t.Fatal("first send never became in-flight")
		case <-time.After(time.Millisecond):
		}
	}

	// Second send while loading: no-op, not queued.
	if s.Send(context.Background(), "second") {
		t.Error("second send was accepted while first was outstanding")
	}
	if got := sender.calls.Load(); got != 1 {
		t.Errorf("network calls = %d, want 1 until first resolves", got)
	}

	close(block)
	<-done

	// After resolution a new send goes through.
	if !s.Send(context.Background(), "third") {
		t.Error("send after resolution was rejected")
	}
	if got := sender.calls.Load(); got != 2 {
		t.Errorf("network calls = %d, want 2", got)
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	s := NewSession("abc123", sender, nil)

	if !s.Send(t.Context(), "질문") {
		t.Fatal("send returned false")
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript length = %d, want 2 (user message not rolled back)", len(msgs))
	}
	if msgs[0].Role != types.RoleUser {
		t.Errorf("first message role = %q, want user", msgs[0].Role)
	}
	if msgs[1].Role != types.RoleBot || msgs[1].Content != FallbackMessage {
		t.Errorf("fallback message = %+v", msgs[1])
	}
}

func TestBuildTable(t *testing.T) {
	rows := []map[string]any{
		{"valve_type": "gate", "count": 10},
		{"valve_type": "ball", "count": 5, "size": "6\""},
	}
	table := BuildTable(rows)
	if table == nil {
		t.Fatal("table is nil")
	}
	if !reflect.DeepEqual(table.Columns, []string{"count", "size", "valve_type"}) {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	// Missing cells render as nil, aligned to the column list.
	if table.Rows[0][1] != nil {
		t.Errorf("row 0 size cell = %v, want nil", table.Rows[0][1])
	}

	if BuildTable(nil) != nil {
		t.Error("BuildTable(nil) != nil")
	}
}

func TestDisplayRowsCap(t *testing.T) {
	table := &types.Table{Columns: []string{"n"}}
	for i := range 14 {
		table.Rows = append(table.Rows, []any{i})
	}

	rows, hidden := DisplayRows(table)
	if len(rows) != DisplayRowCap {
		t.Errorf("displayed rows = %d, want %d", len(rows), DisplayRowCap)
	}
	if hidden != 4 {
		t.Errorf("hidden = %d, want 4", hidden)
	}
	// Full row set retained on the table itself.
	if table.RowCount() != 14 {
		t.Errorf("retained rows = %d, want 14", table.RowCount())
	}

	small := &types.Table{Rows: [][]any{{1}}}
	rows, hidden = DisplayRows(small)
	if len(rows) != 1 || hidden != 0 {
		t.Errorf("small table display = %d rows, %d hidden", len(rows), hidden)
	}
}
