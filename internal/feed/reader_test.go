package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vacradar/internal/ratelimit"
	"vacradar/pkg/logx"
)

// scriptedClient returns per-source responses, error first when scripted.
type scriptedClient struct {
	mu       sync.Mutex
	history  map[string][]Message
	errs     map[string][]error // consumed one per call, then history
	calls    map[string]int
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		history: map[string][]Message{},
		errs:    map[string][]error{},
		calls:   map[string]int{},
	}
}

func (c *scriptedClient) History(source string, _ int) ([]Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[source]++
	if queue := c.errs[source]; len(queue) > 0 {
		err := queue[0]
		c.errs[source] = queue[1:]
		return nil, err
	}
	return c.history[source], nil
}

func (c *scriptedClient) Close() error { return nil }

func (c *scriptedClient) callCount(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[source]
}

func newTestReader(cfg Config, client Client) *Reader {
	limiter := ratelimit.New(time.Millisecond, time.Millisecond)
	r := NewReader(cfg, client, limiter, logx.Nop())
	r.sleep = func(context.Context, time.Duration) {}
	return r
}

func msgAt(source string, id int64, age time.Duration) Message {
	return Message{Source: source, ID: id, Date: time.Now().Add(-age), Text: "текст"}
}

func TestReadSourceTrimsOldMessages(t *testing.T) {
	t.Parallel()
	client := newScriptedClient()
	client.history["studio"] = []Message{
		msgAt("studio", 3, time.Hour),
		msgAt("studio", 2, 23*time.Hour),
		msgAt("studio", 1, 48*time.Hour), // older than the window
	}
	r := newTestReader(Config{}, client)

	msgs := r.ReadSource(context.Background(), "studio", 24, 100)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != 3 || msgs[1].ID != 2 {
		t.Fatalf("wrong messages: %d, %d", msgs[0].ID, msgs[1].ID)
	}
}

func TestReadSourceRetriesAfterSlowDown(t *testing.T) {
	t.Parallel()
	client := newScriptedClient()
	client.errs["studio"] = []error{
		&SlowDownError{RetryAfter: time.Millisecond},
		&SlowDownError{RetryAfter: time.Millisecond},
	}
	client.history["studio"] = []Message{msgAt("studio", 1, time.Hour)}
	r := newTestReader(Config{}, client)

	msgs := r.ReadSource(context.Background(), "studio", 24, 100)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if got := client.callCount("studio"); got != 3 {
		t.Fatalf("History called %d times, want 3", got)
	}
}

func TestReadSourceUnavailableYieldsEmpty(t *testing.T) {
	t.Parallel()
	client := newScriptedClient()
	client.errs["gone"] = []error{
		&SourceUnavailableError{Source: "gone", Reason: "no public preview"},
	}
	r := newTestReader(Config{}, client)

	if msgs := r.ReadSource(context.Background(), "gone", 24, 100); msgs != nil {
		t.Fatalf("got %v, want nil", msgs)
	}
	if got := client.callCount("gone"); got != 1 {
		t.Fatalf("History called %d times, want 1 (no retry)", got)
	}
}

func TestReadSourceUnexpectedErrorYieldsEmpty(t *testing.T) {
	t.Parallel()
	client := newScriptedClient()
	client.errs["flaky"] = []error{errors.New("connection reset")}
	r := newTestReader(Config{}, client)

	if msgs := r.ReadSource(context.Background(), "flaky", 24, 100); msgs != nil {
		t.Fatalf("got %v, want nil", msgs)
	}
}

func TestReadSourcesEverySourceHasEntry(t *testing.T) {
	t.Parallel()
	client := newScriptedClient()
	client.history["alpha"] = []Message{msgAt("alpha", 1, time.Hour)}
	client.errs["beta"] = []error{&SourceUnavailableError{Source: "beta", Reason: "gone"}}
	client.history["gamma"] = []Message{msgAt("gamma", 2, time.Hour)}

	r := newTestReader(Config{BatchSize: 2, BatchDelay: time.Millisecond}, client)
	sources := []string{"alpha", "beta", "gamma"}

	out := r.ReadSources(context.Background(), sources, 24, 100)
	if len(out) != len(sources) {
		t.Fatalf("got %d entries, want %d", len(out), len(sources))
	}
	for _, s := range sources {
		if _, ok := out[s]; !ok {
			t.Fatalf("missing entry for %q", s)
		}
	}
	if len(out["alpha"]) != 1 || len(out["gamma"]) != 1 {
		t.Fatalf("unexpected payloads: alpha=%d gamma=%d", len(out["alpha"]), len(out["gamma"]))
	}
	if out["beta"] != nil {
		t.Fatalf("beta = %v, want nil", out["beta"])
	}
}

func TestSlowDownErrorUnwrap(t *testing.T) {
	t.Parallel()
	err := error(&SlowDownError{RetryAfter: 30 * time.Second})
	sd, ok := AsSlowDown(err)
	if !ok {
		t.Fatal("AsSlowDown = false")
	}
	if sd.RetryAfter != 30*time.Second {
		t.Fatalf("RetryAfter = %v", sd.RetryAfter)
	}
	if _, ok := AsSlowDown(errors.New("other")); ok {
		t.Fatal("AsSlowDown matched an unrelated error")
	}
	if !IsUnavailable(&SourceUnavailableError{Source: "x"}) {
		t.Fatal("IsUnavailable = false")
	}
}
