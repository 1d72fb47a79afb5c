package seniorx

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires timers only when Advance moves past their due time.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []fakeTimer
}

type fakeTimer struct {
	due time.Time
	ch  chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.timers = append(c.timers, fakeTimer{due: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock and fires every timer that came due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var pending []fakeTimer
	for _, tm := range c.timers {
		if !tm.due.After(c.now) {
			tm.ch <- c.now
		} else {
			pending = append(pending, tm)
		}
	}
	c.timers = pending
	c.mu.Unlock()
}

func testHandshake(t *testing.T, conn Conn, clock Clock) *Handshake {
	t.Helper()
	v, err := NewOriginValidator("senior.com.br", nil)
	require.NoError(t, err)
	hs, err := NewHandshake(HandshakeOptions{
		Conn:          conn,
		Validator:     v,
		RetryInterval: time.Second,
		Timeout:       5 * time.Second,
		Logger:        slog.New(slog.DiscardHandler),
		Clock:         clock,
	})
	require.NoError(t, err)
	return hs
}

const credMsg = `{"token":"tok-1","user":{"username":"maria@acme","email":"maria@acme.com"}}`

func TestHandshakeAcceptsValidCredentials(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(4)
	hs := testHandshake(t, conn, newFakeClock())

	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	creds, err := hs.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", creds.AccessToken)
	assert.Equal(t, "maria", creds.User.Username)
}

func TestHandshakeIgnoresUntrustedOriginAndNoise(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(8)
	hs := testHandshake(t, conn, newFakeClock())

	// Untrusted origin carrying otherwise valid credentials.
	conn.Deliver(Message{Origin: "https://evil.example.com", Data: []byte(credMsg)})
	// Trusted origin, non-credential traffic.
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(`{"event":"ping"}`)})
	// Finally the real one.
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	creds, err := hs.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", creds.AccessToken)
}

func TestHandshakeMissingEmailFailsFast(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(4)
	hs := testHandshake(t, conn, newFakeClock())

	// A trusted credential message with no email cannot be linked to an
	// account; the handshake must fail rather than retry until the deadline.
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(`{"token":"tok-x","user":{"username":"maria@acme"}}`)})

	_, err := hs.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestHandshakeRetriesUntilTimeout(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(4)
	clock := newFakeClock()
	hs := testHandshake(t, conn, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := hs.Run(ctx)
		done <- err
	}()

	// First request goes out immediately.
	select {
	case <-conn.Requests():
	case <-time.After(2 * time.Second):
		t.Fatal("expected immediate initial request")
	}

	// Each advance past the interval produces another request.
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		select {
		case <-conn.Requests():
		case <-time.After(2 * time.Second):
			t.Fatalf("expected retry request %d", i+1)
		}
	}

	// Crossing the deadline terminates the loop.
	clock.Advance(5 * time.Second)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrHandshakeTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not terminate at the deadline")
	}
}

func TestHandshakeDeduplicatesReplayedToken(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(4)
	hs := testHandshake(t, conn, newFakeClock())

	origin := "https://cloud.senior.com.br"
	conn.Deliver(Message{Origin: origin, Data: []byte(credMsg)})

	creds, err := hs.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", creds.AccessToken)

	// A replay of the same token is not accepted a second time.
	_, replayed, err := hs.accept(Message{Origin: origin, Data: []byte(credMsg)})
	require.NoError(t, err)
	assert.False(t, replayed)

	// A different token still is.
	fresh := `{"token":"tok-2","user":{"email":"maria@acme.com"}}`
	_, accepted, err := hs.accept(Message{Origin: origin, Data: []byte(fresh)})
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestHandshakeContextCancel(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(1)
	hs := testHandshake(t, conn, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := hs.Run(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("handshake did not observe cancellation")
	}
}

func TestHandshakeClosedConn(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(1)
	hs := testHandshake(t, conn, newFakeClock())
	conn.Close()

	_, err := hs.Run(context.Background())
	assert.ErrorIs(t, err, ErrConnClosed)
}
