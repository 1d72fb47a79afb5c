package seniorx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrHandshakeTimeout is returned when no usable credential message arrives
// within the handshake window. The loop always terminates: an embedded page
// that never answers must not hang the application forever.
var ErrHandshakeTimeout = errors.New("handshake timed out waiting for credentials")

// Clock abstracts timer creation so the retry loop can run under a fake
// clock in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// HandshakeOptions configures a Handshake.
type HandshakeOptions struct {
	Conn      Conn
	Validator *OriginValidator
	// RequestMarker is the opaque string the platform recognizes as the
	// initial-data request.
	RequestMarker string
	// RetryInterval is how often the request is re-sent while waiting.
	RetryInterval time.Duration
	// Timeout bounds the whole handshake.
	Timeout time.Duration
	Logger  *slog.Logger
	Clock   Clock
}

// Handshake drives the credential exchange with the hosting platform: it
// re-sends the initial-data request on an interval and watches the inbound
// stream for the first valid credential message.
type Handshake struct {
	conn      Conn
	validator *OriginValidator
	marker    string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	clock     Clock

	mu             sync.Mutex
	warnedOrigins  map[string]struct{}
	acceptedTokens map[string]struct{}
}

// NewHandshake creates a Handshake from options, applying defaults for
// anything unset.
func NewHandshake(opts HandshakeOptions) (*Handshake, error) {
	if opts.Conn == nil {
		return nil, errors.New("conn is required")
	}
	if opts.Validator == nil {
		return nil, errors.New("origin validator is required")
	}
	marker := opts.RequestMarker
	if marker == "" {
		marker = "requestInitialData"
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}
	timeout := opts.Timeout
	if timeout < interval {
		timeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Handshake{
		conn:           opts.Conn,
		validator:      opts.Validator,
		marker:         marker,
		interval:       interval,
		timeout:        timeout,
		logger:         logger,
		clock:          clock,
		warnedOrigins:  make(map[string]struct{}),
		acceptedTokens: make(map[string]struct{}),
	}, nil
}

// Run requests credentials and blocks until the first valid credential
// message arrives, the timeout elapses, a trusted message proves unusable
// (ErrMissingEmail), or the context is canceled. A message that arrives in
// the same instant the timeout fires is still accepted: the inbound stream
// is drained before the deadline is honored.
func (h *Handshake) Run(ctx context.Context) (Credentials, error) {
	deadline := h.clock.After(h.timeout)
	// First request goes out immediately; subsequent ones on the interval.
	retry := h.clock.After(0)

	for {
		// Drain anything already delivered before considering timers.
		select {
		case msg, ok := <-h.conn.Messages():
			if !ok {
				return Credentials{}, ErrConnClosed
			}
			creds, accepted, err := h.accept(msg)
			if err != nil {
				return Credentials{}, err
			}
			if accepted {
				return creds, nil
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return Credentials{}, ctx.Err()
		case msg, ok := <-h.conn.Messages():
			if !ok {
				return Credentials{}, ErrConnClosed
			}
			creds, accepted, err := h.accept(msg)
			if err != nil {
				return Credentials{}, err
			}
			if accepted {
				return creds, nil
			}
		case <-retry:
			if err := h.conn.Request(ctx, h.marker); err != nil && !errors.Is(err, context.Canceled) {
				h.logger.Warn("initial data request failed", "err", err)
			}
			retry = h.clock.After(h.interval)
		case <-deadline:
			return Credentials{}, ErrHandshakeTimeout
		}
	}
}

// accept validates and normalizes one inbound frame. Rejected origins are
// logged once each; non-credential traffic is ignored quietly; a replayed
// token is ignored after the first acceptance. A trusted credential message
// without an email is a fatal error: the platform vouched for a user the
// application cannot link, and retrying will not change the payload.
func (h *Handshake) accept(msg Message) (Credentials, bool, error) {
	if !h.validator.Allowed(msg.Origin) {
		h.warnOriginOnce(msg.Origin)
		return Credentials{}, false, nil
	}

	creds, err := Normalize(msg.Data)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingEmail):
		h.logger.Error("credential message rejected", "origin", msg.Origin, "err", err)
		return Credentials{}, false, fmt.Errorf("credential message from %s: %w", msg.Origin, err)
	case errors.Is(err, ErrNotCredentialMessage):
		return Credentials{}, false, nil
	default:
		h.logger.Debug("unparseable message ignored", "origin", msg.Origin, "err", err)
		return Credentials{}, false, nil
	}

	h.mu.Lock()
	_, replay := h.acceptedTokens[creds.AccessToken]
	if !replay {
		h.acceptedTokens[creds.AccessToken] = struct{}{}
	}
	h.mu.Unlock()
	if replay {
		return Credentials{}, false, nil
	}

	h.logger.Info("credentials received", "origin", msg.Origin, "user", creds.User.Username)
	return creds, true, nil
}

func (h *Handshake) warnOriginOnce(origin string) {
	h.mu.Lock()
	_, warned := h.warnedOrigins[origin]
	if !warned {
		h.warnedOrigins[origin] = struct{}{}
	}
	h.mu.Unlock()
	if !warned {
		h.logger.Warn("message from untrusted origin ignored", "origin", origin)
	}
}
