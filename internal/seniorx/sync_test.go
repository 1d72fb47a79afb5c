package seniorx

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// blockingSyncer holds SyncExternalUser until released, counting calls.
type blockingSyncer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
}

func (s *blockingSyncer) SyncExternalUser(_ context.Context, user domain.ExternalIdentity) (SyncResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return SyncResult{}, s.err
	}
	return SyncResult{UserID: "u1", Email: user.Email, OneTimeToken: "ott"}, nil
}

func (s *blockingSyncer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestGuardedSyncerBlocksConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	inner := &blockingSyncer{release: make(chan struct{})}
	g := NewGuardedSyncer(inner, slog.New(slog.DiscardHandler))
	user := domain.ExternalIdentity{Username: "maria", Email: "maria@acme.com"}

	firstDone := make(chan error, 1)
	go func() {
		_, err := g.SyncExternalUser(context.Background(), user)
		firstDone <- err
	}()

	// Wait for the first call to be in flight.
	for inner.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := g.SyncExternalUser(context.Background(), user)
	assert.ErrorIs(t, err, ErrSyncInFlight)

	close(inner.release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, inner.callCount())

	// Once finished, the same email can sync again.
	_, err = g.SyncExternalUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestGuardedSyncerDifferentEmailsRunIndependently(t *testing.T) {
	t.Parallel()

	inner := &blockingSyncer{release: make(chan struct{})}
	g := NewGuardedSyncer(inner, slog.New(slog.DiscardHandler))

	done := make(chan error, 1)
	go func() {
		_, err := g.SyncExternalUser(context.Background(), domain.ExternalIdentity{Email: "a@acme.com"})
		done <- err
	}()
	for inner.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	otherDone := make(chan error, 1)
	go func() {
		_, err := g.SyncExternalUser(context.Background(), domain.ExternalIdentity{Email: "b@acme.com"})
		otherDone <- err
	}()

	for inner.callCount() < 2 {
		time.Sleep(time.Millisecond)
	}
	close(inner.release)
	require.NoError(t, <-done)
	require.NoError(t, <-otherDone)
}

func TestGuardedSyncerRequiresEmail(t *testing.T) {
	t.Parallel()

	g := NewGuardedSyncer(&blockingSyncer{}, slog.New(slog.DiscardHandler))
	_, err := g.SyncExternalUser(context.Background(), domain.ExternalIdentity{Username: "maria"})
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestGuardedSyncerPropagatesFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	g := NewGuardedSyncer(&blockingSyncer{err: boom}, slog.New(slog.DiscardHandler))
	_, err := g.SyncExternalUser(context.Background(), domain.ExternalIdentity{Email: "a@acme.com"})
	assert.ErrorIs(t, err, boom)
}
