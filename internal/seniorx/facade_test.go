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

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

type fakeChecker struct {
	user domain.ExternalIdentity
	err  error
}

func (c *fakeChecker) GetUser(_ context.Context, _ string) (domain.ExternalIdentity, error) {
	if c.err != nil {
		return domain.ExternalIdentity{}, c.err
	}
	return c.user, nil
}

type fakePrimary struct {
	sess  domainauth.Session
	found bool
	err   error
}

func (p *fakePrimary) CurrentSession(_ context.Context) (domainauth.Session, bool, error) {
	return p.sess, p.found, p.err
}

// recordingSyncer records synced identities; the sync itself runs on a
// facade-owned goroutine, so access is mutex-guarded. A non-nil release
// channel blocks the sync until the test closes it.
type recordingSyncer struct {
	mu      sync.Mutex
	synced  []domain.ExternalIdentity
	err     error
	release chan struct{}
}

func (s *recordingSyncer) SyncExternalUser(_ context.Context, user domain.ExternalIdentity) (SyncResult, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	s.synced = append(s.synced, user)
	s.mu.Unlock()
	if s.err != nil {
		return SyncResult{}, s.err
	}
	return SyncResult{UserID: "u1", Email: user.Email}, nil
}

func (s *recordingSyncer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.synced)
}

func (s *recordingSyncer) lastEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.synced) == 0 {
		return ""
	}
	return s.synced[len(s.synced)-1].Email
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func embeddedFacade(t *testing.T, store SnapshotStore, conn Conn, checker TokenChecker, syncer IdentitySyncer) *Facade {
	t.Helper()
	v, err := NewOriginValidator("senior.com.br", nil)
	require.NoError(t, err)
	hs, err := NewHandshake(HandshakeOptions{
		Conn:          conn,
		Validator:     v,
		RetryInterval: time.Second,
		Timeout:       5 * time.Second,
		Logger:        discardLogger(),
		Clock:         newFakeClock(),
	})
	require.NoError(t, err)
	f, err := NewFacade(FacadeOptions{
		Mode:      domain.ModeEmbedded,
		Store:     store,
		Handshake: hs,
		Syncer:    syncer,
		Checker:   checker,
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return f
}

func TestFacadeStandalonePrimarySession(t *testing.T) {
	t.Parallel()

	primary := &fakePrimary{
		sess:  domainauth.Session{ID: "sess-1", UserID: "u1", Email: "maria@acme.com"},
		found: true,
	}
	f, err := NewFacade(FacadeOptions{
		Mode:    domain.ModeStandalone,
		Store:   NewMemStore(),
		Primary: primary,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateUnknown, f.State())

	state := f.Start(context.Background())
	assert.Equal(t, domain.StateAuthenticatedPrimary, state)
	sess, ok := f.Session()
	require.True(t, ok)
	assert.Equal(t, "sess-1", sess.ID)
}

func TestFacadeStandalonePurgesStaleSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	require.NoError(t, store.Save(ctx, testSnapshot()))

	f, err := NewFacade(FacadeOptions{
		Mode:   domain.ModeStandalone,
		Store:  store,
		Logger: discardLogger(),
	})
	require.NoError(t, err)

	state := f.Start(ctx)
	assert.Equal(t, domain.StateUnauthenticated, state)

	// The embedded leftovers are gone.
	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFacadeStandalonePrimaryLookupFailure(t *testing.T) {
	t.Parallel()

	f, err := NewFacade(FacadeOptions{
		Mode:    domain.ModeStandalone,
		Store:   NewMemStore(),
		Primary: &fakePrimary{err: errors.New("redis down")},
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StateUnauthenticated, f.Start(context.Background()))
}

func TestFacadeEmbeddedRestoresValidSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	require.NoError(t, store.Save(ctx, testSnapshot()))

	fresh := domain.ExternalIdentity{Username: "maria", FullName: "Maria S. Silva", Email: "maria@acme.com"}
	syncer := &recordingSyncer{}
	f := embeddedFacade(t, store, NewPipeConn(1), &fakeChecker{user: fresh}, syncer)

	state := f.Start(ctx)
	assert.Equal(t, domain.StateAuthenticatedExternal, state)

	// The platform's current identity wins over the stored one.
	snap, ok := f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Maria S. Silva", snap.User.FullName)

	require.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "maria@acme.com", syncer.lastEmail())
}

func TestFacadeEmbeddedRejectedTokenFallsBackToHandshake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	require.NoError(t, store.Save(ctx, testSnapshot()))

	conn := NewPipeConn(1)
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	syncer := &recordingSyncer{}
	f := embeddedFacade(t, store, conn, &fakeChecker{err: errors.New("token rejected")}, syncer)

	state := f.Start(ctx)
	assert.Equal(t, domain.StateAuthenticatedExternal, state)

	// The handshake replaced the stale snapshot.
	snap, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tok-1", snap.Token)
	require.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFacadeEmbeddedHandshakeTimeoutIsUnauthenticated(t *testing.T) {
	t.Parallel()

	conn := NewPipeConn(1)
	conn.Close()
	f := embeddedFacade(t, NewMemStore(), conn, &fakeChecker{}, nil)

	assert.Equal(t, domain.StateUnauthenticated, f.Start(context.Background()))
}

func TestFacadeSyncFailureDoesNotDemoteExternalAuth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	conn := NewPipeConn(1)
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	syncer := &recordingSyncer{err: errors.New("backend down")}
	f := embeddedFacade(t, NewMemStore(), conn, &fakeChecker{}, syncer)

	state := f.Start(ctx)
	assert.Equal(t, domain.StateAuthenticatedExternal, state)

	// The failure surfaces through the flag, not through the auth state.
	require.Eventually(t, func() bool { return f.SyncFailed() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.StateAuthenticatedExternal, f.State())
	assert.False(t, f.Syncing())
	require.Equal(t, 1, syncer.count())
}

func TestFacadeSettlesBeforeSyncCompletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	conn := NewPipeConn(1)
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	syncer := &recordingSyncer{release: make(chan struct{})}
	f := embeddedFacade(t, NewMemStore(), conn, &fakeChecker{}, syncer)

	// External auth settles while the sync is still blocked.
	state := f.Start(ctx)
	assert.Equal(t, domain.StateAuthenticatedExternal, state)
	assert.True(t, f.Syncing())
	assert.False(t, f.SyncFailed())

	close(syncer.release)
	require.Eventually(t, func() bool { return !f.Syncing() }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, f.SyncFailed())
	assert.Equal(t, 1, syncer.count())
}

func TestFacadeAcceptsLateCredentialsAfterTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := NewPipeConn(4)
	clock := newFakeClock()
	v, err := NewOriginValidator("senior.com.br", nil)
	require.NoError(t, err)
	hs, err := NewHandshake(HandshakeOptions{
		Conn:          conn,
		Validator:     v,
		RetryInterval: time.Second,
		Timeout:       5 * time.Second,
		Logger:        discardLogger(),
		Clock:         clock,
	})
	require.NoError(t, err)

	syncer := &recordingSyncer{}
	f, err := NewFacade(FacadeOptions{
		Mode:      domain.ModeEmbedded,
		Store:     NewMemStore(),
		Handshake: hs,
		Syncer:    syncer,
		Checker:   &fakeChecker{},
		Logger:    discardLogger(),
	})
	require.NoError(t, err)

	done := make(chan domain.State, 1)
	go func() { done <- f.Start(ctx) }()

	// The first request proves the handshake has registered its deadline
	// timer; only then is advancing the fake clock meaningful.
	select {
	case <-conn.Requests():
	case <-time.After(2 * time.Second):
		t.Fatal("expected immediate initial request")
	}

	clock.Advance(6 * time.Second)
	select {
	case state := <-done:
		assert.Equal(t, domain.StateUnauthenticated, state)
	case <-time.After(2 * time.Second):
		t.Fatal("facade did not settle at the handshake deadline")
	}

	// The platform answers after the deadline; the trusted response still
	// promotes the facade.
	conn.Deliver(Message{Origin: "https://cloud.senior.com.br", Data: []byte(credMsg)})

	require.Eventually(t, func() bool {
		return f.State() == domain.StateAuthenticatedExternal
	}, 2*time.Second, 10*time.Millisecond)

	snap, ok := f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "tok-1", snap.Token)
	require.Eventually(t, func() bool { return syncer.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFacadeSignOutClearsEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	require.NoError(t, store.Save(ctx, testSnapshot()))

	fresh := domain.ExternalIdentity{Username: "maria", Email: "maria@acme.com"}
	f := embeddedFacade(t, store, NewPipeConn(1), &fakeChecker{user: fresh}, nil)
	require.Equal(t, domain.StateAuthenticatedExternal, f.Start(ctx))

	require.NoError(t, f.SignOut(ctx))
	assert.Equal(t, domain.StateUnauthenticated, f.State())

	_, ok := f.Snapshot()
	assert.False(t, ok)
	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewFacadeValidation(t *testing.T) {
	t.Parallel()

	_, err := NewFacade(FacadeOptions{Mode: domain.ModeStandalone})
	require.Error(t, err)

	_, err = NewFacade(FacadeOptions{Mode: domain.ModeEmbedded, Store: NewMemStore()})
	require.Error(t, err)
}
