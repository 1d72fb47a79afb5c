package seniorx

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// TokenChecker revalidates a restored access token against the platform.
type TokenChecker interface {
	GetUser(ctx context.Context, accessToken string) (domain.ExternalIdentity, error)
}

// PrimaryChecker reports whether a local (non-embedded) session exists.
type PrimaryChecker interface {
	CurrentSession(ctx context.Context) (domainauth.Session, bool, error)
}

// FacadeOptions configures a Facade.
type FacadeOptions struct {
	Mode      domain.SessionMode
	Store     SnapshotStore
	Handshake *Handshake
	Syncer    IdentitySyncer
	Checker   TokenChecker
	Primary   PrimaryChecker
	Logger    *slog.Logger
}

// Facade is the single authentication state machine the rest of the
// application observes. It starts Unknown, moves to Loading while resolving,
// and settles on exactly one terminal state.
//
// Standalone mode resolves through the primary session and purges any stale
// embedded snapshot. Embedded mode restores and revalidates a persisted
// snapshot first and falls back to a fresh handshake.
type Facade struct {
	mode    domain.SessionMode
	store   SnapshotStore
	hs      *Handshake
	syncer  IdentitySyncer
	checker TokenChecker
	primary PrimaryChecker
	logger  *slog.Logger

	mu         sync.RWMutex
	state      domain.State
	snap       domain.Snapshot
	session    domainauth.Session
	syncing    bool
	syncFailed bool
}

// NewFacade creates a Facade in the Unknown state.
func NewFacade(opts FacadeOptions) (*Facade, error) {
	if opts.Store == nil {
		return nil, errors.New("snapshot store is required")
	}
	if opts.Mode == domain.ModeEmbedded {
		if opts.Handshake == nil {
			return nil, errors.New("handshake is required in embedded mode")
		}
		if opts.Checker == nil {
			return nil, errors.New("token checker is required in embedded mode")
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		mode:    opts.Mode,
		store:   opts.Store,
		hs:      opts.Handshake,
		syncer:  opts.Syncer,
		checker: opts.Checker,
		primary: opts.Primary,
		logger:  logger,
		state:   domain.StateUnknown,
	}, nil
}

// State returns the current auth state.
func (f *Facade) State() domain.State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Mode returns the session mode the facade was built for.
func (f *Facade) Mode() domain.SessionMode {
	return f.mode
}

// Snapshot returns the active embedded snapshot, if any.
func (f *Facade) Snapshot() (domain.Snapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap, f.snap.Valid()
}

// Session returns the active primary session, if any.
func (f *Facade) Session() (domainauth.Session, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.session, f.session.ID != ""
}

// Syncing reports whether an identity sync is still in flight. External auth
// settles before the sync completes, so consumers that need the linked local
// account should poll this.
func (f *Facade) Syncing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.syncing
}

// SyncFailed reports whether the last identity sync failed. A failed sync
// never demotes external auth; this flag is how consumers learn the local
// account link is missing.
func (f *Facade) SyncFailed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.syncFailed
}

// Start resolves the auth state. It always leaves the facade in a terminal
// state; resolution failures mean Unauthenticated, not an error to the
// caller.
func (f *Facade) Start(ctx context.Context) domain.State {
	f.setState(domain.StateLoading)

	var final domain.State
	if f.mode == domain.ModeEmbedded {
		final = f.resolveEmbedded(ctx)
	} else {
		final = f.resolveStandalone(ctx)
	}
	f.settle(final)
	return f.State()
}

// settle moves Loading to the resolved terminal state. A state promoted in
// the meantime, such as late credentials landing mid-return, is left alone.
func (f *Facade) settle(s domain.State) {
	f.mu.Lock()
	if f.state == domain.StateLoading {
		f.state = s
	}
	f.mu.Unlock()
}

func (f *Facade) resolveStandalone(ctx context.Context) domain.State {
	// A snapshot left behind by a previous embedded run is stale here and
	// must not leak into standalone auth decisions.
	if _, found, _ := f.store.Load(ctx); found {
		f.logger.Info("purging stale embedded session state")
		if err := f.store.Clear(ctx); err != nil {
			f.logger.Warn("failed to purge embedded session state", "err", err)
		}
	}

	if f.primary == nil {
		return domain.StateUnauthenticated
	}
	sess, ok, err := f.primary.CurrentSession(ctx)
	if err != nil {
		f.logger.Warn("primary session lookup failed", "err", err)
		return domain.StateUnauthenticated
	}
	if !ok {
		return domain.StateUnauthenticated
	}

	f.mu.Lock()
	f.session = sess
	f.mu.Unlock()
	return domain.StateAuthenticatedPrimary
}

func (f *Facade) resolveEmbedded(ctx context.Context) domain.State {
	if state, done := f.restoreSnapshot(ctx); done {
		return state
	}

	creds, err := f.hs.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrHandshakeTimeout) {
			f.logger.Warn("handshake produced no credentials, still listening")
			// A slow platform may answer after the deadline; the response is
			// from a trusted origin either way, so keep listening and promote
			// the state when it lands.
			go f.listenLate(ctx)
		} else {
			f.logger.Error("handshake failed", "err", err)
		}
		return domain.StateUnauthenticated
	}

	f.adopt(ctx, creds)
	return domain.StateAuthenticatedExternal
}

// adopt installs fresh handshake credentials: persists the snapshot, settles
// external auth, and links the local account in the background. The state
// settles before the sync completes so the embedded page is not held hostage
// by a slow backend.
func (f *Facade) adopt(ctx context.Context, creds Credentials) {
	snap := domain.Snapshot{User: creds.User, Token: creds.AccessToken, Mode: domain.ModeEmbedded}
	if saveErr := f.store.Save(ctx, snap); saveErr != nil {
		f.logger.Warn("failed to persist session snapshot", "err", saveErr)
	}
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()

	f.setState(domain.StateAuthenticatedExternal)
	f.beginSync(ctx, creds.User)
}

// listenLate keeps reading the inbound stream after the handshake deadline
// and promotes the facade when a valid credential message finally arrives.
func (f *Facade) listenLate(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-f.hs.conn.Messages():
			if !ok {
				return
			}
			creds, accepted, err := f.hs.accept(msg)
			if err != nil {
				f.logger.Error("late credential message rejected", "err", err)
				return
			}
			if accepted {
				f.logger.Info("late credentials accepted after handshake deadline")
				f.adopt(ctx, creds)
				return
			}
		}
	}
}

// restoreSnapshot tries to resume from a persisted snapshot. The restored
// token is revalidated against the platform before it is trusted; a rejected
// token clears the snapshot and falls through to a fresh handshake.
func (f *Facade) restoreSnapshot(ctx context.Context) (domain.State, bool) {
	snap, found, err := f.store.Load(ctx)
	if err != nil || !found {
		return domain.StateUnknown, false
	}

	user, checkErr := f.checker.GetUser(ctx, snap.Token)
	if checkErr != nil {
		f.logger.Info("persisted token no longer valid", "err", checkErr)
		if clearErr := f.store.Clear(ctx); clearErr != nil {
			f.logger.Warn("failed to clear stale snapshot", "err", clearErr)
		}
		return domain.StateUnknown, false
	}

	// Prefer the fresh platform identity over the stored one.
	snap.User = user
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()

	f.beginSync(ctx, user)
	return domain.StateAuthenticatedExternal, true
}

// beginSync links the external identity to a local account in the
// background. Sync failure never demotes external auth; the platform already
// vouched for the user. The outcome lands in the Syncing and SyncFailed
// flags.
func (f *Facade) beginSync(ctx context.Context, user domain.ExternalIdentity) {
	if f.syncer == nil {
		return
	}

	f.mu.Lock()
	f.syncing = true
	f.syncFailed = false
	f.mu.Unlock()

	go func() {
		_, err := f.syncer.SyncExternalUser(ctx, user)
		failed := err != nil && !errors.Is(err, ErrSyncInFlight)
		f.mu.Lock()
		f.syncing = false
		f.syncFailed = failed
		f.mu.Unlock()
		if failed {
			f.logger.Warn("identity sync failed, continuing with external auth", "email", user.Email, "err", err)
		}
	}()
}

// SignOut clears both the embedded snapshot and the primary session and
// settles on Unauthenticated.
func (f *Facade) SignOut(ctx context.Context) error {
	var firstErr error
	if err := f.store.Clear(ctx); err != nil {
		firstErr = err
	}

	f.mu.Lock()
	f.snap = domain.Snapshot{}
	f.session = domainauth.Session{}
	f.mu.Unlock()

	f.setState(domain.StateUnauthenticated)
	return firstErr
}

func (f *Facade) setState(s domain.State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
