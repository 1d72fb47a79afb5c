package seniorx

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

// SyncResult is what the backend returns after linking an external identity
// to a local account.
type SyncResult struct {
	UserID string
	// OneTimeToken redeems for a local session.
	OneTimeToken string
	Email        string
	Created      bool
}

// IdentitySyncer links an external identity to a local account. The service
// layer provides the implementation.
type IdentitySyncer interface {
	SyncExternalUser(ctx context.Context, user domain.ExternalIdentity) (SyncResult, error)
}

// ErrSyncInFlight is returned when a sync for the same email is already
// running. Callers treat it as "someone else is doing the work".
var ErrSyncInFlight = errors.New("identity sync already in flight")

// GuardedSyncer wraps an IdentitySyncer with a per-email in-flight guard so
// replayed credential messages cannot trigger duplicate concurrent syncs.
type GuardedSyncer struct {
	inner  IdentitySyncer
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGuardedSyncer wraps inner with the in-flight guard.
func NewGuardedSyncer(inner IdentitySyncer, logger *slog.Logger) *GuardedSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSyncer{
		inner:    inner,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// SyncExternalUser runs the inner sync unless one for the same email is
// already in progress.
func (g *GuardedSyncer) SyncExternalUser(ctx context.Context, user domain.ExternalIdentity) (SyncResult, error) {
	if user.Email == "" {
		return SyncResult{}, ErrMissingEmail
	}

	g.mu.Lock()
	if _, busy := g.inFlight[user.Email]; busy {
		g.mu.Unlock()
		return SyncResult{}, ErrSyncInFlight
	}
	g.inFlight[user.Email] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inFlight, user.Email)
		g.mu.Unlock()
	}()

	res, err := g.inner.SyncExternalUser(ctx, user)
	if err != nil {
		g.logger.Error("identity sync failed", "email", user.Email, "err", err)
		return SyncResult{}, err
	}
	return res, nil
}
