package session

import (
	"context"
	"sync"
	"time"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

// Snapshot represents the current session state available to the UI.
type Snapshot struct {
	Identity      chyrp.Identity
	Authenticated bool
	Resolved      bool
	LastUpdated   time.Time
}

// Anonymous reports whether the probe has resolved to "not signed in".
// It is false while the first probe is still in flight so the UI can
// keep gated affordances disabled rather than offering them to a
// session that may turn out to be authenticated.
func (s Snapshot) Anonymous() bool {
	return s.Resolved && !s.Authenticated
}

// Store holds the process-wide session state. It is populated once on
// startup, refreshed on login/logout, and injected into views; views
// never probe the backend themselves.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Probe asks the backend who the caller is and records the result.
// Unauthorized responses and transport failures both resolve to the
// anonymous state: absence of a session is expected, not exceptional,
// and is never surfaced as an error. There is no retry.
func (s *Store) Probe(ctx context.Context, api chyrp.API) Snapshot {
	identity, err := api.CurrentUser(ctx)
	if err != nil {
		s.setAnonymous()
	} else {
		s.setIdentity(*identity)
	}
	return s.Snapshot()
}

// Login authenticates against the backend and refreshes the session
// state on success.
func (s *Store) Login(ctx context.Context, api chyrp.API, username, password string) error {
	if err := api.Login(ctx, username, password); err != nil {
		return err
	}
	s.Probe(ctx, api)
	return nil
}

// Register creates an account, which also signs it in, and refreshes
// the session state on success.
func (s *Store) Register(ctx context.Context, api chyrp.API, username, password string) error {
	if err := api.Register(ctx, username, password); err != nil {
		return err
	}
	s.Probe(ctx, api)
	return nil
}

// Logout clears the backend session and resets local state to
// anonymous. The local reset happens even when the backend call fails;
// a dangling server session is preferable to a UI that still offers
// authenticated affordances.
func (s *Store) Logout(ctx context.Context, api chyrp.API) error {
	err := api.Logout(ctx)
	s.setAnonymous()
	return err
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) setIdentity(identity chyrp.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{
		Identity:      identity,
		Authenticated: true,
		Resolved:      true,
		LastUpdated:   time.Now(),
	}
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{
		Resolved:    true,
		LastUpdated: time.Now(),
	}
}
