package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

// fakeAPI implements the subset of chyrp.API the session store touches.
// Calls to unimplemented methods panic via the embedded nil interface.
type fakeAPI struct {
	chyrp.API
	currentUser func(ctx context.Context) (*chyrp.Identity, error)
	login       func(ctx context.Context, username, password string) error
	register    func(ctx context.Context, username, password string) error
	logout      func(ctx context.Context) error
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*chyrp.Identity, error) {
	return f.currentUser(ctx)
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) error {
	return f.login(ctx, username, password)
}

func (f *fakeAPI) Register(ctx context.Context, username, password string) error {
	return f.register(ctx, username, password)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	return f.logout(ctx)
}

func TestStore_ProbeResolvesIdentity(t *testing.T) {
	var s Store
	api := &fakeAPI{
		currentUser: func(ctx context.Context) (*chyrp.Identity, error) {
			return &chyrp.Identity{ID: 7, Username: "amy"}, nil
		},
	}

	snap := s.Probe(context.Background(), api)
	if !snap.Resolved || !snap.Authenticated {
		t.Fatalf("snapshot = %#v, want resolved authenticated", snap)
	}
	if snap.Identity.Username != "amy" {
		t.Fatalf("identity = %#v, want amy", snap.Identity)
	}
	if snap.Anonymous() {
		t.Fatal("Anonymous() = true for an authenticated session")
	}
}

func TestStore_ProbeAbsorbsUnauthorized(t *testing.T) {
	var s Store
	api := &fakeAPI{
		currentUser: func(ctx context.Context) (*chyrp.Identity, error) {
			return nil, fmt.Errorf("api returned status 401: %w", chyrp.ErrUnauthorized)
		},
	}

	snap := s.Probe(context.Background(), api)
	if !snap.Resolved || snap.Authenticated {
		t.Fatalf("snapshot = %#v, want resolved anonymous", snap)
	}
	if !snap.Anonymous() {
		t.Fatal("Anonymous() = false after unauthorized probe")
	}
}

func TestStore_ProbeAbsorbsTransportFailure(t *testing.T) {
	var s Store
	api := &fakeAPI{
		currentUser: func(ctx context.Context) (*chyrp.Identity, error) {
			return nil, errors.New("connection refused")
		},
	}

	snap := s.Probe(context.Background(), api)
	if !snap.Anonymous() {
		t.Fatalf("snapshot = %#v, want anonymous after network failure", snap)
	}
}

func TestStore_UnresolvedSnapshotIsNotAnonymous(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.Resolved || snap.Anonymous() {
		t.Fatalf("zero snapshot = %#v, want unresolved and not anonymous", snap)
	}
}

func TestStore_LoginRefreshesIdentity(t *testing.T) {
	var s Store
	api := &fakeAPI{
		login: func(ctx context.Context, username, password string) error {
			if username != "amy" || password != "pw" {
				return errors.New("bad credentials")
			}
			return nil
		},
		currentUser: func(ctx context.Context) (*chyrp.Identity, error) {
			return &chyrp.Identity{ID: 1, Username: "amy"}, nil
		},
	}

	if err := s.Login(context.Background(), api, "amy", "pw"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if snap := s.Snapshot(); !snap.Authenticated || snap.Identity.Username != "amy" {
		t.Fatalf("snapshot after login = %#v, want authenticated amy", snap)
	}
}

func TestStore_LoginFailureLeavesStateAlone(t *testing.T) {
	var s Store
	api := &fakeAPI{
		login: func(ctx context.Context, username, password string) error {
			return errors.New("invalid credentials")
		},
	}

	if err := s.Login(context.Background(), api, "amy", "wrong"); err == nil {
		t.Fatal("Login returned nil error, want failure")
	}
	if snap := s.Snapshot(); snap.Resolved {
		t.Fatalf("snapshot = %#v, want untouched after failed login", snap)
	}
}

func TestStore_LogoutClearsEvenOnServerFailure(t *testing.T) {
	var s Store
	s.setIdentity(chyrp.Identity{ID: 1, Username: "amy"})

	api := &fakeAPI{
		logout: func(ctx context.Context) error { return errors.New("boom") },
	}
	if err := s.Logout(context.Background(), api); err == nil {
		t.Fatal("Logout returned nil error, want server failure")
	}
	if snap := s.Snapshot(); !snap.Anonymous() {
		t.Fatalf("snapshot = %#v, want anonymous after logout", snap)
	}
}
