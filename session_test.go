package keeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/principal"
	"github.com/xraph/keeper/snapshot"
	"github.com/xraph/keeper/store/memory"
)

type recordingNavigator struct {
	mu        sync.Mutex
	redirects []Redirect
}

func (n *recordingNavigator) Navigate(_ context.Context, r Redirect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, r)
}

func (n *recordingNavigator) last() (Redirect, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.redirects) == 0 {
		return Redirect{}, false
	}
	return n.redirects[len(n.redirects)-1], true
}

func (n *recordingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.redirects)
}

// failingStore wraps a memory store and fails the selected operations.
type failingStore struct {
	*memory.Store
	failSave   error
	failLoad   error
	failDelete error
}

func (f *failingStore) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	if f.failSave != nil {
		return f.failSave
	}
	return f.Store.SaveSnapshot(ctx, key, data)
}

func (f *failingStore) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	if f.failLoad != nil {
		return nil, f.failLoad
	}
	return f.Store.LoadSnapshot(ctx, key)
}

func (f *failingStore) DeleteSnapshot(ctx context.Context, key string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	return f.Store.DeleteSnapshot(ctx, key)
}

func newTestSession(t *testing.T, store snapshot.Store, opts ...Option) (*Session, *recordingNavigator) {
	t.Helper()
	nav := &recordingNavigator{}
	base := []Option{
		WithDirectory(credential.Demo()),
		WithSnapshotStore(store),
		WithNavigator(nav),
	}
	s, err := NewSession(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return s, nav
}

func mustLogin(t *testing.T, s *Session, handle string) {
	t.Helper()
	ok, err := s.Login(context.Background(), handle, credential.DemoSecret)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("login %s failed", handle)
	}
}

func TestNewSession_RequiresDirectoryAndStore(t *testing.T) {
	if _, err := NewSession(WithSnapshotStore(memory.New())); !errors.Is(err, ErrDirectoryRequired) {
		t.Fatalf("expected ErrDirectoryRequired, got %v", err)
	}
	if _, err := NewSession(WithDirectory(credential.Demo())); !errors.Is(err, ErrSnapshotStoreRequired) {
		t.Fatalf("expected ErrSnapshotStoreRequired, got %v", err)
	}
}

func TestNewSession_RejectsBadConfig(t *testing.T) {
	_, err := NewSession(
		WithDirectory(credential.Demo()),
		WithSnapshotStore(memory.New()),
		WithConfig(Config{UnmatchedPolicy: "sometimes"}),
	)
	if err == nil {
		t.Fatal("expected config error")
	}
}

func TestLogin_EveryDirectoryEntry(t *testing.T) {
	ctx := context.Background()
	for _, e := range credential.Demo().Entries() {
		t.Run(e.Principal.ContactHandle, func(t *testing.T) {
			s, _ := newTestSession(t, memory.New())
			ok, err := s.Login(ctx, e.Principal.ContactHandle, credential.DemoSecret)
			if err != nil || !ok {
				t.Fatalf("login: ok=%v err=%v", ok, err)
			}
			if !s.IsAuthenticated() {
				t.Fatal("expected authenticated")
			}
			p, _ := s.Principal()
			if p.Role != e.Principal.Role {
				t.Fatalf("expected role %s, got %s", e.Principal.Role, p.Role)
			}
			if !p.Equal(&e.Principal) {
				t.Fatal("principal differs from directory entry")
			}
		})
	}
}

func TestLogin_BadCredentialsLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s, _ := newTestSession(t, st)

	cases := []struct{ handle, secret string }{
		{"admin@hawkly.io", "wrong"},
		{"admin@hawkly.io", ""},
		{"nobody@hawkly.io", credential.DemoSecret},
		{"", credential.DemoSecret},
	}
	for _, tc := range cases {
		ok, err := s.Login(ctx, tc.handle, tc.secret)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.handle, err)
		}
		if ok {
			t.Fatalf("%q: expected login to fail", tc.handle)
		}
		if s.IsAuthenticated() {
			t.Fatalf("%q: expected unauthenticated", tc.handle)
		}
	}
	if _, err := st.LoadSnapshot(ctx, snapshot.DefaultKey); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatal("failed logins must not write a snapshot")
	}

	// A failure after a success keeps the earlier principal.
	mustLogin(t, s, "auditor@hawkly.io")
	ok, _ := s.Login(ctx, "admin@hawkly.io", "wrong")
	if ok {
		t.Fatal("expected failure")
	}
	p, _ := s.Principal()
	if p.Role != principal.RoleAuditor {
		t.Fatalf("expected auditor to remain, got %s", p.Role)
	}
}

func TestLogin_CaseInsensitiveHandle(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestSession(t, memory.New())
	b, _ := newTestSession(t, memory.New())

	okA, _ := a.Login(ctx, "Admin@Hawkly.IO", credential.DemoSecret)
	okB, _ := b.Login(ctx, "admin@hawkly.io", credential.DemoSecret)
	if !okA || !okB {
		t.Fatalf("expected both logins to succeed: %v %v", okA, okB)
	}
	pa, _ := a.Principal()
	pb, _ := b.Principal()
	if !pa.Equal(pb) {
		t.Fatal("expected identical principals")
	}
}

func TestLogin_HandleWhitespaceIgnored(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, memory.New())

	if ok, err := s.Login(ctx, "   ", credential.DemoSecret); ok || err != nil {
		t.Fatalf("blank handle: ok=%v err=%v", ok, err)
	}
	// The secret is compared verbatim.
	if ok, _ := s.Login(ctx, "admin@hawkly.io", " "+credential.DemoSecret); ok {
		t.Fatal("padded secret must not match")
	}
	if ok, err := s.Login(ctx, " admin@hawkly.io\t", credential.DemoSecret); !ok || err != nil {
		t.Fatalf("padded handle: ok=%v err=%v", ok, err)
	}
	if !s.IsAuthorized(principal.RoleAdmin) {
		t.Fatal("expected admin principal")
	}
}

func TestLogin_StoreFailureIsAtomic(t *testing.T) {
	boom := errors.New("disk full")
	st := &failingStore{Store: memory.New(), failSave: boom}
	s, _ := newTestSession(t, st)

	ok, err := s.Login(context.Background(), "admin@hawkly.io", credential.DemoSecret)
	if ok {
		t.Fatal("expected login to report failure")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatal("principal must not be committed when persistence fails")
	}
}

func TestLogin_DelayHonoursContext(t *testing.T) {
	s, _ := newTestSession(t, memory.New(), WithConfig(Config{LoginDelay: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := s.Login(ctx, "admin@hawkly.io", credential.DemoSecret)
	if ok || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got ok=%v err=%v", ok, err)
	}
	if s.IsAuthenticated() {
		t.Fatal("expected unauthenticated")
	}
}

func TestLogin_ConcurrentCallsSerialize(t *testing.T) {
	s, _ := newTestSession(t, memory.New(), WithConfig(Config{LoginDelay: time.Millisecond}))
	handles := []string{"admin@hawkly.io", "auditor@hawkly.io", "guest@hawkly.io", "project@hawkly.io"}

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			_, _ = s.Login(context.Background(), h, credential.DemoSecret)
		}(h)
	}
	wg.Wait()

	p, ok := s.Principal()
	if !ok {
		t.Fatal("expected a principal")
	}
	// The snapshot always matches the committed principal.
	restored, _ := newTestSession(t, s.store)
	if !restored.Restore(context.Background()) {
		t.Fatal("expected restore")
	}
	rp, _ := restored.Principal()
	if !rp.Equal(p) {
		t.Fatalf("snapshot %s does not match committed %s", rp.ContactHandle, p.ContactHandle)
	}
}

func TestRoleOrSemantics(t *testing.T) {
	s, _ := newTestSession(t, memory.New())
	if s.IsAuthorized(principal.RoleAdmin) {
		t.Fatal("unauthenticated session must not be authorized")
	}

	mustLogin(t, s, "auditor@hawkly.io")
	if !s.IsAuthorized(principal.RoleAdmin, principal.RoleAuditor) {
		t.Fatal("auditor should satisfy admin|auditor")
	}
	if s.IsAuthorized() {
		t.Fatal("empty role list must be false")
	}

	mustLogin(t, s, "project@hawkly.io")
	if s.IsAuthorized(principal.RoleAdmin, principal.RoleAuditor) {
		t.Fatal("projectOwner should not satisfy admin|auditor")
	}
}

func TestHasPermission_Exact(t *testing.T) {
	s, _ := newTestSession(t, memory.New())
	if s.HasPermission("admin.access") {
		t.Fatal("unauthenticated session has no permissions")
	}

	mustLogin(t, s, "admin@hawkly.io")
	if !s.HasPermission("admin.access") {
		t.Fatal("admin should hold admin.access")
	}
	for _, p := range []principal.Permission{"admin", "admin.*", "Admin.Access", "admin.access.extra", "nonexistent.scope"} {
		if s.HasPermission(p) {
			t.Fatalf("unexpected match for %q", p)
		}
	}

	mustLogin(t, s, "guest@hawkly.io")
	if s.HasPermission("admin.access") {
		t.Fatal("guest must not hold admin.access")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s, nav := newTestSession(t, st)
	mustLogin(t, s, "admin@hawkly.io")

	for i := 0; i < 2; i++ {
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
		if s.IsAuthenticated() {
			t.Fatalf("logout %d: expected unauthenticated", i)
		}
	}
	if nav.count() != 2 {
		t.Fatalf("expected a navigation signal per logout, got %d", nav.count())
	}
	r, _ := nav.last()
	if r.To != "/" {
		t.Fatalf("expected landing path, got %q", r.To)
	}
	if _, err := st.LoadSnapshot(ctx, snapshot.DefaultKey); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatal("expected snapshot removed")
	}
}

func TestLogout_StoreFailureStillClearsMemory(t *testing.T) {
	boom := errors.New("unreachable")
	st := &failingStore{Store: memory.New()}
	s, nav := newTestSession(t, st)
	mustLogin(t, s, "admin@hawkly.io")

	st.failDelete = boom
	err := s.Logout(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatal("expected memory cleared")
	}
	if nav.count() != 1 {
		t.Fatal("expected navigation despite store error")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s, _ := newTestSession(t, st)
	mustLogin(t, s, "admin@hawkly.io")
	before, _ := s.Principal()

	// Simulate a restart.
	restarted, _ := newTestSession(t, st)
	if restarted.IsAuthenticated() {
		t.Fatal("new session must start unauthenticated")
	}
	if !restarted.Restore(ctx) {
		t.Fatal("expected restore to succeed")
	}
	after, _ := restarted.Principal()
	if !after.Equal(before) {
		t.Fatalf("principal changed across restart: %+v vs %+v", after, before)
	}
}

func TestRestore_EmptyStore(t *testing.T) {
	s, _ := newTestSession(t, memory.New())
	if s.Restore(context.Background()) {
		t.Fatal("expected nothing to restore")
	}
	if s.IsAuthenticated() {
		t.Fatal("expected unauthenticated")
	}
}

func TestRestore_CorruptSnapshotDiscarded(t *testing.T) {
	ctx := context.Background()
	garbage := [][]byte{
		[]byte("not json"),
		[]byte(`{"id":"x"}`),
		[]byte(`{"id":"x","contact_handle":"a@b","role":"emperor"}`),
		{0xff, 0x00, 0x13},
		{},
	}
	for _, g := range garbage {
		st := memory.New()
		_ = st.SaveSnapshot(ctx, snapshot.DefaultKey, g)
		s, _ := newTestSession(t, st)

		if s.Restore(ctx) {
			t.Fatalf("%q: expected restore to fail", g)
		}
		if s.IsAuthenticated() {
			t.Fatalf("%q: expected unauthenticated", g)
		}
		if _, err := st.LoadSnapshot(ctx, snapshot.DefaultKey); !errors.Is(err, snapshot.ErrNotFound) {
			t.Fatalf("%q: expected corrupt snapshot deleted", g)
		}
	}
}

func TestRestore_TransientReadErrorKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: memory.New()}
	s, _ := newTestSession(t, st)
	mustLogin(t, s, "admin@hawkly.io")

	st.failLoad = errors.New("timeout")
	restarted, _ := newTestSession(t, st)
	if restarted.Restore(ctx) {
		t.Fatal("expected restore to fail")
	}

	st.failLoad = nil
	if !restarted.Restore(ctx) {
		t.Fatal("snapshot should survive a transient read error")
	}
}

func TestRestore_SignedCodecRejectsTampering(t *testing.T) {
	ctx := context.Background()
	codec, err := snapshot.NewSigned([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	st := memory.New()
	s, _ := newTestSession(t, st, WithCodec(codec))
	mustLogin(t, s, "guest@hawkly.io")

	data, _ := st.LoadSnapshot(ctx, snapshot.DefaultKey)
	data[len(data)-2] ^= 0x01
	_ = st.SaveSnapshot(ctx, snapshot.DefaultKey, data)

	restarted, _ := newTestSession(t, st, WithCodec(codec))
	if restarted.Restore(ctx) {
		t.Fatal("tampered snapshot must not restore")
	}
}

func TestSession_CustomSnapshotKey(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	s, _ := newTestSession(t, st, WithConfig(Config{SnapshotKey: "alt"}))
	mustLogin(t, s, "admin@hawkly.io")

	if _, err := st.LoadSnapshot(ctx, "alt"); err != nil {
		t.Fatalf("expected snapshot under custom key: %v", err)
	}
	if _, err := st.LoadSnapshot(ctx, snapshot.DefaultKey); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatal("default key must stay empty")
	}
}

func TestEndToEndAdmin(t *testing.T) {
	s, _ := newTestSession(t, memory.New())
	ok, err := s.Login(context.Background(), "admin@hawkly.io", "password")
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	if !s.IsAuthorized(principal.RoleAdmin) {
		t.Fatal("expected admin authorized")
	}
	if !s.HasPermission("admin.access") {
		t.Fatal("expected admin.access")
	}
	if s.HasPermission("nonexistent.scope") {
		t.Fatal("unexpected nonexistent.scope")
	}
}

func TestPrincipalReturnsCopy(t *testing.T) {
	s, _ := newTestSession(t, memory.New())
	mustLogin(t, s, "guest@hawkly.io")

	p, _ := s.Principal()
	p.Role = principal.RoleAdmin
	p.Permissions.Add("admin.access")

	if s.IsAuthorized(principal.RoleAdmin) || s.HasPermission("admin.access") {
		t.Fatal("mutating the returned principal must not affect the session")
	}
}
