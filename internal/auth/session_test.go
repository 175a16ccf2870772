package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	current   *User
	signInErr error
	listeners []func(*User)
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	u := &User{ID: "user-" + email, Email: email}
	p.mu.Lock()
	p.current = u
	p.mu.Unlock()
	return u, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	return &User{ID: "user-" + email, Email: email, FullName: fullName}, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	return nil
}

func (p *fakeProvider) CurrentUser(ctx context.Context) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *fakeProvider) Subscribe(fn func(*User)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.listeners = nil
	}
}

func (p *fakeProvider) emit(u *User) {
	p.mu.Lock()
	ls := append([]func(*User){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range ls {
		fn(u)
	}
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]Profile
	err      error
	calls    int32
	started  chan struct{}
	release  chan struct{}
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]Profile{}}
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*Profile, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProfiles) Create(ctx context.Context, p Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.ID]; ok {
		return ErrProfileExists
	}
	f.profiles[p.ID] = p
	return nil
}

func TestSignIn_LoadsProfileAndRole(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-admin@x.com"] = Profile{ID: "user-admin@x.com", Role: RoleAdmin}
	s := NewSession(&fakeProvider{}, profiles, nil)

	assert.False(t, s.IsAuthenticated())
	state, _ := s.ProfileState()
	assert.Equal(t, ProfileNotLoaded, state)

	u, err := s.SignIn(context.Background(), "admin@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", u.Email)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsAdmin())
	assert.False(t, s.IsCustomer())

	state, err = s.ProfileState()
	assert.Equal(t, ProfileLoaded, state)
	assert.NoError(t, err)

	cu, ok := s.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, "user-admin@x.com", cu.ID)
}

func TestSignIn_ProviderError(t *testing.T) {
	s := NewSession(&fakeProvider{signInErr: errors.New("invalid credentials")}, newFakeProfiles(), nil)
	_, err := s.SignIn(context.Background(), "a@x.com", "bad")
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestLoadProfile_FailedState(t *testing.T) {
	s := NewSession(&fakeProvider{}, newFakeProfiles(), nil)
	_, err := s.SignIn(context.Background(), "nobody@x.com", "pw")
	require.NoError(t, err, "profile failure does not fail sign in")

	state, loadErr := s.ProfileState()
	assert.Equal(t, ProfileFailed, state)
	assert.ErrorIs(t, loadErr, ErrProfileNotFound)
	assert.False(t, s.IsAdmin())
	assert.False(t, s.IsCustomer())
}

func TestLoadProfile_SignedOut(t *testing.T) {
	s := NewSession(&fakeProvider{}, newFakeProfiles(), nil)
	p, err := s.LoadProfile(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestLoadProfile_ConcurrentCallersShareOneRead(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-c@x.com"] = Profile{ID: "user-c@x.com", Role: RoleCustomer}
	s := NewSession(&fakeProvider{}, profiles, nil)
	s.setUser(&User{ID: "user-c@x.com", Email: "c@x.com"})

	profiles.started = make(chan struct{})
	profiles.release = make(chan struct{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Profile, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.LoadProfile(context.Background())
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	<-profiles.started
	state, _ := s.ProfileState()
	assert.Equal(t, ProfileLoading, state)
	time.Sleep(100 * time.Millisecond)
	close(profiles.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&profiles.calls))
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, RoleCustomer, p.Role)
	}
	assert.True(t, s.IsCustomer())
}

func TestAuthChange_ResetsAndReloadsProfile(t *testing.T) {
	provider := &fakeProvider{current: &User{ID: "user-a", Email: "a@x.com"}}
	profiles := newFakeProfiles()
	profiles.profiles["user-a"] = Profile{ID: "user-a", Role: RoleCustomer}
	profiles.profiles["user-b"] = Profile{ID: "user-b", Role: RoleAdmin}

	s := NewSession(provider, profiles, nil)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))
	defer s.Close()
	assert.True(t, s.IsCustomer())

	provider.emit(&User{ID: "user-b", Email: "b@x.com"})
	assert.True(t, s.IsAdmin())
	assert.Equal(t, "b@x.com", s.User().Email)

	provider.emit(nil)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Profile())
	state, _ := s.ProfileState()
	assert.Equal(t, ProfileNotLoaded, state)
}

func TestSignUp_CreatesCustomerProfile(t *testing.T) {
	profiles := newFakeProfiles()
	s := NewSession(&fakeProvider{}, profiles, nil)

	u, err := s.SignUp(context.Background(), "new@x.com", "pw", "Juan Pérez")
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())

	p := profiles.profiles[u.ID]
	assert.Equal(t, RoleCustomer, p.Role)
	assert.Equal(t, "Juan Pérez", p.FullName)

	_, err = s.SignUp(context.Background(), "new@x.com", "pw", "Juan Pérez")
	assert.NoError(t, err, "existing profile is kept")
}

func TestSignOut(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["user-a@x.com"] = Profile{ID: "user-a@x.com", Role: RoleCustomer}
	s := NewSession(&fakeProvider{}, profiles, nil)
	_, err := s.SignIn(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsCustomer())
	_, ok := s.CurrentUser()
	assert.False(t, ok)
}

func TestStaticIdentity(t *testing.T) {
	_, ok := StaticIdentity{}.CurrentUser()
	assert.False(t, ok)

	u, ok := StaticIdentity{User: User{ID: "u1", Email: "u@x.com"}}.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, "u1", u.ID)
}

func TestProfileStateString(t *testing.T) {
	assert.Equal(t, "loading", ProfileLoading.String())
	assert.Equal(t, "failed", ProfileFailed.String())
	assert.Equal(t, "unknown", ProfileState(42).String())
}
