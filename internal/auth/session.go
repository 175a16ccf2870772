// Package auth keeps the signed-in user and their profile for one client
// session. A Session is constructed explicitly and injected where needed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrProfileNotFound is recorded when the signed-in user has no profile row.
var ErrProfileNotFound = errors.New("profile not found")

// Session is safe for concurrent use. Concurrent LoadProfile calls for the
// same user share one repository read.
type Session struct {
	provider Provider
	profiles ProfileRepository
	logger   *zap.Logger

	group singleflight.Group

	mu          sync.RWMutex
	user        *User
	profile     *Profile
	state       ProfileState
	loadErr     error
	unsubscribe func()
}

func NewSession(provider Provider, profiles ProfileRepository, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		provider: provider,
		profiles: profiles,
		logger:   logger,
	}
}

// Init loads the current user (and their profile) and subscribes to auth
// changes. Calling Init twice is a no-op.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return nil
	}
	s.unsubscribe = s.provider.Subscribe(s.onAuthChange)
	s.mu.Unlock()

	u, err := s.provider.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("current user: %w", err)
	}
	if u == nil {
		return nil
	}
	s.setUser(u)
	_, _ = s.LoadProfile(ctx)
	return nil
}

// Close removes the auth-change subscription.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Session) onAuthChange(u *User) {
	s.setUser(u)
	if u == nil {
		return
	}
	if _, err := s.LoadProfile(context.Background()); err != nil {
		s.logger.Warn("profile reload after auth change failed", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// setUser replaces the user and resets the profile.
func (s *Session) setUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.profile = nil
	s.state = ProfileNotLoaded
	s.loadErr = nil
}

// SignIn authenticates and loads the profile. A profile failure does not
// fail the sign-in; it is visible through ProfileState.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	u, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	s.setUser(u)
	if _, err := s.LoadProfile(ctx); err != nil {
		s.logger.Warn("profile load after sign in failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

// SignUp registers the user and creates a customer profile carrying
// fullName. The session stays signed out until SignIn.
func (s *Session) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	u, err := s.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	err = s.profiles.Create(ctx, Profile{ID: u.ID, FullName: fullName, Role: RoleCustomer})
	if err != nil && !errors.Is(err, ErrProfileExists) {
		return u, fmt.Errorf("create profile: %w", err)
	}
	return u, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.setUser(nil)
	return nil
}

// LoadProfile reads the profile of the current user. Callers racing on the
// same user wait for the same read. A result for a user who is no longer
// signed in is discarded.
func (s *Session) LoadProfile(ctx context.Context) (*Profile, error) {
	s.mu.Lock()
	if s.user == nil {
		s.profile = nil
		s.state = ProfileNotLoaded
		s.mu.Unlock()
		return nil, nil
	}
	userID := s.user.ID
	s.state = ProfileLoading
	s.mu.Unlock()

	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		p, err := s.profiles.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrProfileNotFound
		}
		return p, nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != userID {
		return nil, err
	}
	if err != nil {
		s.profile = nil
		s.state = ProfileFailed
		s.loadErr = err
		return nil, fmt.Errorf("load profile: %w", err)
	}
	s.profile = v.(*Profile)
	s.state = ProfileLoaded
	s.loadErr = nil
	return s.profile, nil
}

// User returns a copy of the signed-in user, nil when signed out.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// CurrentUser reports the signed-in user.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// ProfileState returns the load state and, when Failed, the cause.
func (s *Session) ProfileState() (ProfileState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.loadErr
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) IsAdmin() bool { return s.hasRole(RoleAdmin) }

func (s *Session) IsCustomer() bool { return s.hasRole(RoleCustomer) }

func (s *Session) hasRole(r Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.profile.Role == r
}

// StaticIdentity is a fixed identity, used where the caller was already
// authenticated upstream (e.g. by an API Gateway authorizer).
type StaticIdentity struct {
	User User
}

func (i StaticIdentity) CurrentUser() (User, bool) {
	return i.User, i.User.ID != ""
}
