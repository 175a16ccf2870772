package auth

import (
	"context"
	"time"
)

// Role is the capability level stored on a profile.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User is the identity returned by the provider.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Profile is the item stored in the profiles DynamoDB table.
type Profile struct {
	ID        string    `dynamodbav:"id" json:"id"` // PK, equals User.ID
	FullName  string    `dynamodbav:"full_name,omitempty" json:"full_name,omitempty"`
	Role      Role      `dynamodbav:"role" json:"role"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
}

// ProfileState tracks profile loading for the current user.
type ProfileState int

const (
	ProfileNotLoaded ProfileState = iota
	ProfileLoading
	ProfileLoaded
	ProfileFailed
)

func (s ProfileState) String() string {
	switch s {
	case ProfileNotLoaded:
		return "not_loaded"
	case ProfileLoading:
		return "loading"
	case ProfileLoaded:
		return "loaded"
	case ProfileFailed:
		return "failed"
	}
	return "unknown"
}

// Provider is the external identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password, fullName string) (*User, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns (nil, nil) when nobody is signed in.
	CurrentUser(ctx context.Context) (*User, error)
	// Subscribe registers fn for sign-in/sign-out changes. fn receives nil on
	// sign-out and must not be invoked from within Subscribe itself. The
	// returned func removes the subscription.
	Subscribe(fn func(*User)) (unsubscribe func())
}

// ProfileRepository reads and creates profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Create(ctx context.Context, p Profile) error
}
