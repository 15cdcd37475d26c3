package auth

import (
	"context"

	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

const notAvailableMessage = "customer accounts are not available yet, please check out as a guest"

// Credentials is the customer sign-in or sign-up form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// User is a signed-in customer.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Service is the customer account boundary. Checkout never depends on it.
type Service interface {
	SignIn(ctx context.Context, creds Credentials) (*User, error)
	SignUp(ctx context.Context, creds Credentials) (*User, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
}

// Unavailable answers NOT_AVAILABLE to every call.
type Unavailable struct{}

// NewUnavailable returns the guest-only account boundary.
func NewUnavailable() Service { return Unavailable{} }

func (Unavailable) SignIn(context.Context, Credentials) (*User, error) { return nil, notAvailable() }
func (Unavailable) SignUp(context.Context, Credentials) (*User, error) { return nil, notAvailable() }
func (Unavailable) SignOut(context.Context) error                      { return notAvailable() }
func (Unavailable) CurrentUser(context.Context) (*User, error)         { return nil, notAvailable() }

func notAvailable() error {
	return pkgerrors.New(pkgerrors.CodeNotAvailable, notAvailableMessage)
}
