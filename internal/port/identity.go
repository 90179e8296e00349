package port

import (
	"context"
	"errors"

	"github.com/thriftline/marketplace/internal/domain"
)

// ErrNotSignedIn is a valid state, not a failure: there is simply no session.
var ErrNotSignedIn = errors.New("not signed in")

// Identity is the external auth collaborator: an opaque user id plus email
// for the current session, with a subscribe-for-changes interface.
type Identity interface {
	Current(ctx context.Context) (domain.User, error)

	// OnChange fires with the new user on sign-in and a zero User on
	// sign-out. Returns an explicit unsubscribe func.
	OnChange(fn func(domain.User)) func()
}
