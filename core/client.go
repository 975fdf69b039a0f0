package core

import "context"

// AuthClient is one authentication session of the wrapped identity SDK. The
// handler consumes it as an opaque boundary: network behavior, token caching
// and retries all live behind it.
//
// A process normally holds one primary client (whose current user may be
// anonymous) plus, when needed, the disposable scratch client owned by
// ScratchSessions.
type AuthClient interface {
	// SignIn exchanges a provider credential for a signed-in user on this
	// session, replacing the session's current user on success.
	SignIn(ctx context.Context, cred Credential) (User, error)

	// CurrentUser reports the session's current user, if any.
	CurrentUser() (User, bool)
}

// User is a handle on a signed-in identity within one session.
type User interface {
	UID() string

	// IsAnonymous reports whether this is a guest identity that has not yet
	// been upgraded with a real credential.
	IsAnonymous() bool

	// Link attaches cred to this user's account and returns the updated user.
	Link(ctx context.Context, cred Credential) (User, error)
}
