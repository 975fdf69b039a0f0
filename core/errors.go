package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCurrentUser is reported by the direct-link path when no user is
	// signed in on the primary session.
	ErrNoCurrentUser = errors.New("no current user")

	// ErrNoScratchSession means the handler needed the scratch session but no
	// factory was configured.
	ErrNoScratchSession = errors.New("no scratch session configured")

	// ErrNoCredential means the response carries no token to derive a
	// credential from and nothing was queued to link.
	ErrNoCredential = errors.New("response carries no credential")

	ErrNoProviders     = errors.New("no providers requested")
	ErrUnknownProvider = errors.New("unknown provider")
)

// MergeConflictError reports that completing the flow would require
// discarding the anonymous session's data: the target account already exists
// under another provider. The carried response has its credential-for-linking
// populated with the exact credential the caller must act on — either finish
// the merge with it (accepting the data loss) or abandon the upgrade.
type MergeConflictError struct {
	Response *IdpResponse
}

func (e *MergeConflictError) Error() string {
	cred, _ := e.Response.CredentialForLinking()
	return fmt.Sprintf("account merge required for %s: resolve with the %s credential",
		e.Response.Email(), cred.Provider)
}

// AsMergeConflict extracts a merge conflict from an error chain.
func AsMergeConflict(err error) (*MergeConflictError, bool) {
	var mc *MergeConflictError
	if errors.As(err, &mc) {
		return mc, true
	}
	return nil, false
}
