package core

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// attemptState tracks one StartSignIn resolution through its lifecycle. The
// sign-in step, when present, always completes before the link step is
// issued, and the terminal emission always follows the last step.
type attemptState int

const (
	attemptInit attemptState = iota
	attemptPendingEmitted
	attemptSigningIn
	attemptLinking
	attemptDone
)

// LinkingHandler resolves the collision between a fresh federated sign-in and
// an existing account that uses a different provider for the same verified
// email. It proves ownership of the existing account, links the new
// credential to it, and — when the current session is an anonymous identity
// being upgraded — reports a merge conflict instead of silently discarding
// the anonymous session's data.
//
// The host application drives it through StartSignIn and observes progress
// through Operation: every attempt emits exactly one pending status followed
// by exactly one terminal status.
type LinkingHandler struct {
	cfg     FlowConfig
	auth    AuthClient
	scratch *ScratchSessions
	op      *Observable[*IdpResponse]

	mu     sync.Mutex
	queued *queuedCredential
}

// queuedCredential is the handler state set by
// SetRequestedSignInCredentialForEmail, consumed by the next StartSignIn.
type queuedCredential struct {
	cred  Credential
	email string
}

// NewLinkingHandler builds a handler over the primary session. scratch may be
// nil when anonymous upgrade is disabled; with upgrade enabled, different-
// provider flows need it and fail with ErrNoScratchSession otherwise.
func NewLinkingHandler(cfg FlowConfig, auth AuthClient, scratch *ScratchSessions) *LinkingHandler {
	return &LinkingHandler{
		cfg:     cfg.Normalize(),
		auth:    auth,
		scratch: scratch,
		op:      NewObservable[*IdpResponse](),
	}
}

// Operation exposes the handler's status stream.
func (h *LinkingHandler) Operation() *Observable[*IdpResponse] { return h.op }

// Config returns the normalized flow configuration.
func (h *LinkingHandler) Config() FlowConfig { return h.cfg }

// SetRequestedSignInCredentialForEmail queues the credential the existing
// account should end up linked to. The next StartSignIn consumes it: its
// response then acts as proof of ownership for the account identified by
// email, and the queued credential is what gets linked.
func (h *LinkingHandler) SetRequestedSignInCredentialForEmail(cred Credential, email string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queued = &queuedCredential{cred: cred, email: email}
}

func (h *LinkingHandler) takeQueued() *queuedCredential {
	h.mu.Lock()
	defer h.mu.Unlock()
	q := h.queued
	h.queued = nil
	return q
}

// StartSignIn resolves resp. A pending status is emitted synchronously before
// this method returns; the terminal status follows once the required provider
// calls (at most one sign-in and one link, in that order) have finished.
// Provider errors surface unmodified; the anonymous-upgrade paths convert an
// otherwise complete sequence into a *MergeConflictError for caller-driven
// resolution.
//
// Attempts are independent: a second StartSignIn neither cancels nor
// supersedes one still in flight, and each attempt keeps the one-pending,
// one-terminal contract on the shared stream. Callers that need
// one-at-a-time semantics serialize their calls.
func (h *LinkingHandler) StartSignIn(ctx context.Context, resp *IdpResponse) {
	a := &attempt{
		id:     uuid.NewString(),
		h:      h,
		resp:   resp,
		queued: h.takeQueued(),
	}
	a.emitPending()
	go a.run(ctx)
}

// attempt is one StartSignIn resolution.
type attempt struct {
	id     string
	h      *LinkingHandler
	state  attemptState
	resp   *IdpResponse
	queued *queuedCredential
}

func (a *attempt) emitPending() {
	a.state = attemptPendingEmitted
	a.h.op.Publish(Pending[*IdpResponse]())
}

func (a *attempt) finishSuccess() {
	a.state = attemptDone
	a.h.op.Publish(Success(a.resp))
}

func (a *attempt) finishFailure(err error) {
	a.state = attemptDone
	a.h.op.Publish(Failure[*IdpResponse](err))
}

func (a *attempt) run(ctx context.Context) {
	cred, ok := DeriveCredential(a.resp)
	switch {
	case a.queued == nil:
		a.resolveOwnProvider(ctx, cred, ok)
	case !ok:
		// Nothing to re-prove: the response's own flow already signed the
		// user in, so the queued credential links directly.
		a.linkCurrentUser(ctx)
	default:
		a.resolveQueued(ctx, cred)
	}
}

// upgradingAnonymous reports whether this attempt runs under anonymous
// upgrade with an anonymous current user on the primary session.
func (a *attempt) upgradingAnonymous() bool {
	if !a.h.cfg.EnableAnonymousUpgrade {
		return false
	}
	u, ok := a.h.auth.CurrentUser()
	return ok && u.IsAnonymous()
}

// resolveOwnProvider handles responses whose own provider proves ownership
// (nothing queued to link).
func (a *attempt) resolveOwnProvider(ctx context.Context, cred Credential, ok bool) {
	if !ok {
		a.finishFailure(ErrNoCredential)
		return
	}
	if a.upgradingAnonymous() {
		// The target account already uses this provider, so a plain sign-in
		// cannot both keep the anonymous session and claim the account. The
		// conflict is knowable without a provider round trip; report it with
		// the derived credential so the caller can resolve the merge.
		a.finishFailure(&MergeConflictError{Response: a.resp.withCredentialForLinking(cred)})
		return
	}
	a.state = attemptSigningIn
	if _, err := a.h.auth.SignIn(ctx, cred); err != nil {
		a.finishFailure(err)
		return
	}
	a.finishSuccess()
}

// linkCurrentUser links the queued credential onto the primary session's
// current user without a separate ownership-proof step.
func (a *attempt) linkCurrentUser(ctx context.Context) {
	user, ok := a.h.auth.CurrentUser()
	if !ok {
		a.finishFailure(ErrNoCurrentUser)
		return
	}
	a.state = attemptLinking
	if _, err := user.Link(ctx, a.queued.cred); err != nil {
		a.finishFailure(err)
		return
	}
	a.finishSuccess()
}

// resolveQueued proves ownership by signing in with the response's own
// credential, then links the queued one. Under anonymous upgrade the proof
// runs on the scratch session so the primary session's anonymous state
// survives, and the merge conflict is reported only once the link is known to
// work: an unlinkable credential is a plain error, not a mergeable conflict.
func (a *attempt) resolveQueued(ctx context.Context, cred Credential) {
	if a.upgradingAnonymous() {
		scratch, err := a.h.scratchClient()
		if err != nil {
			log.Printf("linkkit: attempt %s: scratch session unavailable: %v", a.id, err)
			a.finishFailure(err)
			return
		}
		a.state = attemptSigningIn
		user, err := scratch.SignIn(ctx, cred)
		if err != nil {
			a.finishFailure(err)
			return
		}
		a.state = attemptLinking
		if _, err := user.Link(ctx, a.queued.cred); err != nil {
			a.finishFailure(err)
			return
		}
		a.finishFailure(&MergeConflictError{Response: a.resp.withCredentialForLinking(a.queued.cred)})
		return
	}

	a.state = attemptSigningIn
	user, err := a.h.auth.SignIn(ctx, cred)
	if err != nil {
		a.finishFailure(err)
		return
	}
	a.state = attemptLinking
	if _, err := user.Link(ctx, a.queued.cred); err != nil {
		a.finishFailure(err)
		return
	}
	a.finishSuccess()
}

func (h *LinkingHandler) scratchClient() (AuthClient, error) {
	if h.scratch == nil {
		return nil, ErrNoScratchSession
	}
	return h.scratch.Client()
}
