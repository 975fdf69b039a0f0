package core

import "github.com/PaulFidika/linkkit/idtoken"

// Provider ids follow the wire identifiers federated SDKs use, so responses
// round-trip without mapping tables. Any other dotted domain is accepted as a
// generic OAuth provider.
const (
	ProviderGoogle    = "google.com"
	ProviderFacebook  = "facebook.com"
	ProviderTwitter   = "twitter.com"
	ProviderGitHub    = "github.com"
	ProviderMicrosoft = "microsoft.com"
	ProviderApple     = "apple.com"
	ProviderPassword  = "password"
	ProviderPhone     = "phone"
)

// SignInMethodEmailLink is the password-provider variant used by email-link
// sign-in.
const SignInMethodEmailLink = "emailLink"

// IdpResponse is the outcome of one federated provider flow. It is immutable
// once constructed; the credential-for-linking field is only ever populated on
// the copy attached to a reported merge conflict.
type IdpResponse struct {
	provider    string
	email       string
	displayName string
	token       string // primary token; raw ID token for OIDC providers
	secret      string // optional secondary token (e.g. OAuth access token)
	linkCred    *Credential
}

// IdpResponseOption configures a response at construction time.
type IdpResponseOption func(*IdpResponse)

// WithToken sets the primary provider token.
func WithToken(token string) IdpResponseOption {
	return func(r *IdpResponse) { r.token = token }
}

// WithSecret sets the secondary provider token.
func WithSecret(secret string) IdpResponseOption {
	return func(r *IdpResponse) { r.secret = secret }
}

// WithDisplayName sets the user's display name.
func WithDisplayName(name string) IdpResponseOption {
	return func(r *IdpResponse) { r.displayName = name }
}

// NewIdpResponse builds a response for provider. When no email is given and
// the primary token is a parseable ID token, the email claim is used.
func NewIdpResponse(provider, email string, opts ...IdpResponseOption) *IdpResponse {
	r := &IdpResponse{provider: provider, email: email}
	for _, opt := range opts {
		opt(r)
	}
	if r.email == "" && r.token != "" {
		if claims, err := idtoken.Parse(r.token); err == nil {
			r.email = claims.Email
		}
	}
	return r
}

func (r *IdpResponse) Provider() string    { return r.provider }
func (r *IdpResponse) Email() string       { return r.email }
func (r *IdpResponse) DisplayName() string { return r.displayName }
func (r *IdpResponse) Token() string       { return r.token }
func (r *IdpResponse) Secret() string      { return r.secret }

// CredentialForLinking returns the credential the caller must act on to
// resolve a merge conflict. It is only present on responses carried by a
// MergeConflictError.
func (r *IdpResponse) CredentialForLinking() (Credential, bool) {
	if r.linkCred == nil {
		return Credential{}, false
	}
	return *r.linkCred, true
}

// withCredentialForLinking clones r with the conflict credential attached,
// leaving the original untouched.
func (r *IdpResponse) withCredentialForLinking(c Credential) *IdpResponse {
	dup := *r
	dup.linkCred = &c
	return &dup
}

// Credential identifies who vouches for a user, how, and the opaque proof.
// The secret is meaningful only to the identity SDK.
type Credential struct {
	Provider     string
	SignInMethod string
	Secret       string
}

// NewCredential builds a credential for an OAuth/OIDC provider, where the
// sign-in method equals the provider id.
func NewCredential(provider, secret string) Credential {
	return Credential{Provider: provider, SignInMethod: provider, Secret: secret}
}

// DeriveCredential maps a response to the credential proving it. It is pure:
// no I/O, and the same response always derives the same credential. The
// second return is false when the response carries no raw token — generic
// provider flows complete the sign-in themselves and leave nothing to
// re-prove.
func DeriveCredential(r *IdpResponse) (Credential, bool) {
	if r == nil || r.token == "" {
		return Credential{}, false
	}
	secret := r.token
	if r.secret != "" {
		secret = r.token + "\x1f" + r.secret
	}
	return Credential{
		Provider:     r.provider,
		SignInMethod: signInMethod(r),
		Secret:       secret,
	}, true
}

func signInMethod(r *IdpResponse) string {
	if r.provider == ProviderPassword && r.secret == "" && r.token != "" {
		return SignInMethodEmailLink
	}
	return r.provider
}
