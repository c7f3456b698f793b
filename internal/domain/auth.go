package domain

import (
	"context"
	"time"
)

type CredentialKind string

const (
	CredentialUser  CredentialKind = "user"
	CredentialAdmin CredentialKind = "admin"
)

// Credential is the opaque bearer token a caller supplied with an inbound
// request. It lives for the duration of that request only.
type Credential struct {
	Token string
	Kind  CredentialKind
}

// AuthContext is the resolved output of the auth guard: the token usable
// against the upstream agent service plus a reference to the caller identity
// it was derived from. A zero Token means the request proceeds
// unauthenticated (optional-auth routes only).
type AuthContext struct {
	Token   string
	Subject string
	Kind    CredentialKind
}

func (a AuthContext) Authenticated() bool {
	return a.Token != ""
}

// TokenExchanger turns a caller credential into an AuthContext usable
// against the upstream agent service. Implementations must never build an
// AuthContext from an empty credential.
type TokenExchanger interface {
	Exchange(ctx context.Context, cred Credential) (AuthContext, error)
}

// TokenCache stores exchanged tokens keyed by caller identity.
type TokenCache interface {
	Get(ctx context.Context, key string) (AuthContext, bool, error)
	Put(ctx context.Context, key string, value AuthContext, ttl time.Duration) error
}
