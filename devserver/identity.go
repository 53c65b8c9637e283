package devserver

import "context"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// InsertedBy is the "role:email" value stamped on catalog documents.
func (i Identity) InsertedBy() string {
	return i.Role + ":" + i.Email
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
