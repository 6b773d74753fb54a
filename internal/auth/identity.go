package auth

import "context"

// Identity is what an authentication provider vouches for. Only the email
// is used to resolve the application user.
type Identity struct {
	Email    string
	Subject  string
	Provider string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller identity, if the request carried one.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, false
	}
	return id, true
}
