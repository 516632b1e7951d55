package identity

import "context"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int
	Username string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller's identity, if the request carried a valid
// token.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's user id or 0 for anonymous callers.
func UserID(ctx context.Context) int {
	id, _ := FromContext(ctx)
	return id.UserID
}
