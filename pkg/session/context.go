package session

import "context"

type contextKey struct{}

// WithContext adds a session context to ctx.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// FromContext retrieves the session context from ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	sc, ok := ctx.Value(contextKey{}).(*Context)
	return sc, ok && sc != nil
}

// MustFromContext retrieves the session context or panics.
func MustFromContext(ctx context.Context) *Context {
	sc, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return sc
}

// UserIDFromContext returns the signed-in user's ID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	sc, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return sc.UserID(), true
}
