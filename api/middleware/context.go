package middleware

import (
	"context"

	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/consent"
)

type contextKey string

const (
	ctxCartID  contextKey = "cart_id"
	ctxMirror  contextKey = "cart_mirror"
	ctxConsent contextKey = "consent"
	ctxAdmin   contextKey = "admin_username"
)

func CartIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartID).(string); ok {
		return v
	}
	return ""
}

// MirrorFromContext returns the cookie mirror bound to the request, or nil.
func MirrorFromContext(ctx context.Context) cart.Mirror {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxMirror).(cart.Mirror); ok {
		return v
	}
	return nil
}

func ConsentFromContext(ctx context.Context) consent.Preferences {
	if ctx == nil {
		return consent.Undecided()
	}
	if v, ok := ctx.Value(ctxConsent).(consent.Preferences); ok {
		return v
	}
	return consent.Undecided()
}

func AdminFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdmin).(string); ok {
		return v
	}
	return ""
}

// WithCartID injects the cart identifier into the context.
func WithCartID(ctx context.Context, cartID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartID, cartID)
}
