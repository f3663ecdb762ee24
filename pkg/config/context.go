package config

import (
	"context"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	// ResolvedCtxKey is the context key used to store the *Resolved configuration
	ResolvedCtxKey ContextKey = "resolved_config"
)

// ContextWithResolved stores the resolved configuration in the context
func ContextWithResolved(ctx context.Context, r *Resolved) context.Context {
	return context.WithValue(ctx, ResolvedCtxKey, r)
}

// FromContext returns the resolved configuration stored in ctx, or nil.
func FromContext(ctx context.Context) *Resolved {
	if ctx == nil {
		return nil
	}
	if r, ok := ctx.Value(ResolvedCtxKey).(*Resolved); ok {
		return r
	}
	return nil
}
