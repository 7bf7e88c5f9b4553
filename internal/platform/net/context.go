// Package net keeps request scoped identity on the context and renders reply envelopes
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey uint8

const (
	userKey ctxKey = iota + 1
	credentialKey
)

// WithRequest stores reqID where chi's RequestID middleware keeps it, so both
// RequestID and chimw.GetReqID see it
func WithRequest(ctx context.Context, reqID string) context.Context {
	return withString(ctx, chimw.RequestIDKey, reqID)
}

// WithUser records the authenticated caller
func WithUser(ctx context.Context, userID string) context.Context {
	return withString(ctx, userKey, userID)
}

// WithCredential keeps the caller's raw bearer token for forwarding downstream
func WithCredential(ctx context.Context, raw string) context.Context {
	return withString(ctx, credentialKey, raw)
}

func RequestID(ctx context.Context) string  { return chimw.GetReqID(ctx) }
func UserID(ctx context.Context) string     { return stringOf(ctx, userKey) }
func Credential(ctx context.Context) string { return stringOf(ctx, credentialKey) }

// withString leaves ctx alone for an empty v
func withString(ctx context.Context, key any, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringOf(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
