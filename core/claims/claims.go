// Package claims carries the authenticated user's identity through
// the request context. It sits below every other core package so the
// auth handlers can depend on domain packages without a cycle.
package claims

import (
	"context"
	"errors"
)

type ctxKey int

const userKey ctxKey = 1

func Set(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// Get returns the authenticated user id, failing if the request never
// passed through the authentication middleware.
func Get(ctx context.Context) (string, error) {
	v, ok := ctx.Value(userKey).(string)
	if !ok || v == "" {
		return "", errors.New("user id missing from context")
	}
	return v, nil
}
