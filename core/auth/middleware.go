package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/api/weberr"
	"github.com/nexify-market/nexify/core/claims"
)

// Authenticate rejects requests without a valid bearer token and puts
// the token's user id on the context for downstream handlers.
func Authenticate(secret string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			header := r.Header.Get("Authorization")
			if header == "" {
				return weberr.NotAuthorized(errors.New("authorization header missing"))
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return weberr.NotAuthorized(errors.New("authorization header is not a bearer token"))
			}

			userID, err := VerifyToken(secret, parts[1])
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			return handler(claims.Set(ctx, userID), w, r)
		}
		return h
	}
	return m
}
