package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/database"
)

// HandleHealth reports whether the API and its database are up.
func HandleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return fmt.Errorf("database is not ready: %w", err)
		}

		status := struct {
			OK  bool   `json:"ok"`
			Msg string `json:"msg"`
		}{
			OK:  true,
			Msg: "Nexify API",
		}
		return web.Respond(ctx, w, status, http.StatusOK)
	}
}
