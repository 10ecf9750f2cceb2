package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/api/weberr"
	"github.com/nexify-market/nexify/core/claims"
	"github.com/nexify-market/nexify/database"
	"github.com/nexify-market/nexify/validate"
)

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding new product: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		now := time.Now().UTC()
		prd := Product{
			ID:          validate.GenerateID(),
			Title:       pn.Title,
			Description: pn.Description,
			Price:       *pn.Price,
			ImageURL:    pn.ImageURL,
			SellerID:    userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, prd); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		lst, err := fetchListed(ctx, db, prd.ID)
		if err != nil {
			return fmt.Errorf("fetching created listing: %w", err)
		}

		return web.Respond(ctx, w, lst.view(nil), http.StatusCreated)
	}
}

// HandleList returns the whole catalog newest-first, with seller and
// comment authors resolved. There is no pagination.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		lsts, err := fetchAllListed(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching listings: %w", err)
		}

		cmts, err := fetchAllComments(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching comments: %w", err)
		}

		byProduct := make(map[string][]CommentView)
		for _, c := range cmts {
			byProduct[c.ProductID] = append(byProduct[c.ProductID], c.view())
		}

		views := make([]View, 0, len(lsts))
		for _, l := range lsts {
			views = append(views, l.view(byProduct[l.ID]))
		}

		return web.Respond(ctx, w, views, http.StatusOK)
	}
}

func HandleBuy(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		// The conditional update is the whole concurrency story: two
		// buyers may both read an unsold product but only one update
		// can match buyer_id IS NULL.
		count, err := SetBuyer(ctx, db, productID, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("buying product[%s]: %w", productID, err)
		}

		if count == 0 {
			if _, err := Fetch(ctx, db, productID); err != nil {
				if errors.Is(err, database.ErrDBNotFound) {
					return weberr.NotFound(err)
				}
				return fmt.Errorf("fetching product[%s]: %w", productID, err)
			}
			return weberr.Conflict(errors.New("already sold"))
		}

		return respondView(ctx, w, db, productID, http.StatusOK)
	}
}

func HandleComment(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		productID := web.Param(r, "id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var cn CommentNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding comment: %w", err))
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if strings.TrimSpace(cn.Text) == "" {
			err := errors.New("comment cannot be empty")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, productID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", productID, err)
		}

		cmt := Comment{
			ID:        validate.GenerateID(),
			ProductID: productID,
			UserID:    &userID,
			Text:      cn.Text,
			CreatedAt: time.Now().UTC(),
		}

		if err := CreateComment(ctx, db, cmt); err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}

		return respondView(ctx, w, db, productID, http.StatusOK)
	}
}

func respondView(ctx context.Context, w http.ResponseWriter, db *sqlx.DB, productID string, status int) error {
	lst, err := fetchListed(ctx, db, productID)
	if err != nil {
		return fmt.Errorf("fetching listing[%s]: %w", productID, err)
	}

	cmts, err := fetchComments(ctx, db, productID)
	if err != nil {
		return fmt.Errorf("fetching comments of listing[%s]: %w", productID, err)
	}

	views := make([]CommentView, 0, len(cmts))
	for _, c := range cmts {
		views = append(views, c.view())
	}

	return web.Respond(ctx, w, lst.view(views), status)
}
