package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/api/weberr"
	"github.com/nexify-market/nexify/core/claims"
	"github.com/nexify-market/nexify/core/product"
	"github.com/nexify-market/nexify/database"
	"github.com/nexify-market/nexify/validate"
)

type CheckoutResponse struct {
	Msg  string `json:"msg"`
	Cart View   `json:"cart"`
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		if err := Ensure(ctx, db, userID, time.Now().UTC()); err != nil {
			return fmt.Errorf("ensuring cart: %w", err)
		}

		return respondView(ctx, w, db, userID)
	}
}

func HandleAdd(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding new item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := validate.CheckID(in.ProductID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := product.Fetch(ctx, db, in.ProductID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", in.ProductID, err)
		}

		now := time.Now().UTC()
		if err := Ensure(ctx, db, userID, now); err != nil {
			return fmt.Errorf("ensuring cart: %w", err)
		}

		item := Item{
			UserID:    userID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := AddItem(ctx, db, item); err != nil {
			return fmt.Errorf("adding item: %w", err)
		}

		return respondView(ctx, w, db, userID)
	}
}

// HandleRemove deletes a line item. Removing a product that isn't in
// the cart succeeds; only a missing cart is an error.
func HandleRemove(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var in ItemDelete
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding item removal: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := validate.CheckID(in.ProductID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, userID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		if _, err := DeleteItem(ctx, db, userID, in.ProductID); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}

		return respondView(ctx, w, db, userID)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var in ItemUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding item update: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := validate.CheckID(in.ProductID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, userID); err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		var count int64
		if *in.Quantity <= 0 {
			count, err = DeleteItem(ctx, db, userID, in.ProductID)
		} else {
			count, err = SetQuantity(ctx, db, userID, in.ProductID, *in.Quantity, time.Now().UTC())
		}
		if err != nil {
			return fmt.Errorf("updating item: %w", err)
		}

		if count == 0 {
			return weberr.NotFound(errors.New("item not in cart"))
		}

		return respondView(ctx, w, db, userID)
	}
}

// HandleCheckout marks every unsold product in the cart as bought by
// the caller, then empties the cart. Items sold to someone else in
// the meantime are skipped, not reported: the cart empties either
// way.
func HandleCheckout(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			items, err := FetchItems(ctx, tx, userID)
			if err != nil {
				return fmt.Errorf("fetching cart items: %w", err)
			}

			if len(items) == 0 {
				err := errors.New("cart is empty")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}

			now := time.Now().UTC()
			for _, it := range items {
				if _, err := product.SetBuyer(ctx, tx, it.ProductID, userID, now); err != nil {
					return fmt.Errorf("marking product[%s] sold: %w", it.ProductID, err)
				}
			}

			if err := Clear(ctx, tx, userID); err != nil {
				return fmt.Errorf("clearing cart: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		resp := CheckoutResponse{
			Msg:  "checkout successful",
			Cart: View{Items: []Line{}},
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func respondView(ctx context.Context, w http.ResponseWriter, db *sqlx.DB, userID string) error {
	items, err := FetchItems(ctx, db, userID)
	if err != nil {
		return fmt.Errorf("fetching cart items: %w", err)
	}
	return web.Respond(ctx, w, view(items), http.StatusOK)
}
