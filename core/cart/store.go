package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Ensure creates the user's cart if it doesn't exist yet. It is
// idempotent, so callers don't need to know whether this is the first
// access.
func Ensure(ctx context.Context, db sqlx.ExtContext, userID string, now time.Time) error {
	const q = `
	INSERT INTO carts (user_id, created_at, updated_at)
	VALUES ($1, $2, $2)
	ON CONFLICT (user_id) DO NOTHING`

	if _, err := db.ExecContext(ctx, q, userID, now); err != nil {
		return fmt.Errorf("ensuring cart of user[%s]: %w", userID, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `
	SELECT user_id, created_at, updated_at
	FROM carts
	WHERE user_id = $1`

	var crt Cart
	if err := sqlx.GetContext(ctx, db, &crt, q, userID); err != nil {
		return Cart{}, fmt.Errorf("selecting cart of user[%s]: %w", userID, err)
	}
	return crt, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]priced, error) {
	const q = `
	SELECT ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	       p.title, p.price, p.image_url
	FROM cart_items ci
	JOIN products p ON p.product_id = ci.product_id
	WHERE ci.user_id = $1
	ORDER BY ci.created_at`

	var items []priced
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items of user[%s]: %w", userID, err)
	}
	return items, nil
}

// AddItem inserts a line or adds to the quantity of an existing one.
// The upsert keeps concurrent adds from losing each other's update.
func AddItem(ctx context.Context, db sqlx.ExtContext, item Item) error {
	const q = `
	INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
	VALUES (:user_id, :product_id, :quantity, :created_at, :updated_at)
	ON CONFLICT (user_id, product_id)
	DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, item); err != nil {
		return fmt.Errorf("adding item[%s] to cart of user[%s]: %w", item.ProductID, item.UserID, err)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing line. The count
// is 0 when the line doesn't exist.
func SetQuantity(ctx context.Context, db sqlx.ExtContext, userID string, productID string, quantity int, now time.Time) (int64, error) {
	const q = `
	UPDATE cart_items
	SET quantity = $3, updated_at = $4
	WHERE user_id = $1 AND product_id = $2`

	res, err := db.ExecContext(ctx, q, userID, productID, quantity, now)
	if err != nil {
		return 0, fmt.Errorf("updating item[%s] in cart of user[%s]: %w", productID, userID, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting affected rows: %w", err)
	}
	return count, nil
}

// DeleteItem removes a line, reporting how many rows matched so the
// caller can distinguish a no-op from a real removal.
func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID string, productID string) (int64, error) {
	const q = `
	DELETE FROM cart_items
	WHERE user_id = $1 AND product_id = $2`

	res, err := db.ExecContext(ctx, q, userID, productID)
	if err != nil {
		return 0, fmt.Errorf("deleting item[%s] from cart of user[%s]: %w", productID, userID, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting affected rows: %w", err)
	}
	return count, nil
}

func Clear(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `
	DELETE FROM cart_items
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("clearing cart of user[%s]: %w", userID, err)
	}
	return nil
}
