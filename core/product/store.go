package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, prd Product) error {
	const q = `
	INSERT INTO products (product_id, title, description, price, image_url, seller_id, buyer_id, created_at, updated_at)
	VALUES (:product_id, :title, :description, :price, :image_url, :seller_id, :buyer_id, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prd); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `
	SELECT product_id, title, description, price, image_url, seller_id, buyer_id, created_at, updated_at
	FROM products
	WHERE product_id = $1`

	var prd Product
	if err := sqlx.GetContext(ctx, db, &prd, q, id); err != nil {
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}
	return prd, nil
}

func fetchListed(ctx context.Context, db sqlx.ExtContext, id string) (listed, error) {
	const q = `
	SELECT p.product_id, p.title, p.description, p.price, p.image_url, p.seller_id, p.buyer_id, p.created_at, p.updated_at,
	       u.name AS seller_name, u.email AS seller_email
	FROM products p
	LEFT JOIN users u ON u.user_id = p.seller_id
	WHERE p.product_id = $1`

	var lst listed
	if err := sqlx.GetContext(ctx, db, &lst, q, id); err != nil {
		return listed{}, fmt.Errorf("selecting listing[%s]: %w", id, err)
	}
	return lst, nil
}

func fetchAllListed(ctx context.Context, db sqlx.ExtContext) ([]listed, error) {
	const q = `
	SELECT p.product_id, p.title, p.description, p.price, p.image_url, p.seller_id, p.buyer_id, p.created_at, p.updated_at,
	       u.name AS seller_name, u.email AS seller_email
	FROM products p
	LEFT JOIN users u ON u.user_id = p.seller_id
	ORDER BY p.created_at DESC`

	var lst []listed
	if err := sqlx.SelectContext(ctx, db, &lst, q); err != nil {
		return nil, fmt.Errorf("selecting listings: %w", err)
	}
	return lst, nil
}

// SetBuyer marks a product sold to buyerID only if nobody bought it
// first. The returned count is 0 when the product is missing or the
// buyer was already set; the caller decides which one it was.
func SetBuyer(ctx context.Context, db sqlx.ExtContext, productID string, buyerID string, now time.Time) (int64, error) {
	const q = `
	UPDATE products
	SET buyer_id = $2, updated_at = $3
	WHERE product_id = $1 AND buyer_id IS NULL`

	res, err := db.ExecContext(ctx, q, productID, buyerID, now)
	if err != nil {
		return 0, fmt.Errorf("marking product[%s] sold: %w", productID, err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting affected rows: %w", err)
	}
	return count, nil
}

func CreateComment(ctx context.Context, db sqlx.ExtContext, cmt Comment) error {
	const q = `
	INSERT INTO comments (comment_id, product_id, user_id, text, created_at)
	VALUES (:comment_id, :product_id, :user_id, :text, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, cmt); err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func fetchComments(ctx context.Context, db sqlx.ExtContext, productID string) ([]commented, error) {
	const q = `
	SELECT c.comment_id, c.product_id, c.user_id, c.text, c.created_at,
	       u.name AS author_name, u.email AS author_email
	FROM comments c
	LEFT JOIN users u ON u.user_id = c.user_id
	WHERE c.product_id = $1
	ORDER BY c.created_at`

	var cmts []commented
	if err := sqlx.SelectContext(ctx, db, &cmts, q, productID); err != nil {
		return nil, fmt.Errorf("selecting comments of product[%s]: %w", productID, err)
	}
	return cmts, nil
}

func fetchAllComments(ctx context.Context, db sqlx.ExtContext) ([]commented, error) {
	const q = `
	SELECT c.comment_id, c.product_id, c.user_id, c.text, c.created_at,
	       u.name AS author_name, u.email AS author_email
	FROM comments c
	LEFT JOIN users u ON u.user_id = c.user_id
	ORDER BY c.created_at`

	var cmts []commented
	if err := sqlx.SelectContext(ctx, db, &cmts, q); err != nil {
		return nil, fmt.Errorf("selecting comments: %w", err)
	}
	return cmts, nil
}

func DeleteBySeller(ctx context.Context, db sqlx.ExtContext, sellerID string) error {
	const q = `
	DELETE FROM products
	WHERE seller_id = $1`

	if _, err := db.ExecContext(ctx, q, sellerID); err != nil {
		return fmt.Errorf("deleting products of seller[%s]: %w", sellerID, err)
	}
	return nil
}
