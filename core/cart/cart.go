package cart

import "time"

type Cart struct {
	UserID    string    `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Item struct {
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// Quantity is a pointer because zero is meaningful here: it removes
// the line.
type ItemUp struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
}

type ItemDelete struct {
	ProductID string `json:"productId" validate:"required"`
}

// priced is a line item joined with the current state of its product.
type priced struct {
	Item
	Title    string  `db:"title"`
	Price    int     `db:"price"`
	ImageURL *string `db:"image_url"`
}

// Line is a line item as the cart renders it, with the product fields
// a client needs to display it.
type Line struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     int     `json:"price"`
	ImageURL  *string `json:"imageUrl"`
	Quantity  int     `json:"quantity"`
}

type View struct {
	Items []Line `json:"items"`
	Total int    `json:"total"`
}

// view computes the total from the items' current prices; it is never
// stored, so it can't go stale.
func view(items []priced) View {
	v := View{Items: make([]Line, 0, len(items))}
	for _, it := range items {
		v.Items = append(v.Items, Line{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
		})
		v.Total += it.Price * it.Quantity
	}
	return v
}
