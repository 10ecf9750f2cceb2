package product

import "time"

type Product struct {
	ID          string    `json:"id" db:"product_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       int       `json:"price" db:"price"`
	ImageURL    *string   `json:"imageUrl" db:"image_url"`
	SellerID    string    `json:"sellerId" db:"seller_id"`
	BuyerID     *string   `json:"buyerId" db:"buyer_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Price is a pointer so that a free listing (price 0) can be told
// apart from a missing price.
type ProductNew struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       *int    `json:"price" validate:"required,gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

type Comment struct {
	ID        string    `json:"id" db:"comment_id"`
	ProductID string    `json:"-" db:"product_id"`
	UserID    *string   `json:"-" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CommentNew struct {
	Text string `json:"text" validate:"required"`
}

// Author is the resolved identity shown next to a listing or comment.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// listed is the product row joined with its seller's identity.
type listed struct {
	Product
	SellerName  *string `db:"seller_name"`
	SellerEmail *string `db:"seller_email"`
}

// commented is the comment row joined with its author's identity. The
// author columns are nullable because deleting an account keeps the
// comment text around.
type commented struct {
	Comment
	AuthorName  *string `db:"author_name"`
	AuthorEmail *string `db:"author_email"`
}

type CommentView struct {
	Comment
	User *Author `json:"user"`
}

// View is a listing as the catalog renders it: the product itself
// plus denormalized seller and comment authors.
type View struct {
	Product
	Seller   *Author       `json:"seller"`
	Comments []CommentView `json:"comments"`
}

func (l listed) view(comments []CommentView) View {
	v := View{Product: l.Product, Comments: comments}
	if v.Comments == nil {
		v.Comments = []CommentView{}
	}
	if l.SellerName != nil && l.SellerEmail != nil {
		v.Seller = &Author{ID: l.SellerID, Name: *l.SellerName, Email: *l.SellerEmail}
	}
	return v
}

func (c commented) view() CommentView {
	v := CommentView{Comment: c.Comment}
	if c.UserID != nil && c.AuthorName != nil && c.AuthorEmail != nil {
		v.User = &Author{ID: *c.UserID, Name: *c.AuthorName, Email: *c.AuthorEmail}
	}
	return v
}
