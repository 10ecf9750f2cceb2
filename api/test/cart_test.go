package test

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nexify-market/nexify/core/cart"
	"github.com/nexify-market/nexify/core/product"
)

func TestCart(t *testing.T) {
	env, err := NewTestEnv(t, "cart_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	alice, _ := env.Register(t, "Alice")
	bob, _ := env.Register(t, "Bob")

	phone := createListing(t, env, alice.Token, product.ProductNew{Title: "Phone", Price: intptr(100)})

	var v cart.View

	t.Run("cart is created lazily and starts empty", func(t *testing.T) {
		env.Do(t, http.MethodGet, "/cart", bob.Token, nil, http.StatusOK, &v)
		want := cart.View{Items: []cart.Line{}, Total: 0}
		if diff := cmp.Diff(want, v); diff != "" {
			t.Fatalf("unexpected empty cart (-want +got):\n%s", diff)
		}
	})

	t.Run("add validation", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: phone.ID, Quantity: 0}, http.StatusBadRequest, nil)
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: phone.ID, Quantity: -2}, http.StatusBadRequest, nil)
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: "not-a-uuid", Quantity: 1}, http.StatusBadRequest, nil)
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", Quantity: 1}, http.StatusNotFound, nil)
	})

	t.Run("remove and update reject malformed product ids", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/cart/remove", bob.Token,
			cart.ItemDelete{ProductID: "not-a-uuid"}, http.StatusBadRequest, nil)
		env.Do(t, http.MethodPost, "/cart/update", bob.Token,
			cart.ItemUp{ProductID: "not-a-uuid", Quantity: intptr(1)}, http.StatusBadRequest, nil)
	})

	t.Run("add accumulates into one line", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: phone.ID, Quantity: 2}, http.StatusOK, &v)
		if v.Total != 200 {
			t.Fatalf("expected total 200, got %d", v.Total)
		}

		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: phone.ID, Quantity: 1}, http.StatusOK, &v)

		if len(v.Items) != 1 {
			t.Fatalf("expected one line for the same product, got %d", len(v.Items))
		}
		if v.Items[0].Quantity != 3 || v.Total != 300 {
			t.Fatalf("expected quantity 3 and total 300, got %d and %d", v.Items[0].Quantity, v.Total)
		}
	})

	t.Run("update overwrites, zero removes", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/cart/update", bob.Token,
			cart.ItemUp{ProductID: phone.ID, Quantity: intptr(2)}, http.StatusOK, &v)
		if v.Items[0].Quantity != 2 || v.Total != 200 {
			t.Fatalf("expected quantity 2 and total 200, got %d and %d", v.Items[0].Quantity, v.Total)
		}

		env.Do(t, http.MethodPost, "/cart/update", bob.Token,
			cart.ItemUp{ProductID: phone.ID, Quantity: intptr(0)}, http.StatusOK, &v)
		if len(v.Items) != 0 || v.Total != 0 {
			t.Fatalf("expected the line removed, got %+v", v)
		}

		// The line is gone, so another update can't find it.
		env.Do(t, http.MethodPost, "/cart/update", bob.Token,
			cart.ItemUp{ProductID: phone.ID, Quantity: intptr(1)}, http.StatusNotFound, nil)

		// But removing an absent line is still a success.
		env.Do(t, http.MethodPost, "/cart/remove", bob.Token,
			cart.ItemDelete{ProductID: phone.ID}, http.StatusOK, &v)
	})

	t.Run("checkout", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/cart/checkout", bob.Token, nil, http.StatusBadRequest, nil)

		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: phone.ID, Quantity: 2}, http.StatusOK, &v)
		if v.Total != 200 {
			t.Fatalf("expected total 200, got %d", v.Total)
		}

		var out cart.CheckoutResponse
		env.Do(t, http.MethodPost, "/cart/checkout", bob.Token, nil, http.StatusOK, &out)
		if len(out.Cart.Items) != 0 {
			t.Fatalf("expected an empty cart after checkout, got %+v", out.Cart)
		}

		env.Do(t, http.MethodGet, "/cart", bob.Token, nil, http.StatusOK, &v)
		if len(v.Items) != 0 {
			t.Fatalf("expected the cart to stay empty, got %+v", v)
		}

		var views []product.View
		env.Do(t, http.MethodGet, "/products", "", nil, http.StatusOK, &views)
		for _, lv := range views {
			if lv.ID == phone.ID && (lv.BuyerID == nil || *lv.BuyerID != bob.User.ID) {
				t.Fatalf("expected Bob as buyer, got %v", lv.BuyerID)
			}
		}
	})

	t.Run("checkout skips items sold in the meantime", func(t *testing.T) {
		carol, _ := env.Register(t, "Carol")

		desk := createListing(t, env, alice.Token, product.ProductNew{Title: "Desk", Price: intptr(40)})

		// Both Bob and Carol want the desk; a sold product can still
		// sit in a cart.
		env.Do(t, http.MethodPost, "/cart/add", bob.Token,
			cart.ItemNew{ProductID: desk.ID, Quantity: 1}, http.StatusOK, nil)
		env.Do(t, http.MethodPost, "/cart/add", carol.Token,
			cart.ItemNew{ProductID: desk.ID, Quantity: 1}, http.StatusOK, nil)

		env.Do(t, http.MethodPost, "/cart/checkout", bob.Token, nil, http.StatusOK, nil)

		// Carol's checkout still succeeds and empties her cart, but
		// the desk keeps its first buyer.
		var out cart.CheckoutResponse
		env.Do(t, http.MethodPost, "/cart/checkout", carol.Token, nil, http.StatusOK, &out)
		if len(out.Cart.Items) != 0 {
			t.Fatalf("expected Carol's cart to empty, got %+v", out.Cart)
		}

		var views []product.View
		env.Do(t, http.MethodGet, "/products", "", nil, http.StatusOK, &views)
		for _, lv := range views {
			if lv.ID == desk.ID && (lv.BuyerID == nil || *lv.BuyerID != bob.User.ID) {
				t.Fatalf("expected the desk to keep Bob as buyer, got %v", lv.BuyerID)
			}
		}
	})
}
