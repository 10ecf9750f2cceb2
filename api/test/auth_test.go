package test

import (
	"net/http"
	"testing"

	"github.com/nexify-market/nexify/core/auth"
	"github.com/nexify-market/nexify/core/user"
)

func TestAuth(t *testing.T) {
	env, err := NewTestEnv(t, "auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	alice, alicePass := env.Register(t, "Alice")

	t.Run("register validation", func(t *testing.T) {
		cases := []user.UserSignup{
			{Name: "", Email: "a@x.com", Password: "secret1"},
			{Name: "A", Email: "not-an-email", Password: "secret1"},
			{Name: "A", Email: "a@x.com", Password: "short"},
		}
		for _, c := range cases {
			env.Do(t, http.MethodPost, "/auth/register", "", c, http.StatusBadRequest, nil)
		}
	})

	t.Run("register duplicate email", func(t *testing.T) {
		dup := user.UserSignup{Name: "Clone", Email: alice.User.Email, Password: "secret2"}
		env.Do(t, http.MethodPost, "/auth/register", "", dup, http.StatusConflict, nil)
	})

	t.Run("login is uniform on failure", func(t *testing.T) {
		var wrongPass, unknown struct {
			Error string `json:"error"`
		}
		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: alice.User.Email, Password: "wrong-pass"},
			http.StatusUnauthorized, &wrongPass)
		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: "nobody@test.com", Password: "whatever"},
			http.StatusUnauthorized, &unknown)

		if wrongPass.Error != unknown.Error {
			t.Fatalf("login failures leak which part was wrong: %q vs %q", wrongPass.Error, unknown.Error)
		}
	})

	t.Run("login returns a usable token", func(t *testing.T) {
		var tr auth.TokenResponse
		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: alice.User.Email, Password: alicePass},
			http.StatusOK, &tr)

		// The fresh token must be accepted by an authenticated route.
		env.Do(t, http.MethodGet, "/cart", tr.Token, nil, http.StatusOK, nil)
	})

	t.Run("authenticated routes reject bad tokens", func(t *testing.T) {
		env.Do(t, http.MethodGet, "/cart", "", nil, http.StatusUnauthorized, nil)
		env.Do(t, http.MethodGet, "/cart", "garbage", nil, http.StatusUnauthorized, nil)
	})

	t.Run("change password", func(t *testing.T) {
		env.Do(t, http.MethodPost, "/auth/change-password", alice.Token,
			user.PasswordChange{OldPassword: "wrong", NewPassword: "secret2", ConfirmPassword: "secret2"},
			http.StatusUnauthorized, nil)

		env.Do(t, http.MethodPost, "/auth/change-password", alice.Token,
			user.PasswordChange{OldPassword: alicePass, NewPassword: "secret2", ConfirmPassword: "secret3"},
			http.StatusBadRequest, nil)

		env.Do(t, http.MethodPost, "/auth/change-password", alice.Token,
			user.PasswordChange{OldPassword: alicePass, NewPassword: alicePass, ConfirmPassword: alicePass},
			http.StatusBadRequest, nil)

		env.Do(t, http.MethodPost, "/auth/change-password", alice.Token,
			user.PasswordChange{OldPassword: alicePass, NewPassword: "secret2", ConfirmPassword: "secret2"},
			http.StatusOK, nil)

		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: alice.User.Email, Password: alicePass},
			http.StatusUnauthorized, nil)
		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: alice.User.Email, Password: "secret2"},
			http.StatusOK, nil)
	})

	t.Run("delete account", func(t *testing.T) {
		victim, victimPass := env.Register(t, "Victim")

		env.Do(t, http.MethodDelete, "/auth/delete-account", victim.Token,
			user.AccountDeletion{Password: "wrong"}, http.StatusUnauthorized, nil)

		env.Do(t, http.MethodDelete, "/auth/delete-account", victim.Token,
			user.AccountDeletion{Password: victimPass}, http.StatusOK, nil)

		env.Do(t, http.MethodPost, "/auth/login", "",
			user.UserLogin{Email: victim.User.Email, Password: victimPass},
			http.StatusUnauthorized, nil)
	})
}
