package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/api/weberr"
	"github.com/nexify-market/nexify/config"
	"github.com/nexify-market/nexify/core/claims"
	"github.com/nexify-market/nexify/core/product"
	"github.com/nexify-market/nexify/core/user"
	"github.com/nexify-market/nexify/database"
	"github.com/nexify-market/nexify/validate"
	"golang.org/x/crypto/bcrypt"
)

// Login failures are reported with one uniform message so a caller
// can't probe which emails are registered.
var errInvalidCredentials = errors.New("invalid credentials")

type TokenResponse struct {
	Token string    `json:"token"`
	User  user.Info `json:"user"`
}

type MsgResponse struct {
	Msg string `json:"msg"`
}

func HandleRegister(db *sqlx.DB, cfg config.Auth) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var signup user.UserSignup
		if err := web.Decode(w, r, &signup); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup: %w", err))
		}

		if err := validate.Check(signup); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Name:         signup.Name,
			Email:        signup.Email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.Conflict(errors.New("email already in use"))
			}
			return fmt.Errorf("creating user: %w", err)
		}

		token, err := GenerateToken(cfg.TokenSecret, usr.ID, cfg.TokenTimeout)
		if err != nil {
			return fmt.Errorf("generating token for user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, TokenResponse{Token: token, User: usr.Info()}, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, cfg config.Auth) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var login user.UserLogin
		if err := web.Decode(w, r, &login); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login: %w", err))
		}

		if err := validate.Check(login); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := user.FetchByEmail(ctx, db, login.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NewError(errInvalidCredentials, errInvalidCredentials.Error(), http.StatusUnauthorized)
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(login.Password)); err != nil {
			return weberr.NewError(errInvalidCredentials, errInvalidCredentials.Error(), http.StatusUnauthorized)
		}

		token, err := GenerateToken(cfg.TokenSecret, usr.ID, cfg.TokenTimeout)
		if err != nil {
			return fmt.Errorf("generating token for user[%s]: %w", usr.ID, err)
		}

		return web.Respond(ctx, w, TokenResponse{Token: token, User: usr.Info()}, http.StatusOK)
	}
}

func HandleChangePassword(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var change user.PasswordChange
		if err := web.Decode(w, r, &change); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding password change: %w", err))
		}

		if err := validate.Check(change); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if change.NewPassword != change.ConfirmPassword {
			err := errors.New("passwords do not match")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := user.Fetch(ctx, db, userID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", userID, err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(change.OldPassword)); err != nil {
			return weberr.NotAuthorized(errors.New("current password is incorrect"))
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(change.NewPassword)); err == nil {
			err := errors.New("new password must be different from current password")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing new password: %w", err)
		}

		usr.PasswordHash = hash
		usr.UpdatedAt = time.Now().UTC()
		if err := user.UpdatePassword(ctx, db, usr); err != nil {
			return fmt.Errorf("updating password: %w", err)
		}

		return web.Respond(ctx, w, MsgResponse{Msg: "password changed successfully"}, http.StatusOK)
	}
}

func HandleDeleteAccount(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		userID, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		var deletion user.AccountDeletion
		if err := web.Decode(w, r, &deletion); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding account deletion: %w", err))
		}

		if err := validate.Check(deletion); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := user.Fetch(ctx, db, userID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching user[%s]: %w", userID, err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(deletion.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("password is incorrect"))
		}

		// The user's listings go first; the cart and its lines follow
		// through foreign keys. Comments the user left on other
		// listings survive with a null author.
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := product.DeleteBySeller(ctx, tx, userID); err != nil {
				return fmt.Errorf("deleting listings of user[%s]: %w", userID, err)
			}
			if err := user.Delete(ctx, tx, userID); err != nil {
				return fmt.Errorf("deleting user[%s]: %w", userID, err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("deleting account: %w", err)
		}

		return web.Respond(ctx, w, MsgResponse{Msg: "account deleted successfully"}, http.StatusOK)
	}
}
