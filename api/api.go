package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api/middleware"
	"github.com/nexify-market/nexify/api/web"
	"github.com/nexify-market/nexify/config"
	"github.com/nexify-market/nexify/core/auth"
	"github.com/nexify-market/nexify/core/cart"
	"github.com/nexify-market/nexify/core/product"
	"github.com/nexify-market/nexify/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Auth       config.Auth
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Auth.TokenSecret)

	var limited web.Middleware
	if cfg.Limiter != nil {
		limited = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodGet, "/", HandleHealth(cfg.DB))

	a.Handle(http.MethodPost, "/auth/register", auth.HandleRegister(cfg.DB, cfg.Auth), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Auth), limited)
	a.Handle(http.MethodPost, "/auth/change-password", auth.HandleChangePassword(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/auth/delete-account", auth.HandleDeleteAccount(cfg.DB), authen)

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodPost, "/products/{id}/buy", product.HandleBuy(cfg.DB), authen)
	a.Handle(http.MethodPost, "/products/{id}/comment", product.HandleComment(cfg.DB), authen)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/cart/add", cart.HandleAdd(cfg.DB), authen)
	a.Handle(http.MethodPost, "/cart/remove", cart.HandleRemove(cfg.DB), authen)
	a.Handle(http.MethodPost, "/cart/update", cart.HandleUpdate(cfg.DB), authen)
	a.Handle(http.MethodPost, "/cart/checkout", cart.HandleCheckout(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
