package config

import "time"

type Config struct {
	Web  Web
	DB   DB
	Auth Auth
	Cors Cors
	Rate Rate
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:nexify"`
	DisableTLS bool   `conf:"default:true"`
}

// Auth holds the secret used to sign bearer tokens and how long a
// freshly minted token stays valid.
type Auth struct {
	TokenSecret  string        `conf:"default:devsecret,mask"`
	TokenTimeout time.Duration `conf:"default:168h"`
}

type Cors struct {
	Origin string
}

// Rate bounds how often a single client may hit the unauthenticated
// auth endpoints.
type Rate struct {
	Burst    int           `conf:"default:10"`
	Interval time.Duration `conf:"default:1s"`
	Expiry   int           `conf:"default:10"`
}
