package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexify-market/nexify/api"
	"github.com/nexify-market/nexify/config"
	"github.com/nexify-market/nexify/core/auth"
	"github.com/nexify-market/nexify/core/user"
	"github.com/nexify-market/nexify/database"
	"github.com/nexify-market/nexify/random"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/sirupsen/logrus"
)

// One disposable postgres container backs all tests in this package.
// Each test env gets its own database inside it.
var (
	pgHost  string
	adminDB *sqlx.DB
)

var authConfig = config.Auth{
	TokenSecret:  "test-secret",
	TokenTimeout: time.Hour,
}

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Println("skipping integration tests, docker is not available:", err)
		return 0
	}
	if err := pool.Client.Ping(); err != nil {
		fmt.Println("skipping integration tests, docker is not reachable:", err)
		return 0
	}

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=postgres",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Println("could not start postgres container:", err)
		return 1
	}
	defer pool.Purge(res)

	pgHost = "localhost:" + res.GetPort("5432/tcp")

	if err := pool.Retry(func() error {
		adminDB, err = database.Open(config.DB{
			User:       "postgres",
			Password:   "postgres",
			Host:       pgHost,
			Name:       "postgres",
			DisableTLS: true,
		})
		if err != nil {
			return err
		}
		return adminDB.Ping()
	}); err != nil {
		fmt.Println("could not connect to postgres container:", err)
		return 1
	}
	defer adminDB.Close()

	return m.Run()
}

type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string
}

// NewTestEnv creates a fresh database named after the test, migrates
// it, and serves the full API mux on top of it.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	if _, err := adminDB.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating database %q: %w", name, err)
	}

	db, err := database.Open(config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       pgHost,
		Name:       name,
		DisableTLS: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", name, err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating database %q: %w", name, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mux := api.APIMux(api.APIConfig{
		Log:  logger,
		DB:   db,
		Auth: authConfig,
	})

	srv := httptest.NewServer(mux)

	env := &TestEnv{
		DB:     db,
		Server: srv,
		URL:    srv.URL,
	}

	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})

	return env, nil
}

// Do issues a request against the test server, asserts the status
// code, and decodes the response body into out when given.
func (te *TestEnv) Do(t *testing.T, method string, path string, token string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, te.URL+path, rd)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer w.Body.Close()

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}

	if w.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d (body %s)", method, path, wantStatus, w.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("unmarshaling response of %s %s: %v (body %s)", method, path, err, raw)
		}
	}
}

// Register creates a user with a random email and returns the token
// response. The password is returned too so tests can log back in.
func (te *TestEnv) Register(t *testing.T, name string) (auth.TokenResponse, string) {
	t.Helper()

	password := "secret1"
	signup := user.UserSignup{
		Name:     name,
		Email:    random.String(10) + "@test.com",
		Password: password,
	}

	var tr auth.TokenResponse
	te.Do(t, http.MethodPost, "/auth/register", "", signup, http.StatusCreated, &tr)

	if tr.Token == "" {
		t.Fatal("registration returned an empty token")
	}
	return tr, password
}
