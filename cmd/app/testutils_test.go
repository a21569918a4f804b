package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sushihentaime/blogcontent/internal/blogservice"
	"github.com/sushihentaime/blogcontent/internal/common"
	"github.com/sushihentaime/blogcontent/internal/userservice"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig() *Config {
	return &Config{
		Port:         "0",
		Environment:  "testing",
		Version:      "test",
		JWTSecret:    testJWTSecret,
		JWTTTL:       time.Hour,
		LimiterRPS:   2,
		LimiterBurst: 4,
	}
}

// newUnitApplication builds an application without storage. The user service can only
// reject tokens, which is enough for middleware tests.
func newUnitApplication(cfg *Config) *application {
	return &application{
		config:      cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		userService: userservice.NewUserService(nil, common.NewCache(time.Minute, time.Minute), cfg.JWTSecret, cfg.JWTTTL),
		limiter:     newClientLimiter(cfg.LimiterRPS, cfg.LimiterBurst),
		metrics:     newMetrics(),
	}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB(common.MigrationsFromInternal, t)

	app := newUnitApplication(testConfig())
	app.userService = userservice.NewUserService(db, common.NewCache(time.Minute, time.Minute), testJWTSecret, time.Hour)
	app.blogService = blogservice.NewBlogService(db, nil, app.logger)

	return app, db
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	if len(responseBody) == 0 {
		return res.StatusCode, res.Header, nil
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, token string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}
