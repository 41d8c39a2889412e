package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	auditrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/audit"
	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/entitystore"
	staffrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/staff"
	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/testhelper"
	jwtauth "github.com/ayodelan/schoolbase-backend/internal/auth"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/config"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/export"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
	authsvc "github.com/ayodelan/schoolbase-backend/internal/service/auth"
	"github.com/ayodelan/schoolbase-backend/internal/translate"
	"github.com/ayodelan/schoolbase-backend/internal/transport/middleware"
	"github.com/ayodelan/schoolbase-backend/internal/transport/rest"
	"github.com/ayodelan/schoolbase-backend/internal/validate"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *jwtauth.JWTManager
}

// setupServer wires the full stack against a real PostgreSQL container and
// serves it over httptest. Every test gets its own pool and server; the
// container and schema are shared for the whole run.
func setupServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.DiscardHandler)
	cat := catalog.Default()

	store := entitystore.New(pool, cat)
	auditRepo := auditrepo.New(pool)
	staffRepo := staffrepo.New(pool)

	engine := lifecycle.New(logger, cat, store, auditRepo, postgres.NewTxManager(pool), translate.New(cat))
	validate.Register(engine)

	gatherer := export.New(logger, cat, store)

	jwtMgr := jwtauth.NewJWTManager(testJWTSecret, "schoolbase-test", time.Hour)
	authService := authsvc.NewService(logger, staffRepo, jwtMgr)

	mux := rest.NewRouter(
		rest.NewHealthHandler(pool, "test-version"),
		rest.NewAuthHandler(authService, logger),
		rest.NewEntityHandler(logger, cat, engine, gatherer, auditRepo),
	)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PATCH,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		middleware.Auth(jwtMgr),
	)(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
	}
}

// adminToken seeds an admin staff member and mints a token for them.
func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	member := testhelper.SeedStaff(t, ts.Pool, domain.StaffTypeAdmin)
	return ts.tokenFor(t, member.ID, domain.StaffTypeAdmin)
}

// educatorToken seeds an educator and mints a token for them.
func (ts *testServer) educatorToken(t *testing.T) string {
	t.Helper()
	member := testhelper.SeedStaff(t, ts.Pool, domain.StaffTypeEducator)
	return ts.tokenFor(t, member.ID, domain.StaffTypeEducator)
}

func (ts *testServer) tokenFor(t *testing.T, staffID uuid.UUID, staffType domain.StaffType) string {
	t.Helper()
	token, err := ts.jwt.GenerateAccessToken(staffID, staffType)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// do sends a JSON request and returns status plus decoded body. A nil body
// map is returned for empty responses.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	if len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response %q: %v", raw, err)
	}
	return resp.StatusCode, decoded
}

// errCode digs the error code out of a decoded error envelope.
func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, uuid.NewString()[:8])
}

var rankCounter atomic.Int64

// uniqueRank hands out academic level ranks that never collide within a
// test run. Ranks carry a unique constraint.
func uniqueRank() int64 {
	return 1000 + rankCounter.Add(1)
}
