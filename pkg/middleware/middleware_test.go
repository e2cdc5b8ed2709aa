package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/models"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
)

var testLogger = ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

type fakeUsers map[int64]*models.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f[id], nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []AccessEntry
	touched []int64
}

func (f *fakeRecorder) Record(_ context.Context, e AccessEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeRecorder) TouchLastSeen(_ context.Context, id int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func newServer(sessions *auth.Sessions, users UserLookup, rec AccessRecorder) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = Error(testLogger)
	e.Use(Context(), AccessLog(rec, testLogger), Session(sessions, users, testLogger), RequireAPISession())

	e.GET("/api/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/static/app.js", func(c echo.Context) error { return c.String(http.StatusOK, "js") })
	admin := e.Group("/api/admin", RequireAdmin("admin"))
	admin.GET("/users", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestSession_RejectsAnonymousAPI(t *testing.T) {
	rec := &fakeRecorder{}
	e := newServer(auth.NewSessions(auth.SessionConfig{Secret: "s"}, nil), fakeUsers{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(HeaderCFConnectingIP, "203.0.113.9")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Acesso não autorizado", body.Error)
	assert.NotEmpty(t, body.RequestID)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, AnonymousUsername, rec.entries[0].Username)
	assert.Equal(t, "203.0.113.9", rec.entries[0].IPAddress)
	assert.Empty(t, rec.touched)
}

func TestSession_AuthenticatedAndAdmin(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionConfig{Secret: "s"}, nil)
	active := true
	inactive := false
	users := fakeUsers{
		1: {ID: 1, Username: "admin", IsActive: &active},
		2: {ID: 2, Username: "joao", IsActive: &active},
		3: {ID: 3, Username: "ana", IsActive: &inactive},
	}
	rec := &fakeRecorder{}
	e := newServer(sessions, users, rec)

	do := func(id int64, username, path string) *httptest.ResponseRecorder {
		cookie, err := sessions.Issue(context.Background(), id, username)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.1, 10.0.0.1")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)
		return w
	}

	w := do(2, "joao", "/api/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies(), "session cookie is renewed")

	assert.Equal(t, http.StatusForbidden, do(2, "joao", "/api/admin/users").Code)
	assert.Equal(t, http.StatusOK, do(1, "admin", "/api/admin/users").Code)
	assert.Equal(t, http.StatusUnauthorized, do(3, "ana", "/api/ping").Code)

	assert.Equal(t, []int64{2, 2, 1}, rec.touched)
	assert.Equal(t, "198.51.100.1", rec.entries[0].IPAddress)
	assert.Equal(t, "joao", rec.entries[0].Username)
}

func TestAccessLog_SkipsStatic(t *testing.T) {
	rec := &fakeRecorder{}
	e := newServer(auth.NewSessions(auth.SessionConfig{Secret: "s"}, nil), fakeUsers{}, rec)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.entries)
}

func TestError_RendersPlainMessage(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = Error(testLogger)
	e.Use(Context())
	e.GET("/missing", func(c echo.Context) error { return apperrors.TableNotFound("Contratos_Negativacao") })
	e.GET("/invalid", func(c echo.Context) error {
		return httperror.WrapError(http.StatusBadRequest, errors.New("campo invalido"))
	})
	e.GET("/crash", func(c echo.Context) error { return errors.New("disk I/O error") })

	cases := []struct {
		path    string
		code    int
		message string
	}{
		{"/missing", http.StatusInternalServerError, "A tabela 'Contratos_Negativacao' não foi encontrada."},
		{"/invalid", http.StatusBadRequest, "campo invalido"},
		{"/crash", http.StatusInternalServerError, "Erro interno no servidor."},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.code, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}
