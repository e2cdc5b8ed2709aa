package users

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/testdb"
	"github.com/Tonooka01/sistema-analise/pkg/middleware"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db := testdb.New(t)
	repo := NewRepository(db.DB, db.Logger)
	require.NoError(t, repo.Bootstrap(context.Background(), "admin", "segredo"))
	return repo
}

func assertStatus(t *testing.T, status int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, httperror.GetStatusCode(err))
}

func TestBootstrap(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.Active())
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "segredo"))

	minutes, err := repo.TimeoutMinutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, minutes)

	require.NoError(t, repo.SetTimeoutMinutes(ctx, "45"))
	require.NoError(t, repo.Bootstrap(ctx, "admin", "outra"), "bootstrap is idempotent")
	minutes, err = repo.TimeoutMinutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "45", minutes)

	again, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, auth.CheckPassword(again.PasswordHash, "segredo"))
}

func TestCreateAndLookup(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	joao, err := repo.Create(ctx, " joao ", "senha")
	require.NoError(t, err)
	assert.Equal(t, "joao", joao.Username)
	assert.True(t, joao.Active())

	byID, err := repo.GetByID(ctx, joao.ID)
	require.NoError(t, err)
	assert.Equal(t, "joao", byID.Username)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.Create(ctx, "joao", "x")
	assertStatus(t, http.StatusConflict, err)
	_, err = repo.Create(ctx, "", "x")
	assertStatus(t, http.StatusBadRequest, err)
}

func TestToggle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	joao, err := repo.Create(ctx, "joao", "senha")
	require.NoError(t, err)

	require.NoError(t, repo.Toggle(ctx, joao.ID, admin.ID))
	got, err := repo.GetByID(ctx, joao.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())

	require.NoError(t, repo.Toggle(ctx, joao.ID, admin.ID))
	got, err = repo.GetByID(ctx, joao.ID)
	require.NoError(t, err)
	assert.True(t, got.Active())

	assertStatus(t, http.StatusBadRequest, repo.Toggle(ctx, admin.ID, admin.ID))
	assertStatus(t, http.StatusNotFound, repo.Toggle(ctx, 999, admin.ID))
}

func TestListOnline(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	repo.now = func() time.Time { return now }

	admin, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	joao, err := repo.Create(ctx, "joao", "senha")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "ana", "senha")
	require.NoError(t, err)

	require.NoError(t, repo.TouchLastSeen(ctx, admin.ID, now.Add(-time.Minute).Format("2006-01-02 15:04:05")))
	require.NoError(t, repo.TouchLastSeen(ctx, joao.ID, now.Add(-10*time.Minute).Format("2006-01-02 15:04:05")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "admin", list[0].Username)
	assert.True(t, list[0].IsOnline)
	assert.False(t, list[1].IsOnline)
	assert.True(t, list[1].LastSeen.Valid)
	assert.False(t, list[2].IsOnline)
	assert.False(t, list[2].LastSeen.Valid)
}

func TestAccessLogs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, middleware.AccessEntry{Username: "admin", Path: "/api/tables", Method: "GET", IPAddress: "10.0.0.1", Timestamp: "2024-06-01 10:00:00"}))
	require.NoError(t, repo.Record(ctx, middleware.AccessEntry{Username: "Visitante", Path: "/login", Method: "POST", IPAddress: "10.0.0.2", Timestamp: "2024-06-02 11:00:00"}))
	require.NoError(t, repo.Record(ctx, middleware.AccessEntry{Username: "admin", Path: "/api/summary/Contratos", Method: "GET", IPAddress: "10.0.0.1", Timestamp: "2024-06-02 12:00:00"}))

	recent, err := repo.Logs(ctx, "")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "/api/summary/Contratos", recent[0].Path.String)

	day, err := repo.Logs(ctx, "2024-06-02")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "Visitante", day[1].Username.String)

	none, err := repo.Logs(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInactivityTimeout(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	d, err := repo.InactivityTimeout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	require.NoError(t, repo.SetTimeoutMinutes(ctx, "15"))
	d, err = repo.InactivityTimeout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	for _, bad := range []string{"", "0", "-5", "1.5", "abc", "+3"} {
		assertStatus(t, http.StatusBadRequest, repo.SetTimeoutMinutes(ctx, bad))
	}
}
