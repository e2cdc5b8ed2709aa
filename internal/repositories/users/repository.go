// Package users stores the dashboard accounts, their access log and the
// global settings the administrator edits.
package users

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/models"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	apperrors "github.com/Tonooka01/sistema-analise/pkg/errors"
	"github.com/Tonooka01/sistema-analise/pkg/middleware"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
)

const (
	usersTable    = "Users"
	logsTable     = "AccessLogs"
	settingsTable = "Settings"

	// TimeoutKey is the Settings row holding the inactivity timeout in minutes.
	TimeoutKey     = "inactivity_timeout_minutes"
	DefaultTimeout = "30"

	// OnlineWindow is how recently a user must have been seen to count as online.
	OnlineWindow = 300 * time.Second

	recentLogs = 200
)

const (
	msgUserNotFound = "Usuário não encontrado."
	msgMissingUser  = "Usuário e senha são obrigatórios."
)

var userStruct = database.NewStruct(new(models.User))

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
	List(ctx context.Context) ([]models.UserStatus, error)
	Toggle(ctx context.Context, id, actorID int64) error
	Logs(ctx context.Context, date string) ([]models.AccessLog, error)
	Record(ctx context.Context, entry middleware.AccessEntry) error
	TouchLastSeen(ctx context.Context, userID int64, at string) error
	TimeoutMinutes(ctx context.Context) (string, error)
	SetTimeoutMinutes(ctx context.Context, value string) error
	InactivityTimeout(ctx context.Context) (time.Duration, error)
	Bootstrap(ctx context.Context, adminUsername, adminPassword string) error
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	now    func() time.Time
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger, now: time.Now}
}

// GetByID returns nil when no user has id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByID")
	defer span.End()

	sb := userStruct.SelectFrom(usersTable)
	sb.Where(sb.Equal("id", id))
	return r.get(ctx, sb)
}

// GetByUsername returns nil when no user has username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByUsername")
	defer span.End()

	sb := userStruct.SelectFrom(usersTable)
	sb.Where(sb.Equal("username", username))
	return r.get(ctx, sb)
}

func (r *Repository) get(ctx context.Context, sb interface{ Build() (string, []any) }) (*models.User, error) {
	query, args := sb.Build()

	var u models.User
	if err := r.db.Q(ctx).GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get user")
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &u, nil
}

// Create adds an active user. A taken username is a 409.
func (r *Repository) Create(ctx context.Context, username, password string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Create")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.BadRequest(msgMissingUser)
	}

	existing, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict(apperrors.MsgUserExists)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	ib := database.NewInsertBuilder().
		InsertInto(usersTable).
		Cols("username", "password_hash", "is_active").
		Values(username, hash, 1)
	query, args := ib.Build()

	if _, err := r.db.Q(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(apperrors.MsgUserExists)
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to create user")
		return nil, errors.Wrap(err, "failed to create user")
	}

	r.logger.WithContext(ctx).WithField("username", username).Info("created user")
	return r.GetByUsername(ctx, username)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// List returns every user for the admin panel. A user is online when seen
// within OnlineWindow.
func (r *Repository) List(ctx context.Context) ([]models.UserStatus, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.List")
	defer span.End()

	sb := userStruct.SelectFrom(usersTable)
	sb.OrderBy("id")
	query, args := sb.Build()

	var rows []models.User
	if err := r.db.Q(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list users")
		return nil, errors.Wrap(err, "failed to list users")
	}

	now := r.now()
	out := make([]models.UserStatus, 0, len(rows))
	for _, u := range rows {
		status := models.UserStatus{
			ID:       u.ID,
			Username: u.Username,
			IsActive: u.Active(),
			LastSeen: u.LastSeen,
		}
		if u.LastSeen.Valid {
			seen, err := time.ParseInLocation(database.TimestampLayout, u.LastSeen.String, now.Location())
			status.IsOnline = err == nil && now.Sub(seen) < OnlineWindow
		}
		out = append(out, status)
	}
	return out, nil
}

// Toggle flips a user's active flag. Administrators cannot toggle themselves.
func (r *Repository) Toggle(ctx context.Context, id, actorID int64) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Toggle")
	defer span.End()

	if id == actorID {
		return apperrors.BadRequest(apperrors.MsgSelfDeactivate)
	}

	ub := database.NewUpdateBuilder()
	ub.Update(usersTable).
		Set("is_active = NOT COALESCE(is_active, 1)").
		Where(ub.Equal("id", id))
	query, args := database.Compile(ub)

	res, err := r.db.Q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to toggle user")
		return errors.Wrap(err, "failed to toggle user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound(msgUserNotFound)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"user_id": id, "actor_id": actorID}).Info("toggled user")
	return nil
}

// Logs returns the access log of one day (YYYY-MM-DD) or the most recent entries.
func (r *Repository) Logs(ctx context.Context, date string) ([]models.AccessLog, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Logs")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id", "username", "path", "method", "ip_address", "timestamp").From(logsTable)
	if date != "" {
		sb.Where(sb.Equal("DATE(timestamp)", date))
	} else {
		sb.Limit(recentLogs)
	}
	sb.OrderBy("id").Desc()
	query, args := sb.Build()

	out := []models.AccessLog{}
	if err := r.db.Q(ctx).SelectContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list access logs")
		return nil, errors.Wrap(err, "failed to list access logs")
	}
	return out, nil
}

func (r *Repository) Record(ctx context.Context, entry middleware.AccessEntry) error {
	ib := database.NewInsertBuilder().
		InsertInto(logsTable).
		Cols("username", "path", "method", "ip_address", "timestamp").
		Values(entry.Username, entry.Path, entry.Method, entry.IPAddress, entry.Timestamp)
	query, args := ib.Build()

	_, err := r.db.Q(ctx).ExecContext(ctx, query, args...)
	return errors.Wrap(err, "failed to record access")
}

func (r *Repository) TouchLastSeen(ctx context.Context, userID int64, at string) error {
	ub := database.NewUpdateBuilder()
	ub.Update(usersTable).Set(ub.Assign("last_seen", at)).Where(ub.Equal("id", userID))
	query, args := database.Compile(ub)

	_, err := r.db.Q(ctx).ExecContext(ctx, query, args...)
	return errors.Wrap(err, "failed to update last_seen")
}

// TimeoutMinutes returns the stored inactivity timeout, DefaultTimeout when unset.
func (r *Repository) TimeoutMinutes(ctx context.Context) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.TimeoutMinutes")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("value").From(settingsTable).Where(sb.Equal("key", TimeoutKey))
	query, args := sb.Build()

	var value database.Text
	if err := r.db.Q(ctx).GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultTimeout, nil
		}
		return "", errors.Wrap(err, "failed to read inactivity timeout")
	}
	if !value.Valid || value.String == "" {
		return DefaultTimeout, nil
	}
	return value.String, nil
}

// SetTimeoutMinutes stores a positive whole number of minutes.
func (r *Repository) SetTimeoutMinutes(ctx context.Context, value string) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.SetTimeoutMinutes")
	defer span.End()

	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 || strings.TrimLeft(value, "0123456789") != "" {
		return apperrors.BadRequest(apperrors.MsgInvalidValue)
	}

	ib := database.NewInsertBuilder().
		InsertInto(settingsTable).
		Cols("key", "value").
		Values(TimeoutKey, strconv.Itoa(minutes))
	ub := ib.OnConflict("key")
	ub.Set(ub.Assign("value", database.Excluded("value")))
	query, args := ib.Build()

	if _, err := r.db.Q(ctx).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to save inactivity timeout")
		return errors.Wrap(err, "failed to save inactivity timeout")
	}
	r.logger.WithContext(ctx).WithField("minutes", minutes).Info("inactivity timeout updated")
	return nil
}

// InactivityTimeout feeds the session cookie expiry.
func (r *Repository) InactivityTimeout(ctx context.Context) (time.Duration, error) {
	value, err := r.TimeoutMinutes(ctx)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return auth.DefaultInactivityTimeout, nil
	}
	return time.Duration(minutes) * time.Minute, nil
}

// Bootstrap seeds the default timeout and the administrator account when missing.
func (r *Repository) Bootstrap(ctx context.Context, adminUsername, adminPassword string) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Bootstrap")
	defer span.End()

	return database.InTx(ctx, r.db, func(ctx context.Context, tx database.Tx) error {
		ib := database.NewInsertBuilder().
			InsertInto(settingsTable).
			Cols("key", "value").
			Values(TimeoutKey, DefaultTimeout).
			OnConflictDoNothing()
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "failed to seed settings")
		}

		admin, err := r.GetByUsername(ctx, adminUsername)
		if err != nil || admin != nil {
			return err
		}
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return err
		}
		ib = database.NewInsertBuilder().
			InsertInto(usersTable).
			Cols("username", "password_hash", "is_active").
			Values(adminUsername, hash, 1)
		query, args = ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "failed to seed admin user")
		}
		r.logger.WithContext(ctx).WithField("username", adminUsername).Info("created default admin user")
		return nil
	})
}

var (
	_ middleware.UserLookup     = (*Repository)(nil)
	_ middleware.AccessRecorder = (*Repository)(nil)
	_ auth.TimeoutSource        = (*Repository)(nil)
)
