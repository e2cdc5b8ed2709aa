package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
)

// Schema answers "does this table exist" from sqlite_master. Results are cached
// for ttl so tables replaced by the offline loader are eventually picked up.
type Schema struct {
	db     DB
	logger ectologger.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	tables   map[string]string // lower-cased name -> stored name
	loadedAt time.Time
}

func NewSchema(db DB, logger ectologger.Logger, ttl time.Duration) *Schema {
	return &Schema{
		db:     db,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Refresh reloads the table list unconditionally.
func (s *Schema) Refresh(ctx context.Context) error {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return errors.Wrap(err, "failed to introspect sqlite_master")
	}

	tables := make(map[string]string, len(names))
	for _, name := range names {
		tables[strings.ToLower(name)] = name
	}

	s.mu.Lock()
	s.tables = tables
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.WithContext(ctx).WithField("tables", len(names)).Debugf("schema cache refreshed")
	return nil
}

// Invalidate forces the next lookup to reload.
func (s *Schema) Invalidate() {
	s.mu.Lock()
	s.tables = nil
	s.mu.Unlock()
}

func (s *Schema) load(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	tables, loadedAt := s.tables, s.loadedAt
	s.mu.RUnlock()

	if tables != nil && (s.ttl <= 0 || s.now().Sub(loadedAt) < s.ttl) {
		return tables, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables, nil
}

// HasTable reports whether name exists (case-insensitive, like SQLite identifiers).
func (s *Schema) HasTable(ctx context.Context, name string) (bool, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := tables[strings.ToLower(name)]
	return ok, nil
}

// Resolve returns the stored spelling of a table name.
func (s *Schema) Resolve(ctx context.Context, name string) (string, bool, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}
	stored, ok := tables[strings.ToLower(name)]
	return stored, ok, nil
}

// Tables lists user tables sorted by name.
func (s *Schema) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tables))
	for _, name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Columns lists the columns of table in declaration order.
func (s *Schema) Columns(ctx context.Context, table string) ([]string, error) {
	var cols []string
	err := s.db.SelectContext(ctx, &cols, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}
	return cols, nil
}
