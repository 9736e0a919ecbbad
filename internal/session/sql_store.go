package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

// Defaults for the persisted schema.
const (
	DefaultTable            = "sessions"
	DefaultKeyColumn        = "key"
	DefaultDataColumn       = "data"
	DefaultExpirationColumn = "expiration"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLConfig names the table and columns the store reads and writes, and the
// codec used for the data column. Names are trusted configuration: they are
// interpolated into the statement templates once at construction, never per
// request, and must match a plain-identifier pattern.
type SQLConfig struct {
	Table            string
	KeyColumn        string
	DataColumn       string
	ExpirationColumn string
	Codec            Codec
}

func (c SQLConfig) withDefaults() SQLConfig {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.KeyColumn == "" {
		c.KeyColumn = DefaultKeyColumn
	}
	if c.DataColumn == "" {
		c.DataColumn = DefaultDataColumn
	}
	if c.ExpirationColumn == "" {
		c.ExpirationColumn = DefaultExpirationColumn
	}
	if c.Codec == nil {
		c.Codec = JSONCodec{}
	}
	return c
}

// stmt holds one statement template, prepared on first use and reused for
// the store's lifetime. Preparation failures are not cached: a transient
// error (cancelled context, database blip) surfaces to that caller only,
// and the next use retries.
type stmt struct {
	query string
	mu    sync.Mutex
	s     *sql.Stmt
}

func (p *stmt) prepared(ctx context.Context, db *sql.DB) (*sql.Stmt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		s, err := db.PrepareContext(ctx, p.query)
		if err != nil {
			return nil, err
		}
		p.s = s
	}
	return p.s, nil
}

// SQLStore persists one session record per key in a relational table.
// A row whose expiration is not strictly in the future is treated as absent;
// such rows are only reclaimed by PurgeExpired or by a later Set on the same
// key, never by Get.
type SQLStore struct {
	db    *sql.DB
	codec Codec

	insert stmt
	update stmt
	exists stmt
	sel    stmt
	del    stmt
	purge  stmt
}

// NewSQLStore builds a store over db. Empty SQLConfig fields fall back to the
// sessions/key/data/expiration defaults.
func NewSQLStore(db *sql.DB, cfg SQLConfig) (*SQLStore, error) {
	cfg = cfg.withDefaults()

	for _, name := range []string{cfg.Table, cfg.KeyColumn, cfg.DataColumn, cfg.ExpirationColumn} {
		if !identPattern.MatchString(name) {
			return nil, fmt.Errorf("session: invalid identifier %q", name)
		}
	}

	s := &SQLStore{db: db, codec: cfg.Codec}
	s.insert.query = fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)",
		cfg.Table, cfg.KeyColumn, cfg.DataColumn, cfg.ExpirationColumn,
	)
	s.update.query = fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3",
		cfg.Table, cfg.DataColumn, cfg.ExpirationColumn, cfg.KeyColumn,
	)
	s.exists.query = fmt.Sprintf(
		"SELECT 1 FROM %s WHERE %s = $1 AND %s > $2",
		cfg.Table, cfg.KeyColumn, cfg.ExpirationColumn,
	)
	s.sel.query = fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s > $2",
		cfg.DataColumn, cfg.Table, cfg.KeyColumn, cfg.ExpirationColumn,
	)
	s.del.query = fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1",
		cfg.Table, cfg.KeyColumn,
	)
	s.purge.query = fmt.Sprintf(
		"DELETE FROM %s WHERE %s <= $1",
		cfg.Table, cfg.ExpirationColumn,
	)
	return s, nil
}

// Set inserts or updates the record for key. The branch is decided by an
// exists-check against live rows; the same clock read feeds both the check
// and the stored expiration. A lost insert race against a unique key column
// falls back to the update branch.
func (s *SQLStore) Set(ctx context.Context, key string, value map[string]any, ttl time.Duration) error {
	if key == "" {
		return errors.New("session: empty key")
	}
	if ttl < 0 {
		return fmt.Errorf("session: negative ttl %v", ttl)
	}

	now := time.Now().Unix()
	expiration := now + int64(ttl/time.Second)

	live, err := s.hasLiveRow(ctx, key, now)
	if err != nil {
		return err
	}

	data, err := s.codec.Encode(value)
	if err != nil {
		return err
	}

	if live {
		return s.updateRow(ctx, key, data, expiration)
	}

	insert, err := s.insert.prepared(ctx, s.db)
	if err != nil {
		return err
	}
	if _, err := insert.ExecContext(ctx, key, data, expiration); err != nil {
		if isDuplicateKey(err) {
			// The key holds an expired row under a unique constraint, or a
			// concurrent Set won the insert. Either way the update settles it.
			return s.updateRow(ctx, key, data, expiration)
		}
		return err
	}
	return nil
}

// Get returns the payload for key, or (nil, nil) when no live row exists.
// A blob that no longer decodes is surfaced as an error, not as absence.
func (s *SQLStore) Get(ctx context.Context, key string) (map[string]any, error) {
	sel, err := s.sel.prepared(ctx, s.db)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = sel.QueryRowContext(ctx, key, time.Now().Unix()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // absent or expired
	}
	if err != nil {
		return nil, err
	}

	return s.codec.Decode(data)
}

// Delete removes the row for key regardless of its expiration state.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	del, err := s.del.prepared(ctx, s.db)
	if err != nil {
		return err
	}
	_, err = del.ExecContext(ctx, key)
	return err
}

// PurgeExpired removes every expired-but-present row and reports how many
// were reclaimed. Intended for a periodic sweeper, not the request path.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	purge, err := s.purge.prepared(ctx, s.db)
	if err != nil {
		return 0, err
	}
	res, err := purge.ExecContext(ctx, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) hasLiveRow(ctx context.Context, key string, now int64) (bool, error) {
	exists, err := s.exists.prepared(ctx, s.db)
	if err != nil {
		return false, err
	}
	var one int
	err = exists.QueryRowContext(ctx, key, now).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) updateRow(ctx context.Context, key string, data []byte, expiration int64) error {
	update, err := s.update.prepared(ctx, s.db)
	if err != nil {
		return err
	}
	_, err = update.ExecContext(ctx, data, expiration, key)
	return err
}

// isDuplicateKey reports whether an insert failed on a unique constraint.
// Postgres reports SQLSTATE class 23505; other drivers are matched on their
// exact constraint-violation phrases so that unrelated errors that merely
// mention uniqueness never get converted into the update fallback.
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") || // Postgres
		strings.Contains(msg, "duplicate entry") // MySQL
}
