// Package persistence stores parsed catalogs on local disk, one SQLite file per
// catalog. Files are written to a temporary path and renamed into place while
// holding a per-catalog file lock, so concurrent processes never observe a
// partially written cache.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/logging"
	"github.com/agentstation/kepmap/pkg/table"
)

// ErrNotCached is returned by Load when no file exists for a catalog.
var ErrNotCached = errors.New("catalog not cached")

// Info describes a persisted catalog.
type Info struct {
	Name      string    `json:"name" yaml:"name"`
	Key       string    `json:"key" yaml:"key"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	Rows      int       `json:"rows" yaml:"rows"`
	Columns   int       `json:"columns" yaml:"columns"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
}

// Store reads and writes catalog files under a data directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the cache file of a catalog.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+constants.CacheFileExt)
}

func (s *Store) lockPath(name string) string {
	return filepath.Join(s.dir, name+constants.LockFileExt)
}

// Exists reports whether a cache file is present for the catalog.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Save writes t as the cache file of its catalog, replacing any previous file.
func (s *Store) Save(ctx context.Context, t *table.Table, source string) error {
	logger := logging.FromContext(ctx).With().Str("catalog", t.Name()).Logger()

	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}

	unlock, err := s.lock(ctx, t.Name())
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, t.Name()+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := writeDB(ctx, tmpPath, t, source); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}

	path := s.Path(t.Name())
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", path, err)
	}

	logger.Debug().
		Str("path", path).
		Int("rows", t.Len()).
		Msg("Saved catalog cache")
	return nil
}

// Load reads a catalog file. It returns ErrNotCached when none exists.
func (s *Store) Load(ctx context.Context, name string) (*table.Table, error) {
	path := s.Path(name)
	if !s.Exists(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotCached)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}
	cols, err := readColumns(ctx, db)
	if err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}

	b, err := table.NewBuilder(name, meta["key"], cols)
	if err != nil {
		return nil, err
	}
	if err := readData(ctx, db, cols, b); err != nil {
		return nil, errors.WrapParse("sqlite", path, err)
	}

	t := b.Build()
	logging.FromContext(ctx).Debug().
		Str("catalog", name).
		Str("path", path).
		Int("rows", t.Len()).
		Msg("Loaded catalog cache")
	return t, nil
}

// Info returns metadata about a persisted catalog without loading its rows.
func (s *Store) Info(ctx context.Context, name string) (Info, error) {
	path := s.Path(name)
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("%s: %w", name, ErrNotCached)
		}
		return Info{}, errors.WrapIO("stat", path, err)
	}

	db, err := open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = db.Close() }()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return Info{}, errors.WrapParse("sqlite", path, err)
	}

	info := Info{
		Name:   name,
		Key:    meta["key"],
		Source: meta["source"],
		Path:   path,
		Size:   st.Size(),
	}
	info.Rows, _ = strconv.Atoi(meta["rows"])
	info.Columns, _ = strconv.Atoi(meta["columns"])
	info.FetchedAt, _ = time.Parse(time.RFC3339Nano, meta["fetched_at"])
	return info, nil
}

// Remove deletes the cache file of a catalog. Missing files are not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	unlock, err := s.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", s.Path(name), err)
	}
	return nil
}

// lock takes the catalog's exclusive file lock, waiting at most LockTimeout.
func (s *Store) lock(ctx context.Context, name string) (func(), error) {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", s.dir, err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.LockTimeout)
	defer cancel()

	fl := flock.New(s.lockPath(name))
	ok, err := fl.TryLockContext(ctx, constants.LockRetryDelay)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError("lock "+name, constants.LockTimeout.String(), "another process holds the cache lock")
		}
		return nil, errors.WrapIO("lock", s.lockPath(name), err)
	}
	if !ok {
		return nil, errors.WrapIO("lock", s.lockPath(name), errors.New("lock not acquired"))
	}
	return func() { _ = fl.Unlock() }, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	return db, nil
}

func writeDB(ctx context.Context, path string, t *table.Table, source string) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// The temp file is private until renamed, so durability is handled by the rename.
	for _, pragma := range []string{"PRAGMA journal_mode = OFF", "PRAGMA synchronous = OFF"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.WrapIO("configure", path, fmt.Errorf("apply pragma %q: %w", pragma, err))
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	defer func() { _ = tx.Rollback() }()

	cols := t.Columns()
	for _, stmt := range schema(cols, t.Key()) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.WrapIO("write", path, fmt.Errorf("apply schema: %w", err))
		}
	}

	meta := map[string]string{
		"name":       t.Name(),
		"key":        t.Key(),
		"source":     source,
		"rows":       strconv.Itoa(t.Len()),
		"columns":    strconv.Itoa(len(cols)),
		"fetched_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	for i, c := range cols {
		if _, err := tx.ExecContext(ctx, `INSERT INTO columns (position, name, kind) VALUES (?, ?, ?)`,
			i, c.Name, c.Kind.String()); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertStatement(cols))
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(cols))
	for r := 0; r < t.Len(); r++ {
		row := t.RowAt(r)
		for c, col := range cols {
			v, _ := row.Get(col.Name)
			args[c] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.WrapIO("write", path, fmt.Errorf("row %s: %w", row.Key(), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func schema(cols []table.Column, key string) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := "REAL"
		if c.Kind == table.Text {
			typ = "TEXT"
		}
		defs[i] = quoteIdent(c.Name) + " " + typ
	}
	return []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`CREATE TABLE columns (position INTEGER PRIMARY KEY, name TEXT NOT NULL, kind TEXT NOT NULL)`,
		`CREATE TABLE data (` + strings.Join(defs, ", ") + `)`,
		`CREATE INDEX data_key ON data (` + quoteIdent(key) + `)`,
	}
}

func insertStatement(cols []table.Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return `INSERT INTO data (` + strings.Join(names, ", ") + `) VALUES (` + strings.Join(marks, ", ") + `)`
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlValue maps NaN to NULL.
func sqlValue(v table.Value) any {
	if v.Kind() == table.Text {
		return v.String()
	}
	f, _ := v.Float()
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if meta["key"] == "" {
		return nil, errors.New("missing key metadata")
	}
	return meta, nil
}

func readColumns(ctx context.Context, db *sql.DB) ([]table.Column, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, kind FROM columns ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []table.Column
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		cols = append(cols, table.Column{Name: name, Kind: table.ParseKind(kind)})
	}
	return cols, rows.Err()
}

func readData(ctx context.Context, db *sql.DB, cols []table.Column, b *table.Builder) error {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
	}
	rows, err := db.QueryContext(ctx, `SELECT `+strings.Join(names, ", ")+` FROM data ORDER BY rowid`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	floats := make([]sql.NullFloat64, len(cols))
	texts := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i, c := range cols {
		if c.Kind == table.Text {
			dest[i] = &texts[i]
		} else {
			dest[i] = &floats[i]
		}
	}

	cells := make([]table.Value, len(cols))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		for i, c := range cols {
			switch {
			case c.Kind == table.Text:
				cells[i] = table.TextValue(texts[i].String)
			case floats[i].Valid:
				cells[i] = table.FloatValue(floats[i].Float64)
			default:
				cells[i] = table.NaN()
			}
		}
		if err := b.Append(cells); err != nil {
			return err
		}
	}
	return rows.Err()
}
