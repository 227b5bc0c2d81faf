package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/debba/tabularis-csv-plugin/domain/model"
)

// LoadFailure records one file that could not be loaded. It does not fault
// the session; other files still load.
type LoadFailure struct {
	// Path is the source file path.
	Path string
	// Table is the table name the file would have produced.
	Table string
	// Err is the load error.
	Err error
}

// Snapshot is a single-call dump of the full catalog, shaped for diagram
// rendering: every table with its full column list.
type Snapshot struct {
	Tables  []string
	Columns map[string][]model.ColumnInfo
}

// Session owns one directory loaded into one in-memory SQLite database.
// It is built once and read-only afterwards; the worker never rebuilds it.
type Session struct {
	id       string
	dir      string
	db       *sql.DB
	tables   []*model.Table
	byName   map[string]*model.Table
	failures []LoadFailure
	logger   *slog.Logger
}

// Open scans dir for eligible files, loads each into a fresh in-memory
// SQLite database and returns the populated session. Per-file parse errors
// are recorded as load failures and logged; connection-level problems
// (missing directory, no eligible files, nothing loadable) return an error
// and no session.
func Open(ctx context.Context, dir string, opts model.ParseOptions, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := eligibleFiles(dir)
	if err != nil {
		return nil, err
	}

	// One pooled connection: each connection to ":memory:" would otherwise
	// see its own empty database.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)

	id := uuid.NewString()
	s := &Session{
		id:     id,
		dir:    dir,
		db:     db,
		byName: make(map[string]*model.Table),
		logger: logger.With("session", id),
	}

	for _, path := range files {
		table, err := model.NewFile(path).ToTable(opts)
		if err == nil {
			err = s.loadTable(ctx, table)
		}
		if err != nil {
			s.failures = append(s.failures, LoadFailure{
				Path:  path,
				Table: model.TableNameFromPath(path),
				Err:   err,
			})
			s.logger.Warn("skipping file", "file", filepath.Base(path), "error", err)
			continue
		}

		s.tables = append(s.tables, table)
		s.byName[table.Name()] = table
		s.logger.Info("loaded file",
			"file", filepath.Base(path),
			"table", table.Name(),
			"rows", table.RowCount(),
			"delimiter", strconv.QuoteRune(table.Delimiter().Delimiter),
			"low_confidence", !table.Delimiter().Consistent,
		)
	}

	if len(s.tables) == 0 {
		db.Close()
		return nil, fmt.Errorf("%w in: %s", ErrNoTablesLoaded, dir)
	}

	return s, nil
}

// eligibleFiles lists the supported files of dir in sorted name order.
func eligibleFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnreadable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnreadable, dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if model.IsSupportedFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in: %s", ErrNoEligibleFiles, dir)
	}
	return files, nil
}

// loadTable creates the backing table and inserts every record. The table
// name gets a numeric suffix when an earlier file already claimed the stem.
func (s *Session) loadTable(ctx context.Context, table *model.Table) error {
	table.Rename(s.uniqueName(table.Name()))

	if err := s.createTable(ctx, table); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := s.insertRecords(ctx, table); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

// uniqueName disambiguates duplicate table names with _2, _3, ... suffixes.
// Files are loaded in sorted name order, so the result is deterministic.
func (s *Session) uniqueName(name string) string {
	if _, exists := s.byName[name]; !exists {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, exists := s.byName[candidate]; !exists {
			return candidate
		}
	}
}

// createTable issues CREATE TABLE with the inferred column affinities.
func (s *Session) createTable(ctx context.Context, table *model.Table) error {
	columns := make([]string, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		columns = append(columns, fmt.Sprintf(`[%s] %s`, col.Name, col.Type.StorageType()))
	}

	query := fmt.Sprintf(`CREATE TABLE [%s] (%s)`, table.Name(), strings.Join(columns, ", "))
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// insertRecords bulk-inserts all records inside one transaction using a
// single prepared statement.
func (s *Session) insertRecords(ctx context.Context, table *model.Table) error {
	if table.RowCount() == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Header())), ", ")
	query := fmt.Sprintf(`INSERT INTO [%s] VALUES (%s)`, table.Name(), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(table.Header()))
	for _, record := range table.Records() {
		for i, col := range table.Columns() {
			args[i] = storageValue(col, record[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// storageValue converts one raw field to its typed storage value. Empty
// fields become NULL. A value outside the inferred type (possible when the
// inference sample was capped) falls back to its raw text.
func storageValue(col model.ColumnInfo, raw string) any {
	if raw == "" {
		return nil
	}
	switch col.Type {
	case model.ColumnTypeInteger:
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	case model.ColumnTypeReal:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case model.ColumnTypeBoolean:
		if v, ok := model.ParseBoolean(raw); ok {
			return v
		}
	}
	return raw
}

// ID returns the session identifier used in diagnostics.
func (s *Session) ID() string {
	return s.id
}

// Dir returns the loaded directory path.
func (s *Session) Dir() string {
	return s.dir
}

// DatabaseName returns the single database name exposed to the host: the
// directory's base name.
func (s *Session) DatabaseName() string {
	return filepath.Base(s.dir)
}

// DB returns the backing database handle for query execution.
func (s *Session) DB() *sql.DB {
	return s.db
}

// TableNames returns the loaded table names sorted by table name. Files are
// loaded in file-name order, which can diverge from table-name order after
// sanitization or suffixing.
func (s *Session) TableNames() []string {
	names := make([]string, 0, len(s.tables))
	for _, t := range s.tables {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// Columns returns the column definitions of one table. A name matching a file
// that failed to load reports the load error; any other unknown name reports
// ErrTableNotFound.
func (s *Session) Columns(table string) ([]model.ColumnInfo, error) {
	t, ok := s.byName[table]
	if !ok {
		for _, failure := range s.failures {
			if failure.Table == table {
				return nil, fmt.Errorf("%w: %s: %v", ErrTableLoadFailed, table, failure.Err)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return t.Columns(), nil
}

// ColumnsBatch returns column definitions keyed by table name. An empty
// names list means every loaded table; unknown names are skipped.
func (s *Session) ColumnsBatch(names []string) map[string][]model.ColumnInfo {
	if len(names) == 0 {
		names = s.TableNames()
	}
	batch := make(map[string][]model.ColumnInfo, len(names))
	for _, name := range names {
		if t, ok := s.byName[name]; ok {
			batch[name] = t.Columns()
		}
	}
	return batch
}

// TableCount returns the number of loaded tables.
func (s *Session) TableCount() int {
	return len(s.tables)
}

// Failures returns the files that could not be loaded.
func (s *Session) Failures() []LoadFailure {
	return s.failures
}

// Describe returns the full catalog in one call.
func (s *Session) Describe() Snapshot {
	return Snapshot{
		Tables:  s.TableNames(),
		Columns: s.ColumnsBatch(nil),
	}
}

// Close releases the backing database.
func (s *Session) Close() error {
	return s.db.Close()
}
