// Package engine executes SQL against a session database and shapes results.
package engine

import (
	"context"
	"database/sql"
	"time"
)

// Result is one bounded page of a query's result set.
type Result struct {
	// Columns holds the result column names in engine order.
	Columns []string
	// Rows is the requested page of typed values.
	Rows [][]any
	// TotalCount is the full result size, independent of pagination.
	TotalCount int
	// ElapsedMS is the execution time in milliseconds.
	ElapsedMS int64
}

// Executor runs arbitrary SQL against the backing database. It imposes no
// result cap beyond pagination and surfaces engine errors untouched.
type Executor struct {
	db              *sql.DB
	defaultPageSize int
}

// New creates an executor over db. defaultPageSize applies when a request
// omits the page size.
func New(db *sql.DB, defaultPageSize int) *Executor {
	if defaultPageSize < 1 {
		defaultPageSize = 100
	}
	return &Executor{db: db, defaultPageSize: defaultPageSize}
}

// Execute runs query and returns the 1-based page of pageSize rows, plus the
// total row count. page < 1 means the first page; pageSize < 1 means the
// executor default.
func (e *Executor) Execute(ctx context.Context, query string, page, pageSize int) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = e.defaultPageSize
	}

	started := time.Now()
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	all, err := scanAll(rows, len(columns))
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	end := offset + pageSize
	if offset > len(all) {
		offset = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return &Result{
		Columns:    columns,
		Rows:       all[offset:end],
		TotalCount: len(all),
		ElapsedMS:  time.Since(started).Milliseconds(),
	}, nil
}

// scanAll reads every result row into generic values, converting raw byte
// slices to strings so they serialize as JSON text rather than base64.
func scanAll(rows *sql.Rows, width int) ([][]any, error) {
	all := make([][]any, 0)
	for rows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		all = append(all, values)
	}
	return all, rows.Err()
}
