package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/debba/tabularis-csv-plugin/catalog"
	"github.com/debba/tabularis-csv-plugin/config"
	"github.com/debba/tabularis-csv-plugin/domain/model"
	"github.com/debba/tabularis-csv-plugin/engine"
)

// maxLineBytes bounds one request line. SQL text is small; this is generous.
const maxLineBytes = 16 * 1024 * 1024

// State is the dispatcher lifecycle state.
type State int

const (
	// StateIdle means the process started and no session exists yet.
	StateIdle State = iota
	// StateConnecting means the first load request is in flight.
	StateConnecting
	// StateReady means the catalog is built and queries are being served.
	StateReady
	// StateFaulted means the directory is unusable; every request
	// short-circuits to the same connection error without rescanning.
	StateFaulted
	// StateTerminated means the control channel closed.
	StateTerminated
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFaulted:
		return "faulted"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// rpcError carries an explicit protocol error code through a handler.
type rpcError struct {
	code    int
	message string
}

func (e *rpcError) Error() string {
	return e.message
}

// Dispatcher reads one request at a time from the control channel, routes it
// by method name and writes exactly one response. It owns the single Session
// of the worker process; nothing here is safe for concurrent use and nothing
// needs to be, the loop is strictly synchronous.
type Dispatcher struct {
	in     io.Reader
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger

	state    State
	session  *catalog.Session
	executor *engine.Executor
	faultErr error
}

// NewDispatcher creates a dispatcher reading requests from in and writing
// responses to out. Only protocol bytes ever reach out; diagnostics go
// through logger.
func NewDispatcher(in io.Reader, out io.Writer, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		in:     in,
		out:    out,
		cfg:    cfg,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (d *Dispatcher) State() State {
	return d.state
}

// Run serves the control channel until it closes. It returns an error only
// when the channel itself becomes unusable; every data-level failure turns
// into an error response instead.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer func() {
		d.state = StateTerminated
		if d.session != nil {
			if err := d.session.Close(); err != nil {
				d.logger.Warn("failed to close session database", "error", err)
			}
		}
	}()

	scanner := bufio.NewScanner(d.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(line, &req); err != nil {
			resp = errResponse(nil, CodeParseError, err.Error())
		} else {
			resp = d.handle(ctx, req)
		}

		if err := d.write(resp); err != nil {
			return fmt.Errorf("control channel write: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		// An oversized line is a data-level failure, but the stream cannot be
		// resynced past it: tell the host once, then terminate cleanly.
		if errors.Is(err, bufio.ErrTooLong) {
			d.logger.Error("request line exceeds limit", "limit_bytes", maxLineBytes)
			return d.write(errResponse(nil, CodeInvalidRequest,
				fmt.Sprintf("request line exceeds %d bytes", maxLineBytes)))
		}
		return fmt.Errorf("control channel read: %w", err)
	}
	return nil
}

// write emits one response line. Marshal failures degrade to an internal
// error response so the host still receives exactly one reply.
func (d *Dispatcher) write(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		d.logger.Error("failed to marshal response", "error", err)
		data, _ = json.Marshal(errResponse(resp.ID, CodeInternalError, "unserializable result"))
	}
	_, err = d.out.Write(append(data, '\n'))
	return err
}

// handle routes one request and always produces a response. Handler panics
// are recovered into internal errors so a bad request cannot kill the worker.
func (d *Dispatcher) handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic", "method", req.Method, "panic", r)
			resp = errResponse(req.ID, CodeInternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if req.Method == "" {
		return errResponse(req.ID, CodeInvalidRequest, "missing method")
	}

	d.logger.Debug("dispatching request", "method", req.Method, "state", d.state.String())

	switch req.Method {
	case "test_connection":
		return d.handleTestConnection(ctx, req)
	case "get_databases":
		return d.handleGetDatabases(ctx, req)
	case "get_tables":
		return d.handleGetTables(ctx, req)
	case "get_columns":
		return d.handleGetColumns(ctx, req)
	case "execute_query":
		return d.handleExecuteQuery(ctx, req)
	case "get_schema_snapshot":
		return d.handleSchemaSnapshot(ctx, req)
	case "get_all_columns_batch":
		return d.handleColumnsBatch(ctx, req)
	case "get_all_foreign_keys_batch":
		return d.handleForeignKeysBatch(ctx, req)
	case "get_schemas", "get_foreign_keys", "get_indexes", "get_views", "get_routines":
		// Delimited files have none of these; the host expects empty lists.
		if _, err := d.requireSession(ctx, req.Params); err != nil {
			return d.errorFrom(req.ID, err)
		}
		return okResponse(req.ID, []any{})
	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// ensureSession builds the session on first use. Once Faulted, the same
// error is returned without rescanning; once Ready, the existing catalog is
// reused even if the request names a different directory.
func (d *Dispatcher) ensureSession(ctx context.Context, database string) error {
	switch d.state {
	case StateReady:
		return nil
	case StateFaulted:
		return d.faultErr
	default:
	}

	if strings.TrimSpace(database) == "" {
		return &rpcError{code: CodeInvalidParams, message: "missing database parameter: no directory to load"}
	}

	d.state = StateConnecting
	session, err := catalog.Open(ctx, database, d.cfg.ParseOptions(), d.logger)
	if err != nil {
		if catalog.IsConnectionError(err) {
			d.state = StateFaulted
			d.faultErr = err
			d.logger.Error("session faulted", "directory", database, "error", err)
		} else {
			d.state = StateIdle
		}
		return err
	}

	d.session = session
	d.executor = engine.New(session.DB(), d.cfg.DefaultPageSize)
	d.state = StateReady
	d.logger.Info("session ready",
		"directory", database,
		"tables", session.TableCount(),
		"load_failures", len(session.Failures()),
	)
	return nil
}

// requireSession resolves the active session, building it on demand from the
// request's connection parameters.
func (d *Dispatcher) requireSession(ctx context.Context, params Params) (*catalog.Session, error) {
	if err := d.ensureSession(ctx, params.Connection.Database); err != nil {
		return nil, err
	}
	return d.session, nil
}

func (d *Dispatcher) handleTestConnection(ctx context.Context, req Request) Response {
	if err := d.ensureSession(ctx, req.Params.Connection.Database); err != nil {
		return d.errorFrom(req.ID, err)
	}
	return okResponse(req.ID, TestConnectionResult{
		Success: true,
		Message: fmt.Sprintf("loaded %d tables from %s", d.session.TableCount(), d.session.DatabaseName()),
	})
}

func (d *Dispatcher) handleGetDatabases(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}
	return okResponse(req.ID, []string{session.DatabaseName()})
}

func (d *Dispatcher) handleGetTables(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}
	return okResponse(req.ID, tableRefs(session.TableNames()))
}

func (d *Dispatcher) handleGetColumns(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}
	if req.Params.Table == "" {
		return errResponse(req.ID, CodeInvalidParams, "missing table parameter")
	}

	columns, err := session.Columns(req.Params.Table)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}
	return okResponse(req.ID, columnDefs(columns))
}

func (d *Dispatcher) handleExecuteQuery(ctx context.Context, req Request) Response {
	_, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}
	query := strings.TrimSpace(req.Params.Query)
	if query == "" {
		return errResponse(req.ID, CodeInvalidParams, "missing query parameter")
	}

	result, err := d.executor.Execute(ctx, query, req.Params.Page, req.Params.PageSize)
	if err != nil {
		// Engine syntax/semantic errors surface verbatim.
		return errResponse(req.ID, CodeQueryError, err.Error())
	}
	return okResponse(req.ID, QueryResult{
		Columns:         result.Columns,
		Rows:            result.Rows,
		TotalCount:      result.TotalCount,
		ExecutionTimeMS: result.ElapsedMS,
	})
}

func (d *Dispatcher) handleSchemaSnapshot(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}

	described := session.Describe()
	snapshot := SchemaSnapshot{
		Tables:      tableRefs(described.Tables),
		Columns:     make(map[string][]ColumnDef, len(described.Columns)),
		ForeignKeys: make(map[string][]any, len(described.Tables)),
	}
	for name, columns := range described.Columns {
		snapshot.Columns[name] = columnDefs(columns)
	}
	for _, name := range described.Tables {
		snapshot.ForeignKeys[name] = []any{}
	}
	return okResponse(req.ID, snapshot)
}

func (d *Dispatcher) handleColumnsBatch(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}

	batch := make(map[string][]ColumnDef)
	for name, columns := range session.ColumnsBatch(req.Params.Tables) {
		batch[name] = columnDefs(columns)
	}
	return okResponse(req.ID, batch)
}

func (d *Dispatcher) handleForeignKeysBatch(ctx context.Context, req Request) Response {
	session, err := d.requireSession(ctx, req.Params)
	if err != nil {
		return d.errorFrom(req.ID, err)
	}

	names := req.Params.Tables
	if len(names) == 0 {
		names = session.TableNames()
	}
	batch := make(map[string][]any, len(names))
	for _, name := range names {
		batch[name] = []any{}
	}
	return okResponse(req.ID, batch)
}

// errorFrom maps a component error onto the protocol error taxonomy.
func (d *Dispatcher) errorFrom(id json.RawMessage, err error) Response {
	var rerr *rpcError
	switch {
	case errors.As(err, &rerr):
		return errResponse(id, rerr.code, rerr.message)
	case catalog.IsConnectionError(err):
		return errResponse(id, CodeConnectionError, err.Error())
	case errors.Is(err, catalog.ErrTableLoadFailed):
		return errResponse(id, CodeLoadError, err.Error())
	case errors.Is(err, catalog.ErrTableNotFound):
		return errResponse(id, CodeInvalidParams, err.Error())
	default:
		return errResponse(id, CodeInternalError, err.Error())
	}
}

// tableRefs shapes table names into the host's table object list.
func tableRefs(names []string) []TableRef {
	refs := make([]TableRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, TableRef{Name: name})
	}
	return refs
}

// columnDefs shapes inferred columns into the host's column object list.
func columnDefs(columns []model.ColumnInfo) []ColumnDef {
	defs := make([]ColumnDef, 0, len(columns))
	for _, col := range columns {
		defs = append(defs, ColumnDef{
			Name:       col.Name,
			DataType:   col.Type.String(),
			IsNullable: col.Nullable,
		})
	}
	return defs
}
