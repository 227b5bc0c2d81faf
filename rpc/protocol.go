// Package rpc implements the newline-delimited JSON-RPC 2.0 control channel
// between the host application and the worker.
package rpc

import "encoding/json"

// Version is the protocol version tag carried by every message.
const Version = "2.0"

// JSON-RPC 2.0 standard error codes.
const (
	// CodeParseError signals a request line that is not valid JSON.
	CodeParseError = -32700
	// CodeInvalidRequest signals a structurally invalid request object.
	CodeInvalidRequest = -32600
	// CodeMethodNotFound signals an unknown method name.
	CodeMethodNotFound = -32601
	// CodeInvalidParams signals a missing or malformed parameter.
	CodeInvalidParams = -32602
	// CodeInternalError signals an unexpected handler failure.
	CodeInternalError = -32603
)

// Application error codes, one per error class.
const (
	// CodeConnectionError covers a missing, unreadable or empty directory.
	CodeConnectionError = -32001
	// CodeLoadError covers a single file that failed to load.
	CodeLoadError = -32002
	// CodeQueryError covers SQL rejected by the engine.
	CodeQueryError = -32003
)

// Request is one incoming control-channel message.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  Params          `json:"params"`
}

// Params carries every parameter any method accepts. Connection-scoped
// fields arrive nested under a second "params" object, mirroring how the
// host serializes its connection settings.
type Params struct {
	Connection ConnectionParams `json:"params"`
	Table      string           `json:"table"`
	Tables     []string         `json:"tables"`
	Query      string           `json:"query"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// ConnectionParams identifies the target directory.
type ConnectionParams struct {
	Database string `json:"database"`
}

// Response is one outgoing control-channel message. Exactly one of Result
// and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a structured protocol error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// okResponse builds a success response preserving the request id.
func okResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: Version, ID: id, Result: result}
}

// errResponse builds an error response preserving the request id.
func errResponse(id json.RawMessage, code int, message string) Response {
	return Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: message}}
}

// TestConnectionResult is the result of test_connection.
type TestConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TableRef names one table. Schema and Comment are always null for
// file-backed tables.
type TableRef struct {
	Name    string `json:"name"`
	Schema  any    `json:"schema"`
	Comment any    `json:"comment"`
}

// ColumnDef is the column shape shared by get_columns, the snapshot and the
// batch call. DataType and IsNullable come from inference; the remaining
// fields are fixed because delimited files carry no constraints.
type ColumnDef struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	IsNullable      bool   `json:"is_nullable"`
	ColumnDefault   any    `json:"column_default"`
	IsPrimaryKey    bool   `json:"is_primary_key"`
	IsAutoIncrement bool   `json:"is_auto_increment"`
	Comment         any    `json:"comment"`
}

// SchemaSnapshot is the full table→columns dump for diagram rendering.
type SchemaSnapshot struct {
	Tables      []TableRef             `json:"tables"`
	Columns     map[string][]ColumnDef `json:"columns"`
	ForeignKeys map[string][]any       `json:"foreign_keys"`
}

// QueryResult is one page of an execute_query result.
type QueryResult struct {
	Columns         []string `json:"columns"`
	Rows            [][]any  `json:"rows"`
	TotalCount      int      `json:"total_count"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
}
