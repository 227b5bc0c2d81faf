// Package model provides the domain model for the tabularis csv plugin worker.
package model

// Header is the ordered list of column names parsed from a file's first row.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is one data row from a file.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// ColumnType represents the inferred storage type of a column.
type ColumnType int

const (
	// ColumnTypeText represents TEXT column type
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger represents INTEGER column type
	ColumnTypeInteger
	// ColumnTypeReal represents REAL column type
	ColumnTypeReal
	// ColumnTypeBoolean represents a boolean stored as INTEGER 0/1
	ColumnTypeBoolean
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
	sqlTypeBoolean = "BOOLEAN"
)

// String returns the SQL type name used in reported column metadata.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeText:
		return sqlTypeText
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeReal:
		return sqlTypeReal
	case ColumnTypeBoolean:
		return sqlTypeBoolean
	default:
		return sqlTypeText
	}
}

// StorageType returns the SQLite column affinity for the type.
// SQLite has no boolean affinity, so booleans are stored as INTEGER.
func (ct ColumnType) StorageType() string {
	if ct == ColumnTypeBoolean {
		return sqlTypeInteger
	}
	return ct.String()
}

// ColumnInfo represents one column of a loaded table.
type ColumnInfo struct {
	// Name is the column name after trimming and de-duplication.
	Name string
	// Type is the inferred storage type.
	Type ColumnType
	// Nullable is true when any sampled value was empty.
	Nullable bool
	// Ordinal is the zero-based position in the source file.
	Ordinal int
}
