package model

import (
	"path/filepath"
	"strings"
)

// Table represents one source file materialized as a database table.
type Table struct {
	// name is the table name derived from the file path, possibly disambiguated.
	name string
	// path is the source file path.
	path string
	// delimiter is the profile chosen while parsing. Loading detail only.
	delimiter DelimiterProfile
	// header is the de-duplicated column name row.
	header Header
	// records holds every data row of the file.
	records []Record
	// columns contains the inferred definition of each column.
	columns []ColumnInfo
}

// NewTable creates a Table with column types inferred from at most
// sampleLimit records.
func NewTable(name, path string, delimiter DelimiterProfile, header Header, records []Record, sampleLimit int) *Table {
	return &Table{
		name:      name,
		path:      path,
		delimiter: delimiter,
		header:    header,
		records:   records,
		columns:   InferColumnsInfo(header, records, sampleLimit),
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Rename replaces the table name. Used when two files share a stem and the
// later one needs a disambiguating suffix.
func (t *Table) Rename(name string) {
	t.name = name
}

// Path returns the source file path.
func (t *Table) Path() string {
	return t.path
}

// Delimiter returns the delimiter profile chosen during parsing.
func (t *Table) Delimiter() DelimiterProfile {
	return t.delimiter
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// Columns returns the inferred column definitions in source order.
func (t *Table) Columns() []ColumnInfo {
	return t.columns
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.records)
}

// TableNameFromPath derives a table name from a file path: the base name
// without compression and format extensions, sanitized to a valid identifier.
func TableNameFromPath(path string) string {
	fileName := filepath.Base(path)
	// Remove compression extensions first
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	// Then remove the file type extension
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return SanitizeIdentifier(stem, "table")
}

// SanitizeIdentifier reduces a raw name to alphanumerics and underscores so it
// can be used as a SQLite identifier. Spaces, dashes and dots become
// underscores; a leading digit gets a fallback prefix; an empty result
// becomes the fallback itself.
func SanitizeIdentifier(name, fallback string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")

	var sanitized strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()
	if result == "" {
		return fallback
	}
	if result[0] >= '0' && result[0] <= '9' {
		result = fallback + "_" + result
	}
	return result
}
