// Package catalog holds the per-session registry of loaded tables and the
// backing in-memory SQLite database.
package catalog

import "errors"

// Connection-level errors. Any of these faults the session: the target
// directory cannot serve as a database at all.
var (
	// ErrDirectoryNotFound is returned when the target path does not exist.
	ErrDirectoryNotFound = errors.New("directory does not exist")
	// ErrNotDirectory is returned when the target path is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
	// ErrDirectoryUnreadable is returned when the directory cannot be listed.
	ErrDirectoryUnreadable = errors.New("directory is not readable")
	// ErrNoEligibleFiles is returned when the directory holds no .csv/.tsv files.
	ErrNoEligibleFiles = errors.New("no .csv / .tsv files found")
	// ErrNoTablesLoaded is returned when every eligible file failed to load.
	ErrNoTablesLoaded = errors.New("no tables could be loaded")
)

// ErrTableNotFound is returned by introspection calls naming an unknown table.
var ErrTableNotFound = errors.New("table not found in catalog")

// ErrTableLoadFailed is returned by introspection calls naming a table whose
// source file was found but could not be loaded.
var ErrTableLoadFailed = errors.New("table failed to load")

// IsConnectionError reports whether err belongs to the connection-level class.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrDirectoryNotFound) ||
		errors.Is(err, ErrNotDirectory) ||
		errors.Is(err, ErrDirectoryUnreadable) ||
		errors.Is(err, ErrNoEligibleFiles) ||
		errors.Is(err, ErrNoTablesLoaded)
}
