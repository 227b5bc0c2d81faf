package model

import "errors"

// ErrEmptyFile is returned when a file contains no header row.
var ErrEmptyFile = errors.New("empty file")

// ErrUnsupportedFileType is returned for files outside the eligible set.
var ErrUnsupportedFileType = errors.New("unsupported file type")
