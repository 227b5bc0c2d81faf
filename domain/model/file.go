package model

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// FileType represents supported file types
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// utf8BOM is stripped from the start of a file before parsing.
const utf8BOM = "\uFEFF"

// ParseOptions tunes how a file is turned into a Table.
type ParseOptions struct {
	// SniffLines is the number of lines sampled for delimiter detection.
	SniffLines int
	// SampleRows caps the number of records examined for type inference.
	SampleRows int
}

// File represents a source file that can be converted to a Table.
type File struct {
	path     string
	fileType FileType
}

// NewFile creates a new File
func NewFile(path string) *File {
	return &File{
		path:     path,
		fileType: detectFileType(path),
	}
}

// IsSupportedFile checks if the file name has an eligible extension,
// optionally wrapped in one compression extension.
func IsSupportedFile(fileName string) bool {
	fileName = strings.ToLower(fileName)

	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}

	return strings.HasSuffix(fileName, ExtCSV) || strings.HasSuffix(fileName, ExtTSV)
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// IsTSV returns true if the file is TSV format
func (f *File) IsTSV() bool {
	return f.fileType == FileTypeTSV
}

// IsGZ returns true if file is gzip compressed
func (f *File) IsGZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), ExtGZ)
}

// IsBZ2 returns true if file is bzip2 compressed
func (f *File) IsBZ2() bool {
	return strings.HasSuffix(strings.ToLower(f.path), ExtBZ2)
}

// IsXZ returns true if file is xz compressed
func (f *File) IsXZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), ExtXZ)
}

// IsZSTD returns true if file is zstd compressed
func (f *File) IsZSTD() bool {
	return strings.HasSuffix(strings.ToLower(f.path), ExtZSTD)
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) FileType {
	basePath := strings.ToLower(path)

	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(basePath, ext) {
			basePath = strings.TrimSuffix(basePath, ext)
			break
		}
	}

	switch filepath.Ext(basePath) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	default:
		return FileTypeUnsupported
	}
}

// openReader opens the file and returns a reader that handles compression.
func (f *File) openReader() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader = file
	closer := file.Close

	switch {
	case f.IsGZ():
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		reader = gzReader
		closer = func() error {
			gzReader.Close()
			return file.Close()
		}
	case f.IsBZ2():
		reader = bzip2.NewReader(file)
	case f.IsXZ():
		xzReader, err := xz.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		reader = xzReader
	case f.IsZSTD():
		decoder, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		reader = decoder
		closer = func() error {
			decoder.Close()
			return file.Close()
		}
	}

	return reader, closer, nil
}

// ToTable reads the file fully and converts it into a Table: delimiter
// detection, header normalization, row shaping and column type inference.
func (f *File) ToTable(opts ParseOptions) (*Table, error) {
	if f.fileType == FileTypeUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, f.path)
	}

	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	content := strings.TrimPrefix(string(raw), utf8BOM)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	// TSV files carry their delimiter in the extension; everything else is sniffed.
	profile := DelimiterProfile{Delimiter: '\t', Consistent: true}
	if !f.IsTSV() {
		profile = DetectDelimiter(content, opts.SniffLines)
	}

	csvReader := csv.NewReader(strings.NewReader(content))
	csvReader.Comma = profile.Delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", f.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	header := NormalizeHeader(rows[0])
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, shapeRecord(row, len(header)))
	}

	return NewTable(TableNameFromPath(f.path), f.path, profile, header, records, opts.SampleRows), nil
}

// NormalizeHeader trims header names, synthesizes placeholders for empty
// names and appends numeric suffixes to duplicates, deterministically.
func NormalizeHeader(raw []string) Header {
	seen := make(map[string]int, len(raw))
	header := make(Header, 0, len(raw))

	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
			seen[name]++
		}
		header = append(header, name)
	}

	return header
}

// shapeRecord pads short rows with empty fields and truncates long ones so
// every record matches the header width.
func shapeRecord(row []string, width int) Record {
	record := make(Record, width)
	for i := range record {
		if i < len(row) {
			record[i] = strings.TrimSpace(row[i])
		}
	}
	return record
}
