package model

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testParseOptions() ParseOptions {
	return ParseOptions{SniffLines: 64, SampleRows: 1000}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsSupportedFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fileName string
		want     bool
	}{
		{"users.csv", true},
		{"users.tsv", true},
		{"USERS.CSV", true},
		{"users.csv.gz", true},
		{"users.tsv.bz2", true},
		{"users.csv.xz", true},
		{"users.csv.zst", true},
		{"users.txt", false},
		{"users.xlsx", false},
		{"users.csv.bak", false},
		{"users", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.fileName, func(t *testing.T) {
			t.Parallel()

			if got := IsSupportedFile(tt.fileName); got != tt.want {
				t.Errorf("IsSupportedFile(%q) = %v, want %v", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestFileToTable(t *testing.T) {
	t.Parallel()

	t.Run("plain csv", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "users.csv", "id,name\n1,alice\n2,bob\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}

		if table.Name() != "users" {
			t.Errorf("name = %q, want %q", table.Name(), "users")
		}
		if !table.Header().Equal(NewHeader([]string{"id", "name"})) {
			t.Errorf("header = %v", table.Header())
		}
		if table.RowCount() != 2 {
			t.Errorf("rows = %d, want 2", table.RowCount())
		}
		if table.Delimiter().Delimiter != ',' || !table.Delimiter().Consistent {
			t.Errorf("delimiter profile = %+v", table.Delimiter())
		}
		if table.Columns()[0].Type != ColumnTypeInteger {
			t.Errorf("id type = %v, want INTEGER", table.Columns()[0].Type)
		}
	})

	t.Run("semicolon csv is sniffed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "data.csv", "a;b\n1;2\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.Delimiter().Delimiter != ';' {
			t.Errorf("delimiter = %q, want ';'", table.Delimiter().Delimiter)
		}
	})

	t.Run("tsv skips sniffing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "data.tsv", "a\tb\n1,5\t2\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.Delimiter().Delimiter != '\t' {
			t.Errorf("delimiter = %q, want tab", table.Delimiter().Delimiter)
		}
		if got := table.Records()[0][0]; got != "1,5" {
			t.Errorf("field = %q, want %q", got, "1,5")
		}
	})

	t.Run("gzip compressed csv", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "logs.csv.gz")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		gz := gzip.NewWriter(f)
		if _, err := gz.Write([]byte("ts,msg\n1,boot\n")); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.Name() != "logs" {
			t.Errorf("name = %q, want %q", table.Name(), "logs")
		}
		if table.RowCount() != 1 {
			t.Errorf("rows = %d, want 1", table.RowCount())
		}
	})

	t.Run("bom is stripped from first header cell", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "bom.csv", "\uFEFFid,name\n1,a\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.Header()[0] != "id" {
			t.Errorf("first header = %q, want %q", table.Header()[0], "id")
		}
	})

	t.Run("header only file has zero rows", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "empty.csv", "id,name\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.RowCount() != 0 {
			t.Errorf("rows = %d, want 0", table.RowCount())
		}
		if table.Columns()[0].Type != ColumnTypeText || !table.Columns()[0].Nullable {
			t.Errorf("columns of empty table should be nullable TEXT, got %+v", table.Columns()[0])
		}
	})

	t.Run("blank file is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "blank.csv", "")

		if _, err := NewFile(path).ToTable(testParseOptions()); !errors.Is(err, ErrEmptyFile) {
			t.Errorf("error = %v, want ErrEmptyFile", err)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFile(filepath.Join(t.TempDir(), "nope.csv")).ToTable(testParseOptions())
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("unsupported extension is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "data.txt", "a,b\n1,2\n")

		if _, err := NewFile(path).ToTable(testParseOptions()); !errors.Is(err, ErrUnsupportedFileType) {
			t.Errorf("error = %v, want ErrUnsupportedFileType", err)
		}
	})

	t.Run("ragged rows are padded and truncated", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "ragged.csv", "a,b,c\n1,2\n3,4,5,6\n")

		table, err := NewFile(path).ToTable(testParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		if table.RowCount() != 2 {
			t.Fatalf("rows = %d, want 2", table.RowCount())
		}
		if !table.Records()[0].Equal(NewRecord([]string{"1", "2", ""})) {
			t.Errorf("short row = %v, want padded", table.Records()[0])
		}
		if !table.Records()[1].Equal(NewRecord([]string{"3", "4", "5"})) {
			t.Errorf("long row = %v, want truncated", table.Records()[1])
		}
	})
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "trimmed",
			raw:  []string{" id ", "name"},
			want: []string{"id", "name"},
		},
		{
			name: "empty names get placeholders",
			raw:  []string{"", "name", ""},
			want: []string{"column_1", "name", "column_3"},
		},
		{
			name: "duplicates get numeric suffixes",
			raw:  []string{"id", "id", "id"},
			want: []string{"id", "id_2", "id_3"},
		},
		{
			name: "suffix collision stays unique",
			raw:  []string{"a", "a", "a_2"},
			want: []string{"a", "a_2", "a_2_2"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeHeader(tt.raw)
			if !got.Equal(NewHeader(tt.want)) {
				t.Errorf("NormalizeHeader(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
