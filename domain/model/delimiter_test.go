package model

import (
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		sample         string
		wantDelimiter  rune
		wantConsistent bool
	}{
		{
			name:           "comma",
			sample:         "id,name,age\n1,alice,30\n2,bob,25\n",
			wantDelimiter:  ',',
			wantConsistent: true,
		},
		{
			name:           "semicolon",
			sample:         "id;name;age\n1;alice;30\n2;bob;25\n",
			wantDelimiter:  ';',
			wantConsistent: true,
		},
		{
			name:           "tab",
			sample:         "id\tname\tage\n1\talice\t30\n2\tbob\t25\n",
			wantDelimiter:  '\t',
			wantConsistent: true,
		},
		{
			name:           "pipe",
			sample:         "id|name|age\n1|alice|30\n2|bob|25\n",
			wantDelimiter:  '|',
			wantConsistent: true,
		},
		{
			name:           "comma wins tie over semicolon",
			sample:         "a,b;c\n1,2;3\n",
			wantDelimiter:  ',',
			wantConsistent: true,
		},
		{
			name:           "inconsistent field counts fall back to comma",
			sample:         "a,b,c\n1,2\n3,4,5,6\nplain text line\n",
			wantDelimiter:  ',',
			wantConsistent: false,
		},
		{
			name:           "no delimiter at all falls back to comma",
			sample:         "justoneword\nanother\n",
			wantDelimiter:  ',',
			wantConsistent: false,
		},
		{
			name:           "empty sample falls back to comma",
			sample:         "",
			wantDelimiter:  ',',
			wantConsistent: false,
		},
		{
			name:           "crlf line endings",
			sample:         "id;name\r\n1;alice\r\n2;bob\r\n",
			wantDelimiter:  ';',
			wantConsistent: true,
		},
		{
			name:           "short final line tolerated",
			sample:         "a|b|c\n1|2|3\n4|5",
			wantDelimiter:  '|',
			wantConsistent: true,
		},
		{
			name:           "missing trailing newline",
			sample:         "x,y\n1,2",
			wantDelimiter:  ',',
			wantConsistent: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profile := DetectDelimiter(tt.sample, 64)
			if profile.Delimiter != tt.wantDelimiter {
				t.Errorf("delimiter = %q, want %q", profile.Delimiter, tt.wantDelimiter)
			}
			if profile.Consistent != tt.wantConsistent {
				t.Errorf("consistent = %v, want %v", profile.Consistent, tt.wantConsistent)
			}
		})
	}
}

func TestDetectDelimiterSampleCap(t *testing.T) {
	t.Parallel()

	// Consistent for the first 3 lines, garbage afterwards: a 3-line sample
	// must not see the garbage.
	sample := "a;b\n1;2\n3;4\n" + strings.Repeat("x\n", 10)

	profile := DetectDelimiter(sample, 3)
	if profile.Delimiter != ';' || !profile.Consistent {
		t.Errorf("got (%q, %v), want (';', true)", profile.Delimiter, profile.Consistent)
	}
}

func TestDetectDelimiterFieldCount(t *testing.T) {
	t.Parallel()

	profile := DetectDelimiter("a,b,c\n1,2,3\n", 64)
	if profile.FieldCount != 3 {
		t.Errorf("field count = %d, want 3", profile.FieldCount)
	}
}
