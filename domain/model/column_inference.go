package model

import (
	"strconv"
	"strings"
)

// booleanTokens is the recognized boolean token set, lower-cased.
// "0" and "1" are absent on purpose: the integer check runs first and claims them.
var booleanTokens = map[string]bool{
	"true":  true,
	"false": true,
	"t":     true,
	"f":     true,
	"yes":   true,
	"no":    true,
}

// IsBooleanToken reports whether value is a recognized boolean literal.
func IsBooleanToken(value string) bool {
	return booleanTokens[strings.ToLower(strings.TrimSpace(value))]
}

// ParseBoolean converts a recognized boolean token to its integer storage value.
func ParseBoolean(value string) (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "t", "yes":
		return 1, true
	case "false", "f", "no":
		return 0, true
	default:
		return 0, false
	}
}

// InferColumnType infers the storage type for one column from its sampled values.
// Empty values never influence the type but make the column nullable.
// A column with zero non-empty values is text, nullable.
func InferColumnType(values []string) (ColumnType, bool) {
	allInteger := true
	allReal := true
	allBoolean := true
	nullable := false
	nonEmpty := 0

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			nullable = true
			continue
		}
		nonEmpty++

		if allInteger {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				allInteger = false
			}
		}
		if allReal {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				allReal = false
			}
		}
		if allBoolean && !IsBooleanToken(value) {
			allBoolean = false
		}

		// Once the type has degraded to text, later values can still flip
		// nullability, so keep scanning until that is settled too.
		if !allInteger && !allReal && !allBoolean && nullable {
			break
		}
	}

	if nonEmpty == 0 {
		return ColumnTypeText, true
	}

	switch {
	case allInteger:
		return ColumnTypeInteger, nullable
	case allReal:
		return ColumnTypeReal, nullable
	case allBoolean:
		return ColumnTypeBoolean, nullable
	default:
		return ColumnTypeText, nullable
	}
}

// InferColumnsInfo infers column information from a header and data records.
// At most sampleLimit records are examined per column; sampleLimit <= 0 means
// every record. Records shorter than the header contribute an empty value for
// the missing columns, which marks those columns nullable.
func InferColumnsInfo(header Header, records []Record, sampleLimit int) []ColumnInfo {
	columnCount := len(header)
	if columnCount == 0 {
		return nil
	}

	sample := records
	if sampleLimit > 0 && len(records) > sampleLimit {
		sample = records[:sampleLimit]
	}

	columns := make([]ColumnInfo, columnCount)
	for i, name := range header {
		values := make([]string, 0, len(sample))
		for _, record := range sample {
			if i < len(record) {
				values = append(values, record[i])
			} else {
				values = append(values, "")
			}
		}

		colType, nullable := InferColumnType(values)
		columns[i] = ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: nullable,
			Ordinal:  i,
		}
	}

	return columns
}
