package model

import "strings"

// delimiterCandidates lists the candidate separators in preference order.
// Ties between equally consistent candidates resolve to the earliest entry.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DefaultDelimiter is the fallback separator when no candidate splits the
// sample consistently.
const DefaultDelimiter = ','

// DelimiterProfile is the result of sniffing a text sample. It is used only
// while loading a table and is not retained afterwards.
type DelimiterProfile struct {
	// Delimiter is the chosen field separator.
	Delimiter rune
	// Consistent is false when the sniffer fell back to the default because
	// no candidate produced a uniform field count.
	Consistent bool
	// FieldCount is the uniform number of fields per line, 0 when inconsistent.
	FieldCount int
}

// DetectDelimiter picks the most probable field separator for a text sample.
// A candidate wins when every sampled line splits into the same field count
// greater than one. The final line may be shorter than the others: a ragged
// last line is ignored rather than disqualifying the candidate, since files
// often end with a truncated row or a missing trailing newline.
func DetectDelimiter(sample string, maxLines int) DelimiterProfile {
	lines := sampleLines(sample, maxLines)
	if len(lines) == 0 {
		return DelimiterProfile{Delimiter: DefaultDelimiter, Consistent: false}
	}

	for _, candidate := range delimiterCandidates {
		if count, ok := uniformFieldCount(lines, candidate); ok {
			return DelimiterProfile{Delimiter: candidate, Consistent: true, FieldCount: count}
		}
	}

	return DelimiterProfile{Delimiter: DefaultDelimiter, Consistent: false}
}

// sampleLines splits the sample into at most maxLines non-empty lines,
// tolerating both \n and \r\n endings.
func sampleLines(sample string, maxLines int) []string {
	raw := strings.Split(strings.ReplaceAll(sample, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) >= maxLines {
			break
		}
	}
	return lines
}

// uniformFieldCount reports the field count produced by candidate when it is
// identical across every sampled line, requiring at least two fields.
func uniformFieldCount(lines []string, candidate rune) (int, bool) {
	want := strings.Count(lines[0], string(candidate)) + 1
	if want < 2 {
		return 0, false
	}
	for i, line := range lines[1:] {
		got := strings.Count(line, string(candidate)) + 1
		if got == want {
			continue
		}
		// Allow a short final line caused by a missing trailing delimiter.
		if i == len(lines)-2 && got < want {
			continue
		}
		return 0, false
	}
	return want, true
}
