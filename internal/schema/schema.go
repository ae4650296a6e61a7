// Package schema checks a source file's header against its configured column
// pattern and checks that the header binds to a record type before any row is read.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// PatternSeparator joins column names in a configured pattern.
const PatternSeparator = ";"

var (
	// ErrSchemaMismatch is returned when a header does not equal its pattern.
	ErrSchemaMismatch = errors.New("column pattern mismatch")
	// ErrUnboundColumn is returned when a header column has no record field to land in,
	// or a record key column is absent from the header.
	ErrUnboundColumn = errors.New("column binding failed")
)

// SplitPattern splits a semicolon-joined pattern into its ordered column names.
func SplitPattern(pattern string) []string {
	return strings.Split(pattern, PatternSeparator)
}

// Matches reports whether header and expected hold the same names in the same order.
func Matches(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i := range header {
		if header[i] != expected[i] {
			return false
		}
	}
	return true
}

// Validate compares header against the configured pattern.
func Validate(header []string, pattern string) error {
	if !Matches(header, SplitPattern(pattern)) {
		return fmt.Errorf("%w: expected [%s], got [%s]",
			ErrSchemaMismatch, pattern, strings.Join(header, PatternSeparator))
	}
	return nil
}

// Bind verifies once per file that every header column is bindable by the
// record and that every key column is present.
func Bind(header, columns, keyColumns []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	seen := make(map[string]bool, len(header))
	var unknown []string
	for _, h := range header {
		if !known[h] {
			unknown = append(unknown, h)
			continue
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicated column %q", ErrUnboundColumn, h)
		}
		seen[h] = true
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown columns %s", ErrUnboundColumn, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, k := range keyColumns {
		if !seen[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required columns %s", ErrUnboundColumn, strings.Join(missing, ", "))
	}

	return nil
}
