package rsm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LineRange selects the half-open line interval [Start, End) of a file.
// Lines are numbered from 1.
type LineRange struct {
	Start uint16
	End   uint16
}

// ParseLineRange parses a "START..END" argument into a LineRange. Both
// bounds are required, must fit in 16 bits, and must satisfy START < END.
func ParseLineRange(s string) (LineRange, error) {
	start, end, found := strings.Cut(s, "..")
	if !found {
		return LineRange{}, fmt.Errorf("invalid range %q, want START..END", s)
	}
	a, err := strconv.ParseUint(strings.TrimSpace(start), 10, 16)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid range start %q", start)
	}
	b, err := strconv.ParseUint(strings.TrimSpace(end), 10, 16)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid range end %q", end)
	}
	if a >= b {
		return LineRange{}, fmt.Errorf("invalid range %q, start must be below end", s)
	}
	return LineRange{Start: uint16(a), End: uint16(b)}, nil
}

// ResolveInput produces the task body from the possible sources. Without a
// file it is the inline text, possibly empty. With a file it is the whole
// file, the single line selected by line, or the lines selected by rng
// joined with newlines. At most one of line and rng may be set.
//
// Whole-file contents are returned as-is, trailing newline included; callers
// must not trim further.
func ResolveInput(file string, line *uint16, rng *LineRange, inline string) (string, error) {
	if file == "" {
		return inline, nil
	}
	if line != nil && rng != nil {
		return "", &FileResolveError{Detail: "both a line and a range were given"}
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", &FileResolveError{Detail: err.Error()}
	}
	if line == nil && rng == nil {
		return string(b), nil
	}
	lines := splitLines(string(b))
	if line != nil {
		n := int(*line)
		if n < 1 || n > len(lines) {
			return "", &FileResolveError{Detail: fmt.Sprintf("line %d is out of range, file has %d lines", n, len(lines))}
		}
		return lines[n-1], nil
	}
	start, end := int(rng.Start), int(rng.End)
	if start < 1 || start >= end {
		return "", &FileResolveError{Detail: fmt.Sprintf("invalid range %d..%d", start, end)}
	}
	// The half-open end may point at most one past the last line.
	if end-1 > len(lines) {
		return "", &FileResolveError{Detail: fmt.Sprintf("range %d..%d is out of range, file has %d lines", start, end, len(lines))}
	}
	return strings.Join(lines[start-1:end-1], "\n"), nil
}

// splitLines splits on newlines without producing a phantom empty line for
// a trailing newline.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
