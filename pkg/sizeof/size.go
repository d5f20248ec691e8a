package sizeof

import (
	"fmt"
	"strconv"
	"strings"
)

// units maps a case-insensitive suffix to its multiplier in bytes.
// SI units are base-1000; IEC units are base-1024 (spec.md §4.2).
var units = map[string]float64{
	"b":   1,
	"kb":  1e3,
	"mb":  1e6,
	"gb":  1e9,
	"tb":  1e12,
	"kib": 1024,
	"mib": 1024 * 1024,
	"gib": 1024 * 1024 * 1024,
	"tib": 1024 * 1024 * 1024 * 1024,
}

// ParseSize parses a human size string such as "1.5GB" or "512 KiB" into
// a byte count. Whitespace between the number and the unit is allowed.
// A bare number with no suffix is interpreted as bytes. Zero, negative,
// and empty inputs are rejected.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("sizeof: empty size string")
	}

	i := 0
	for i < len(s) && (isDigit(s[i]) || s[i] == '.' || s[i] == '-' || s[i] == '+') {
		i++
	}
	numPart := s[:i]
	unitPart := strings.ToLower(strings.TrimSpace(s[i:]))
	if unitPart == "" {
		unitPart = "b"
	}

	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("sizeof: invalid numeric value %q: %w", numPart, err)
	}

	mult, ok := units[unitPart]
	if !ok {
		return 0, fmt.Errorf("sizeof: unknown unit %q", unitPart)
	}

	bytes := n * mult
	if bytes <= 0 {
		return 0, fmt.Errorf("sizeof: size must be positive, got %q", s)
	}

	return int64(bytes), nil
}

// FormatSize renders a byte count as a human string, SI (binary=false)
// or IEC (binary=true), choosing the largest unit that keeps the
// magnitude at least 1.
func FormatSize(n int64, binary bool) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}

	if binary {
		return formatWithSteps(n, 1024, []string{"B", "KiB", "MiB", "GiB", "TiB"})
	}
	return formatWithSteps(n, 1000, []string{"B", "KB", "MB", "GB", "TB"})
}

func formatWithSteps(n int64, step float64, suffixes []string) string {
	val := float64(n)
	idx := 0
	for val >= step && idx < len(suffixes)-1 {
		val /= step
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d %s", n, suffixes[0])
	}
	// Trim a trailing ".0" the way a human-size formatter would.
	s := strconv.FormatFloat(val, 'f', -1, 64)
	return fmt.Sprintf("%s %s", s, suffixes[idx])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
