package quarter

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeRowDate converts a grid-entered date (m/d/yyyy or mm/dd/yyyy, with
// "/" or "-" separators) to ISO YYYY-MM-DD. Already-ISO input passes through.
func NormalizeRowDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	sep := "/"
	if !strings.Contains(s, "/") && strings.Contains(s, "-") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return "", fmt.Errorf("unrecognized date format %q", raw)
	}

	// YYYY-MM-DD style input: the year leads.
	if len(parts[0]) == 4 {
		parts = []string{parts[1], parts[2], parts[0]}
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month in date %q", raw)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("invalid day in date %q", raw)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1900 || year > 2100 {
		return "", fmt.Errorf("invalid year in date %q", raw)
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}
