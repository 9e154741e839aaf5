package importer

import (
	"regexp"
	"strconv"
	"strings"
)

// TBD is the sentinel for fields the source file leaves open.
const TBD = "待定"

const (
	defaultStartWeek = 1
	defaultEndWeek   = 16
)

var weekBracePattern = regexp.MustCompile(`\{(\d+)-(\d+)周\}`)

// firstClassroom reduces a semicolon-delimited location list to its first
// entry. Multi-location resolution is out of scope.
func firstClassroom(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TBD
	}
	if idx := strings.Index(raw, ";"); idx >= 0 {
		return strings.TrimSpace(raw[:idx])
	}
	return raw
}

// normalizeTimeSlot rewrites "星期四第4-5节{1-16周}" style values into the
// canonical "周四 4-5节" display form: the long weekday prefix becomes 周 and
// any week-range brace annotation is dropped.
func normalizeTimeSlot(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TBD
	}
	raw = strings.ReplaceAll(raw, "星期", "周")
	raw = strings.ReplaceAll(raw, "第", " ")
	if idx := strings.Index(raw, "{"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

// weeksFromBrace extracts start/end weeks from a {n-m周} annotation embedded
// in a raw time-slot value, defaulting to the full term when absent.
func weeksFromBrace(raw string) (int, int) {
	match := weekBracePattern.FindStringSubmatch(raw)
	if match == nil {
		return defaultStartWeek, defaultEndWeek
	}
	start, err := strconv.Atoi(match[1])
	if err != nil {
		return defaultStartWeek, defaultEndWeek
	}
	end, err := strconv.Atoi(match[2])
	if err != nil {
		return defaultStartWeek, defaultEndWeek
	}
	return start, end
}

// parseWeekRange reads a "1-16周" style column value. Any parse failure
// falls back to the full term rather than failing the row.
func parseWeekRange(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultStartWeek, defaultEndWeek
	}
	raw = strings.ReplaceAll(raw, "周", "")
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return defaultStartWeek, defaultEndWeek
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return defaultStartWeek, defaultEndWeek
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return defaultStartWeek, defaultEndWeek
	}
	return start, end
}

// atoiOrZero parses numeric capacity/selected-count cells, treating blanks
// and junk as zero.
func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
