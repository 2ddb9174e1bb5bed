package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCount renders a large count as a compact human-readable string:
// 1200000 -> "1.2M", 3400 -> "3.4K", 812 -> "812". Values below one
// thousand are comma-grouped.
func FormatCount(n int64) string {
	switch {
	case n <= 0:
		return "0"
	case n >= 1_000_000_000:
		return trimTrailingZero(float64(n)/1_000_000_000) + "B"
	case n >= 1_000_000:
		return trimTrailingZero(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimTrailingZero(float64(n)/1_000) + "K"
	default:
		return groupThousands(n)
	}
}

func trimTrailingZero(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", f), ".0")
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ParseCount parses human-formatted counts back into raw integers. It
// accepts plain digits, comma grouping and the K/M/B suffixes produced by
// FormatCount. Unparseable input yields 0 rather than an error: one
// malformed count on one video must never abort a playlist.
func ParseCount(s string) int64 {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if s == "" || s == "-" || s == "N/A" {
		return 0
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "B"):
		mult = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		mult = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1e3
		s = strings.TrimSuffix(s, "K")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f * mult)
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS for durations of an
// hour or more. Non-positive input renders as "00:00".
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatPercent renders a ratio as a percentage string with two decimals:
// 0.1234 -> "12.34%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// ParseISODuration converts an ISO-8601 duration such as "PT1H23M45S" into
// seconds. The platform only emits the time components, so days and larger
// units are not handled. Malformed input yields 0.
func ParseISODuration(s string) int64 {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "PT") {
		return 0
	}
	s = strings.TrimPrefix(s, "PT")

	var total, cur int64
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int64(r-'0')
		case r == 'H':
			total += cur * 3600
			cur = 0
		case r == 'M':
			total += cur * 60
			cur = 0
		case r == 'S':
			total += cur
			cur = 0
		default:
			return 0
		}
	}
	return total
}
