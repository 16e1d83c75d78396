package scoring

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const dateLayout = "2006-01-02"

// clampScore truncates a weighted sum to an integer and caps it at max
func clampScore(sum float64, max int) int {
	score := int(sum)
	if score > max {
		return max
	}
	if score < 0 {
		return 0
	}
	return score
}

// tiered maps a score onto HIGH/MEDIUM/LOW with optional forcing overrides
func tiered(score, high, medium int, forceHigh, forceMedium bool) models.Severity {
	switch {
	case score >= high || forceHigh:
		return models.SeverityHigh
	case score >= medium || forceMedium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// parseDate accepts a plain date or an RFC 3339 timestamp
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// daysUntil counts whole days from now to t, negative when t is in the past
func daysUntil(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}

// yearsSince is the fractional age in years of t at now
func yearsSince(now, t time.Time) float64 {
	return now.Sub(t).Hours() / 24 / 365.25
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pct renders a fraction as a percent without trailing zeros: 0.055 -> "5.5"
func pct(fraction float64) string {
	return num(fraction * 100)
}

// num renders a value rounded to two places without trailing zeros
func num(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

// money formats whole dollars with thousands separators: 1234567.8 -> "1,234,568"
func money(v float64) string {
	neg := v < 0
	digits := strconv.FormatInt(int64(math.Abs(math.Round(v))), 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// leadingInt returns the first integer in s, e.g. "7-10 years" -> 7
func leadingInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[start:])
	return n, err == nil
}

func accountKey(accountNumber string) string {
	return strings.ReplaceAll(accountNumber, "-", "")
}
