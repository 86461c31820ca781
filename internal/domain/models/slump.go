package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	decimalPattern  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	fractionPattern = regexp.MustCompile(`^(\d+)/(\d+)$`)
	wholePattern    = regexp.MustCompile(`^\d+$`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	inchMarks       = strings.NewReplacer(`"`, "", "”", "", "″", "", "“", "")
)

// Slump is a parsed slump reading in inches with its display text.
type Slump struct {
	Value float64
	Text  string
}

// ParseSlump reads a field slump entry such as `9.75`, `7/8` or `9 3/4"`.
// Value and Text always come from the same input.
func ParseSlump(raw string) (Slump, error) {
	normalized := strings.TrimSpace(strings.ToLower(raw))
	normalized = strings.TrimSpace(inchMarks.Replace(normalized))
	if normalized == "" {
		return Slump{}, Reject("slump", "value is required, e.g. 9 3/4\"")
	}

	if decimalPattern.MatchString(normalized) {
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return Slump{}, Reject("slump", "invalid number %q", raw)
		}
		return Slump{Value: v, Text: FormatNumber(v) + `"`}, nil
	}

	tokens := strings.Fields(normalized)
	var whole int
	var frac string
	switch len(tokens) {
	case 1:
		frac = tokens[0]
	case 2:
		if !wholePattern.MatchString(tokens[0]) {
			return Slump{}, Reject("slump", "whole part %q must be a whole number of inches, e.g. 9 3/4\"", tokens[0])
		}
		w, err := strconv.Atoi(tokens[0])
		if err != nil {
			return Slump{}, Reject("slump", "whole part %q is not a number", tokens[0])
		}
		whole = w
		frac = tokens[1]
	default:
		return Slump{}, Reject("slump", "too many parts in %q, expected e.g. 9 3/4\"", raw)
	}

	m := fractionPattern.FindStringSubmatch(frac)
	if m == nil {
		return Slump{}, Reject("slump", "unrecognized value %q, expected e.g. 9 3/4\"", raw)
	}
	num, errNum := strconv.Atoi(m[1])
	den, errDen := strconv.Atoi(m[2])
	if errNum != nil || errDen != nil {
		return Slump{}, Reject("slump", "unrecognized value %q", raw)
	}
	if den == 0 {
		return Slump{}, Reject("slump", "denominator must not be zero")
	}

	text := m[1] + "/" + m[2]
	if whole != 0 {
		text = strconv.Itoa(whole) + " " + text
	}
	return Slump{
		Value: float64(whole) + float64(num)/float64(den),
		Text:  text + `"`,
	}, nil
}

// FormatNumber prints integers bare and everything else rounded to two
// decimals, dropping a trailing ".00".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
	return strings.TrimSuffix(s, ".00")
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(value string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

// NormalizeClock zero-pads an optional HH:MM value so stored times sort
// as strings. An empty value stays empty.
func NormalizeClock(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	m, ok := ParseClock(value)
	if !ok {
		return "", Reject(field, "time %q must be HH:MM", value)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// DelayMinutes returns arrival minus departure in minutes, wrapped across
// midnight. A delay longer than a day aliases to a short one.
func DelayMinutes(arrival, departure string) (int, bool) {
	a, ok := ParseClock(arrival)
	if !ok {
		return 0, false
	}
	d, ok := ParseClock(departure)
	if !ok {
		return 0, false
	}
	return ((a-d)%1440 + 1440) % 1440, true
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(field, value string) error {
	if value == "" {
		return Reject(field, "date is required")
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return Reject(field, "date %q must be YYYY-MM-DD", value)
	}
	return nil
}
