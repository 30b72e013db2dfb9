package entity

import "time"

// TimestampLayout is how every instant is written to the sheets.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Stamp drops the monotonic reading and everything below the millisecond,
// so a value survives a write/read cycle unchanged.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Stamp(t).Format(TimestampLayout)
}

// ParseTimestamp accepts the canonical layout and plain RFC3339 cells typed by operators.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return Stamp(t), nil
}
