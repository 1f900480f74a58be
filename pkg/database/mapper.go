package database

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NormalizeValue converts the driver's timestamp-like values into time.Time
// truncated to microsecond precision. Anything else, including temporal
// values that carry no date (Time, LocalTime, Duration), is returned as is.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return truncateToMicros(v)
	case neo4j.LocalDateTime:
		return truncateToMicros(v.Time())
	case neo4j.Date:
		return truncateToMicros(v.Time())
	default:
		return value
	}
}

// NormalizeProps returns a copy of props with every value passed through
// NormalizeValue. A nil map yields an empty one.
func NormalizeProps(props map[string]any) map[string]any {
	normalized := make(map[string]any, len(props))
	for key, value := range props {
		normalized[key] = NormalizeValue(value)
	}
	return normalized
}

func truncateToMicros(t time.Time) time.Time {
	return t.Add(-time.Duration(t.Nanosecond() % int(time.Microsecond)))
}
