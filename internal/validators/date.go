package validators

import (
	"time"

	"tricy/internal/utils"
)

// ParseDate parses a calendar date in YYYY-MM-DD form as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(utils.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, utils.ValidationError("date must use the YYYY-MM-DD format")
	}
	return t, nil
}
