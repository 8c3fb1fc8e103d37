package controllers

import "time"

// queryDay resolves an optional YYYY-MM-DD value to the day being acted on.
// Absent means today. Stored dates are UTC calendar midnights, so the
// default must be taken in UTC: near midnight the server's local date can
// differ from the UTC one.
func queryDay(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}
