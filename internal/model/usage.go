package model

import "time"

// UsageRecord tracks how many contacts a user revealed in the current day
type UsageRecord struct {
	UserID       string
	Count        int
	LastViewedAt time.Time
}
