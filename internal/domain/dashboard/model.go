package dashboard

import (
	"giftboard/internal/domain/activity"
	"giftboard/internal/domain/budget"
	"giftboard/internal/domain/occasions"
)

type Config struct {
	// UpcomingWindowDays bounds how far ahead occasions are pulled.
	UpcomingWindowDays int
	UpcomingLimit      int
	ActivityLimit      int
}

// OccasionMeter pairs an upcoming occasion with its live budget summary.
type OccasionMeter struct {
	Occasion occasions.Occasion
	Budget   budget.Summary
}

type Overview struct {
	UpcomingOccasions []OccasionMeter
	RecentActivity    []activity.Entry
	GiftStatusCounts  map[string]int64
}
