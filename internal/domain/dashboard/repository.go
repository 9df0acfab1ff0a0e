package dashboard

import (
	"context"
	"time"

	"giftboard/internal/domain/activity"
	"giftboard/internal/domain/budget"
	"giftboard/internal/domain/occasions"
)

// Repository is the dashboard read model. It only queries, never writes.
type Repository interface {
	UpcomingOccasions(ctx context.Context, groupID string, from, to time.Time, limit int) ([]occasions.Occasion, error)
	OccasionLines(ctx context.Context, occasionID string) ([]budget.Line, error)
	RecentActivity(ctx context.Context, groupID string, limit int) ([]activity.Entry, error)
	GiftStatusCounts(ctx context.Context, groupID string) (map[string]int64, error)
}
