package dashboard

import (
	"context"
	"time"

	"giftboard/internal/domain/budget"
)

const (
	defaultUpcomingWindowDays = 60
	defaultUpcomingLimit      = 5
	defaultActivityLimit      = 10
)

type Service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return NewServiceWithConfig(repo, Config{
		UpcomingWindowDays: defaultUpcomingWindowDays,
		UpcomingLimit:      defaultUpcomingLimit,
		ActivityLimit:      defaultActivityLimit,
	})
}

func NewServiceWithConfig(repo Repository, cfg Config) *Service {
	cfg = normalizeConfig(cfg)

	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *Service) Overview(ctx context.Context, groupID string) (*Overview, error) {
	current := s.now().UTC()
	from := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, s.cfg.UpcomingWindowDays)

	upcoming, err := s.repo.UpcomingOccasions(ctx, groupID, from, to, s.cfg.UpcomingLimit)
	if err != nil {
		return nil, err
	}

	meters := make([]OccasionMeter, 0, len(upcoming))
	for _, occasion := range upcoming {
		lines, err := s.repo.OccasionLines(ctx, occasion.ID)
		if err != nil {
			return nil, err
		}
		meters = append(meters, OccasionMeter{
			Occasion: occasion,
			Budget:   budget.BuildSummary(occasion.BudgetTotal, budget.Accumulate(lines)),
		})
	}

	entries, err := s.repo.RecentActivity(ctx, groupID, s.cfg.ActivityLimit)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.GiftStatusCounts(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		UpcomingOccasions: meters,
		RecentActivity:    entries,
		GiftStatusCounts:  counts,
	}, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.UpcomingWindowDays <= 0 {
		cfg.UpcomingWindowDays = defaultUpcomingWindowDays
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = defaultUpcomingLimit
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = defaultActivityLimit
	}
	return cfg
}
