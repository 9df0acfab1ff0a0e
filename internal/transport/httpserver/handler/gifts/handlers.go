package gifts

import (
	"context"

	activitydomain "giftboard/internal/domain/activity"
	giftsdomain "giftboard/internal/domain/gifts"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/pkg/logger"
)

type Handlers struct {
	Groups   *groupsdomain.Service
	Gifts    *giftsdomain.Service
	Activity *activitydomain.Service
	log      logger.Logger
}

func New(groups *groupsdomain.Service, gifts *giftsdomain.Service, activity *activitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Groups:   groups,
		Gifts:    gifts,
		Activity: activity,
		log:      log,
	}
}

// recordActivity logs feed failures and moves on, the mutation already
// committed.
func (h *Handlers) recordActivity(ctx context.Context, input activitydomain.RecordInput) {
	if h.Activity == nil {
		return
	}
	if err := h.Activity.Record(ctx, input); err != nil {
		h.log.Warn("activity: record failed", "action", input.Action, "group_id", input.GroupID, "err", err)
	}
}
