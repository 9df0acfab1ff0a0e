package occasions

import (
	"context"

	activitydomain "giftboard/internal/domain/activity"
	budgetdomain "giftboard/internal/domain/budget"
	groupsdomain "giftboard/internal/domain/groups"
	occasionsdomain "giftboard/internal/domain/occasions"
	"giftboard/pkg/logger"
)

type Handlers struct {
	Groups    *groupsdomain.Service
	Occasions *occasionsdomain.Service
	Budget    *budgetdomain.Service
	Activity  *activitydomain.Service
	log       logger.Logger
}

func New(groups *groupsdomain.Service, occasions *occasionsdomain.Service, budget *budgetdomain.Service, activity *activitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Groups:    groups,
		Occasions: occasions,
		Budget:    budget,
		Activity:  activity,
		log:       log,
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
