package dashboard

import (
	activitydomain "giftboard/internal/domain/activity"
	dashboarddomain "giftboard/internal/domain/dashboard"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/pkg/logger"
)

type Handlers struct {
	Groups    *groupsdomain.Service
	Dashboard *dashboarddomain.Service
	Activity  *activitydomain.Service
	log       logger.Logger
}

func New(groups *groupsdomain.Service, dashboard *dashboarddomain.Service, activity *activitydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Groups:    groups,
		Dashboard: dashboard,
		Activity:  activity,
		log:       log,
	}
}
