package groups

import (
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/pkg/logger"
)

type Handlers struct {
	Groups *groupsdomain.Service
	log    logger.Logger
}

func New(groups *groupsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Groups: groups,
		log:    log,
	}
}
