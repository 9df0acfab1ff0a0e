package handler

import (
	authhandler "giftboard/internal/transport/httpserver/handler/auth"
	commentshandler "giftboard/internal/transport/httpserver/handler/comments"
	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	dashboardhandler "giftboard/internal/transport/httpserver/handler/dashboard"
	giftshandler "giftboard/internal/transport/httpserver/handler/gifts"
	groupshandler "giftboard/internal/transport/httpserver/handler/groups"
	listshandler "giftboard/internal/transport/httpserver/handler/lists"
	occasionshandler "giftboard/internal/transport/httpserver/handler/occasions"
	peoplehandler "giftboard/internal/transport/httpserver/handler/people"
)

type Handlers struct {
	Common    *commonhandler.Handlers
	Auth      *authhandler.Handlers
	Groups    *groupshandler.Handlers
	People    *peoplehandler.Handlers
	Occasions *occasionshandler.Handlers
	Gifts     *giftshandler.Handlers
	Lists     *listshandler.Handlers
	Comments  *commentshandler.Handlers
	Dashboard *dashboardhandler.Handlers
}

func New(
	common *commonhandler.Handlers,
	auth *authhandler.Handlers,
	groups *groupshandler.Handlers,
	people *peoplehandler.Handlers,
	occasions *occasionshandler.Handlers,
	gifts *giftshandler.Handlers,
	lists *listshandler.Handlers,
	comments *commentshandler.Handlers,
	dashboard *dashboardhandler.Handlers,
) *Handlers {
	return &Handlers{
		Common:    common,
		Auth:      auth,
		Groups:    groups,
		People:    people,
		Occasions: occasions,
		Gifts:     gifts,
		Lists:     lists,
		Comments:  comments,
		Dashboard: dashboard,
	}
}
