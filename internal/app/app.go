package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"giftboard/internal/auth"
	"giftboard/internal/config"
	"giftboard/internal/db"
	activitydomain "giftboard/internal/domain/activity"
	budgetdomain "giftboard/internal/domain/budget"
	commentsdomain "giftboard/internal/domain/comments"
	dashboarddomain "giftboard/internal/domain/dashboard"
	giftsdomain "giftboard/internal/domain/gifts"
	groupsdomain "giftboard/internal/domain/groups"
	listsdomain "giftboard/internal/domain/lists"
	occasionsdomain "giftboard/internal/domain/occasions"
	peopledomain "giftboard/internal/domain/people"
	usersdomain "giftboard/internal/domain/users"
	activityrepo "giftboard/internal/repository/activity"
	budgetrepo "giftboard/internal/repository/budget"
	commentsrepo "giftboard/internal/repository/comments"
	dashboardrepo "giftboard/internal/repository/dashboard"
	giftsrepo "giftboard/internal/repository/gifts"
	groupsrepo "giftboard/internal/repository/groups"
	listsrepo "giftboard/internal/repository/lists"
	occasionsrepo "giftboard/internal/repository/occasions"
	peoplerepo "giftboard/internal/repository/people"
	usersrepo "giftboard/internal/repository/users"
	"giftboard/internal/transport/httpserver"
	"giftboard/internal/transport/httpserver/handler"
	authhandler "giftboard/internal/transport/httpserver/handler/auth"
	commentshandler "giftboard/internal/transport/httpserver/handler/comments"
	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	dashboardhandler "giftboard/internal/transport/httpserver/handler/dashboard"
	giftshandler "giftboard/internal/transport/httpserver/handler/gifts"
	groupshandler "giftboard/internal/transport/httpserver/handler/groups"
	listshandler "giftboard/internal/transport/httpserver/handler/lists"
	occasionshandler "giftboard/internal/transport/httpserver/handler/occasions"
	peoplehandler "giftboard/internal/transport/httpserver/handler/people"
	"giftboard/internal/transport/httpserver/middleware"
	"giftboard/internal/websocket"
	"giftboard/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: connecting to database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	// The hub doubles as the notify.Publisher for every content service.
	hub := websocket.NewHub(log)

	users := usersdomain.NewService(usersrepo.NewPostgres(dbConn), hasher, tokens)
	groups := groupsdomain.NewService(groupsrepo.NewPostgres(dbConn))
	people := peopledomain.NewService(peoplerepo.NewPostgres(dbConn), hub)
	occasions := occasionsdomain.NewService(occasionsrepo.NewPostgres(dbConn), hub)
	gifts := giftsdomain.NewService(giftsrepo.NewPostgres(dbConn), hub)
	lists := listsdomain.NewService(listsrepo.NewPostgres(dbConn), hub)
	budget := budgetdomain.NewService(budgetrepo.NewPostgres(dbConn), hub, cfg.Budget.SummaryCacheTTL)
	comments := commentsdomain.NewService(commentsrepo.NewPostgres(dbConn), hub)
	activity := activitydomain.NewService(activityrepo.NewPostgres(dbConn))
	dashboard := dashboarddomain.NewService(dashboardrepo.NewPostgres(dbConn))

	handlers := handler.New(
		commonhandler.New(log),
		authhandler.New(users, log),
		groupshandler.New(groups, log),
		peoplehandler.New(groups, people, activity, log),
		occasionshandler.New(groups, occasions, budget, activity, log),
		giftshandler.New(groups, gifts, activity, log),
		listshandler.New(groups, lists, budget, activity, log),
		commentshandler.New(groups, comments, activity, log),
		dashboardhandler.New(groups, dashboard, activity, log),
	)

	ws := websocket.NewHandler(hub, tokens, cfg.WS, cfg.CORS.AllowedOrigins, log)
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, tokens, ws, metrics)

	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
