package httpserver

import (
	"net/http"
	"time"

	"giftboard/internal/auth"
	"giftboard/internal/config"
	"giftboard/internal/transport/httpserver/handler"
	authmw "giftboard/internal/transport/httpserver/middleware"
	"giftboard/internal/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, tokens *auth.JWTManager, ws *websocket.Handler, metrics *authmw.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(metrics.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Post("/auth/register", handlers.Auth.Register)
		r.Post("/auth/login", handlers.Auth.Login)

		jwtAuth := authmw.NewJWTAuth(tokens)
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Get("/auth/me", handlers.Auth.Me)

			r.Get("/groups/me", handlers.Groups.GetGroupMe)
			r.Post("/groups", handlers.Groups.CreateGroup)
			r.Post("/groups/join", handlers.Groups.JoinGroup)
			r.Post("/groups/leave", handlers.Groups.LeaveGroup)
			r.Patch("/groups/me", handlers.Groups.UpdateGroup)
			r.Get("/groups/me/members", handlers.Groups.ListGroupMembers)
			r.Delete("/groups/me/members/{user_id}", handlers.Groups.RemoveGroupMember)

			r.Get("/people", handlers.People.ListPeople)
			r.Post("/people", handlers.People.CreatePerson)
			r.Patch("/people/{id}", handlers.People.UpdatePerson)
			r.Delete("/people/{id}", handlers.People.DeletePerson)

			r.Get("/occasions", handlers.Occasions.ListOccasions)
			r.Post("/occasions", handlers.Occasions.CreateOccasion)
			r.Get("/occasions/{id}", handlers.Occasions.GetOccasion)
			r.Patch("/occasions/{id}", handlers.Occasions.UpdateOccasion)
			r.Delete("/occasions/{id}", handlers.Occasions.DeleteOccasion)
			r.Get("/occasions/{id}/budget", handlers.Occasions.GetOccasionBudget)
			r.Get("/occasions/{id}/budgets", handlers.Occasions.ListEntityBudgets)
			r.Put("/occasions/{id}/budgets/{entity_kind}/{entity_id}", handlers.Occasions.UpsertEntityBudget)
			r.Delete("/occasions/{id}/budgets/{entity_kind}/{entity_id}", handlers.Occasions.DeleteEntityBudget)

			r.Get("/gifts", handlers.Gifts.ListGifts)
			r.Post("/gifts", handlers.Gifts.CreateGift)
			r.Get("/gifts/{id}", handlers.Gifts.GetGift)
			r.Patch("/gifts/{id}", handlers.Gifts.UpdateGift)
			r.Delete("/gifts/{id}", handlers.Gifts.DeleteGift)
			r.Put("/gifts/{id}/recipients", handlers.Gifts.SetGiftRecipients)

			r.Get("/tags", handlers.Gifts.ListTags)
			r.Post("/tags", handlers.Gifts.CreateTag)
			r.Patch("/tags/{id}", handlers.Gifts.UpdateTag)
			r.Delete("/tags/{id}", handlers.Gifts.DeleteTag)

			r.Get("/stores", handlers.Gifts.ListStores)
			r.Post("/stores", handlers.Gifts.CreateStore)
			r.Patch("/stores/{id}", handlers.Gifts.UpdateStore)
			r.Delete("/stores/{id}", handlers.Gifts.DeleteStore)

			r.Get("/lists", handlers.Lists.ListLists)
			r.Post("/lists", handlers.Lists.CreateList)
			r.Get("/lists/{id}", handlers.Lists.GetList)
			r.Patch("/lists/{id}", handlers.Lists.UpdateList)
			r.Delete("/lists/{id}", handlers.Lists.DeleteList)
			r.Post("/lists/{id}/items", handlers.Lists.AddListItem)
			r.Patch("/list-items/{id}", handlers.Lists.UpdateListItem)
			r.Patch("/list-items/{id}/status", handlers.Lists.UpdateListItemStatus)
			r.Patch("/list-items/{id}/assign", handlers.Lists.AssignListItem)
			r.Delete("/list-items/{id}", handlers.Lists.DeleteListItem)

			r.Get("/comments", handlers.Comments.ListComments)
			r.Post("/comments", handlers.Comments.CreateComment)
			r.Delete("/comments/{id}", handlers.Comments.DeleteComment)

			r.Get("/activity", handlers.Dashboard.ListActivity)
			r.Get("/dashboard", handlers.Dashboard.GetOverview)
		})
	})

	// The socket carries its token in the query string, bearer auth does
	// not apply. Metrics stays outside /api for scrapers.
	if ws != nil {
		r.Get("/ws", ws.ServeHTTP)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
