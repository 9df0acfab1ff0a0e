//go:build e2e
// +build e2e

// End-to-end tests against a real Postgres instance. They spin up the
// full HTTP stack with httptest and drive it through the public API
// only. Run with:
//
//	E2E_DB_DSN="postgres://..." go test -tags e2e ./e2e/
//
// The database is truncated before every test, do not point E2E_DB_DSN
// at anything you care about.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
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

type testEnv struct {
	ts     *httptest.Server
	client *http.Client
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "json")

	cfg := config.Config{
		HTTPPort: "0",
		Env:      "test",
		DB:       config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			JWTSecret: "e2e-secret",
			TokenTTL:  time.Hour,
			// Minimum cost keeps registration fast, production uses 10+.
			BcryptCost: 4,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		WS: config.WSConfig{
			SendBuffer: 8,
			WriteWait:  time.Second,
			PongWait:   time.Second,
		},
		Budget: config.BudgetConfig{SummaryCacheTTL: time.Second},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	cleanDB(t, dbConn)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
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
	metrics := middleware.NewMetrics(prometheus.NewRegistry())

	router := httpserver.NewRouter(cfg, handlers, tokens, ws, metrics)
	ts := httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := dbConn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		ts:     ts,
		client: ts.Client(),
		db:     dbConn,
	}
}

func cleanDB(t *testing.T, dbConn *gorm.DB) {
	t.Helper()
	err := dbConn.Exec(`TRUNCATE TABLE
		activity_log, comments, entity_budgets, list_items, lists,
		gift_recipients, gift_tags, gifts, tags, stores,
		occasions, people, group_members, groups, users
		CASCADE`).Error
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func requestJSON(t *testing.T, env *testEnv, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, data
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode response %s: %v", string(data), err)
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var envelope errorEnvelope
	decodeInto(t, data, &envelope)
	return envelope.Error.Code
}

type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

type groupResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	OwnerID string `json:"owner_id"`
}

type memberResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type personResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Birthday *string `json:"birthday"`
}

type tagResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type storeResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	URL  *string `json:"url"`
}

type giftResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Status       string           `json:"status"`
	Price        *decimal.Decimal `json:"price"`
	StoreID      *string          `json:"store_id"`
	TagIDs       []string         `json:"tag_ids"`
	RecipientIDs []string         `json:"recipient_ids"`
}

type giftListResponse struct {
	Items []giftResponse `json:"items"`
	Total int64          `json:"total"`
}

type occasionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	BudgetTotal *decimal.Decimal `json:"budget_total"`
}

type listResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PersonID   *string `json:"person_id"`
	OccasionID *string `json:"occasion_id"`
}

type itemResponse struct {
	ID         string           `json:"id"`
	ListID     string           `json:"list_id"`
	GiftID     string           `json:"gift_id"`
	Status     string           `json:"status"`
	AssignedTo *string          `json:"assigned_to"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   int              `json:"quantity"`
}

type budgetSummaryResponse struct {
	BudgetTotal      *decimal.Decimal `json:"budget_total"`
	PurchasedAmount  decimal.Decimal  `json:"purchased_amount"`
	PlannedAmount    decimal.Decimal  `json:"planned_amount"`
	Remaining        *decimal.Decimal `json:"remaining"`
	PurchasedPercent decimal.Decimal  `json:"purchased_percent"`
	IsOverBudget     bool             `json:"is_over_budget"`
}

type listDetailResponse struct {
	listResponse
	Items  []itemResponse        `json:"items"`
	Budget budgetSummaryResponse `json:"budget"`
}

type entitySummaryResponse struct {
	EntityKind string                `json:"entity_kind"`
	EntityID   string                `json:"entity_id"`
	Summary    budgetSummaryResponse `json:"summary"`
}

type occasionBudgetResponse struct {
	OccasionID string                  `json:"occasion_id"`
	Summary    budgetSummaryResponse   `json:"summary"`
	Entities   []entitySummaryResponse `json:"entities"`
}

type entityBudgetResponse struct {
	ID         string          `json:"id"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type commentResponse struct {
	ID         string `json:"id"`
	ParentKind string `json:"parent_kind"`
	ParentID   string `json:"parent_id"`
	AuthorID   string `json:"author_id"`
	Body       string `json:"body"`
}

type activityEntryResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Detail     json.RawMessage `json:"detail"`
}

type activityListResponse struct {
	Items []activityEntryResponse `json:"items"`
	Total int64                   `json:"total"`
}

type overviewResponse struct {
	UpcomingOccasions []struct {
		ID     string                `json:"id"`
		Name   string                `json:"name"`
		Budget budgetSummaryResponse `json:"budget"`
	} `json:"upcoming_occasions"`
	RecentActivity   []activityEntryResponse `json:"recent_activity"`
	GiftStatusCounts map[string]int64        `json:"gift_status_counts"`
}

// registerUser registers a fresh account and returns its session.
func registerUser(t *testing.T, env *testEnv, email, name string) sessionResponse {
	t.Helper()
	resp, body := requestJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, resp.StatusCode, string(body))
	}
	var session sessionResponse
	decodeInto(t, body, &session)
	return session
}

// createGroup makes the given session the owner of a new group.
func createGroup(t *testing.T, env *testEnv, token, name string) groupResponse {
	t.Helper()
	resp, body := requestJSON(t, env, http.MethodPost, "/api/groups", token, map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var group groupResponse
	decodeInto(t, body, &group)
	return group
}

func TestHealthAndAuthFlow(t *testing.T) {
	env := setupE2E(t)

	resp, body := requestJSON(t, env, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.StatusCode)
	}
	var health map[string]string
	decodeInto(t, body, &health)
	if health["status"] != "ok" {
		t.Fatalf("health: expected status ok, got %q", health["status"])
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "invalid_token" {
		t.Fatalf("me without token: expected invalid_token, got %q", code)
	}

	session := registerUser(t, env, "irina@example.com", "Irina")
	if session.Token == "" || session.User.ID == "" {
		t.Fatalf("register: expected token and user id, got %+v", session)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "irina@example.com",
		"password": "other-secret",
		"name":     "Impostor",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "email_taken" {
		t.Fatalf("duplicate register: expected email_taken, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "irina@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "invalid_credentials" {
		t.Fatalf("bad login: expected invalid_credentials, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "irina@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var login sessionResponse
	decodeInto(t, body, &login)
	if login.User.ID != session.User.ID {
		t.Fatalf("login: expected user %s, got %s", session.User.ID, login.User.ID)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/auth/me", login.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestGroupMembershipFlow(t *testing.T) {
	env := setupE2E(t)

	owner := registerUser(t, env, "owner@example.com", "Olga")
	member := registerUser(t, env, "member@example.com", "Maxim")

	resp, body := requestJSON(t, env, http.MethodGet, "/api/groups/me", owner.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("group before create: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "group_not_found" {
		t.Fatalf("group before create: expected group_not_found, got %q", code)
	}

	group := createGroup(t, env, owner.Token, "Petrovs")
	if group.Code == "" {
		t.Fatalf("create group: expected a join code, got %+v", group)
	}
	if group.OwnerID != owner.User.ID {
		t.Fatalf("create group: expected owner %s, got %s", owner.User.ID, group.OwnerID)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/groups/join", member.Token, map[string]string{"code": "WRONG0"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("join with bad code: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "group_code_not_found" {
		t.Fatalf("join with bad code: expected group_code_not_found, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/groups/join", member.Token, map[string]string{"code": group.Code})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/groups/join", member.Token, map[string]string{"code": group.Code})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second join: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "already_in_group" {
		t.Fatalf("second join: expected already_in_group, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/groups/me/members", owner.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("members: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var members []memberResponse
	decodeInto(t, body, &members)
	if len(members) != 2 {
		t.Fatalf("members: expected 2, got %d", len(members))
	}
	roles := map[string]string{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	if roles[owner.User.ID] != "owner" || roles[member.User.ID] != "member" {
		t.Fatalf("members: unexpected roles %v", roles)
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/groups/me/members/"+owner.User.ID, owner.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("remove owner: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "cannot_remove_owner" {
		t.Fatalf("remove owner: expected cannot_remove_owner, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/groups/me/members/"+owner.User.ID, member.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("remove as member: expected 403, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "not_owner" {
		t.Fatalf("remove as member: expected not_owner, got %q", code)
	}

	// Owner leaves, ownership moves to the remaining member.
	resp, body = requestJSON(t, env, http.MethodPost, "/api/groups/leave", owner.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("leave: expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/groups/me", member.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("group after transfer: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var transferred groupResponse
	decodeInto(t, body, &transferred)
	if transferred.OwnerID != member.User.ID {
		t.Fatalf("group after transfer: expected owner %s, got %s", member.User.ID, transferred.OwnerID)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/groups/me", owner.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("group after leave: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestGiftCatalogFlow(t *testing.T) {
	env := setupE2E(t)

	session := registerUser(t, env, "catalog@example.com", "Katya")
	createGroup(t, env, session.Token, "Katya's family")

	resp, body := requestJSON(t, env, http.MethodPost, "/api/tags", session.Token, map[string]string{
		"name":  "books",
		"color": "#3366ff",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create tag: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var tag tagResponse
	decodeInto(t, body, &tag)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/tags", session.Token, map[string]string{"name": "books"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate tag: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "tag_name_taken" {
		t.Fatalf("duplicate tag: expected tag_name_taken, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/stores", session.Token, map[string]string{
		"name": "Ozon",
		"url":  "https://ozon.ru",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create store: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var store storeResponse
	decodeInto(t, body, &store)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/people", session.Token, map[string]string{
		"name":     "Grandma",
		"birthday": "1952-03-08",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create person: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var person personResponse
	decodeInto(t, body, &person)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/gifts", session.Token, map[string]any{
		"name":          "War and Peace",
		"price":         "49.99",
		"store_id":      store.ID,
		"tag_ids":       []string{tag.ID},
		"recipient_ids": []string{person.ID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create gift: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var gift giftResponse
	decodeInto(t, body, &gift)
	if gift.Status != "active" {
		t.Fatalf("create gift: expected status active, got %q", gift.Status)
	}
	if len(gift.TagIDs) != 1 || gift.TagIDs[0] != tag.ID {
		t.Fatalf("create gift: expected tag %s, got %v", tag.ID, gift.TagIDs)
	}
	if len(gift.RecipientIDs) != 1 || gift.RecipientIDs[0] != person.ID {
		t.Fatalf("create gift: expected recipient %s, got %v", person.ID, gift.RecipientIDs)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/gifts", session.Token, map[string]any{
		"name":    "Unknown tag gift",
		"tag_ids": []string{"00000000-0000-0000-0000-000000000000"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("gift with unknown tag: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "tag_not_found" {
		t.Fatalf("gift with unknown tag: expected tag_not_found, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/gifts?tag_id="+tag.ID, session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list gifts by tag: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var byTag giftListResponse
	decodeInto(t, body, &byTag)
	if byTag.Total != 1 || len(byTag.Items) != 1 || byTag.Items[0].ID != gift.ID {
		t.Fatalf("list gifts by tag: expected exactly gift %s, got %+v", gift.ID, byTag)
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/tags/"+tag.ID, session.Token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete tag in use: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "tag_in_use" {
		t.Fatalf("delete tag in use: expected tag_in_use, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPatch, "/api/gifts/"+gift.ID, session.Token, map[string]any{
		"price":  "39.99",
		"status": "archived",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update gift: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var updated giftResponse
	decodeInto(t, body, &updated)
	if updated.Status != "archived" {
		t.Fatalf("update gift: expected status archived, got %q", updated.Status)
	}
	if updated.Price == nil || !updated.Price.Equal(decimal.RequireFromString("39.99")) {
		t.Fatalf("update gift: expected price 39.99, got %v", updated.Price)
	}

	// Unfiltered listing keeps archived gifts, the status filter hides them.
	resp, body = requestJSON(t, env, http.MethodGet, "/api/gifts", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list gifts: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var all giftListResponse
	decodeInto(t, body, &all)
	if all.Total != 1 {
		t.Fatalf("list gifts: expected 1, got %d", all.Total)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/gifts?status=active", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list active gifts: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var active giftListResponse
	decodeInto(t, body, &active)
	if active.Total != 0 {
		t.Fatalf("list active gifts: expected none, got %d", active.Total)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/gifts?status=archived", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list archived gifts: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var archived giftListResponse
	decodeInto(t, body, &archived)
	if archived.Total != 1 {
		t.Fatalf("list archived gifts: expected 1, got %d", archived.Total)
	}
}

func TestListLifecycleFlow(t *testing.T) {
	env := setupE2E(t)

	session := registerUser(t, env, "lists@example.com", "Lena")
	createGroup(t, env, session.Token, "Lena's family")

	resp, body := requestJSON(t, env, http.MethodPost, "/api/people", session.Token, map[string]string{"name": "Dad"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create person: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var person personResponse
	decodeInto(t, body, &person)

	var giftIDs []string
	for _, name := range []string{"Fishing rod", "Thermos"} {
		resp, body = requestJSON(t, env, http.MethodPost, "/api/gifts", session.Token, map[string]any{"name": name})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create gift %s: expected 201, got %d: %s", name, resp.StatusCode, string(body))
		}
		var gift giftResponse
		decodeInto(t, body, &gift)
		giftIDs = append(giftIDs, gift.ID)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists", session.Token, map[string]any{
		"name":      "Dad's birthday",
		"person_id": person.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create list: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var list listResponse
	decodeInto(t, body, &list)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists/"+list.ID+"/items", session.Token, map[string]any{
		"gift_id": giftIDs[0],
		"price":   "60",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var item itemResponse
	decodeInto(t, body, &item)
	if item.Status != "idea" {
		t.Fatalf("add item: expected status idea, got %q", item.Status)
	}
	if item.Quantity != 1 {
		t.Fatalf("add item: expected quantity 1, got %d", item.Quantity)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists/"+list.ID+"/items", session.Token, map[string]any{
		"gift_id": giftIDs[0],
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate item: expected 409, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "duplicate_item" {
		t.Fatalf("duplicate item: expected duplicate_item, got %q", code)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists/"+list.ID+"/items", session.Token, map[string]any{
		"gift_id":  giftIDs[1],
		"price":    "25",
		"quantity": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add second item: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var second itemResponse
	decodeInto(t, body, &second)

	// Skipping selected is not allowed.
	resp, body = requestJSON(t, env, http.MethodPatch, "/api/list-items/"+item.ID+"/status", session.Token, map[string]string{"status": "purchased"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("skip transition: expected 400, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "invalid_transition" {
		t.Fatalf("skip transition: expected invalid_transition, got %q", code)
	}

	for _, status := range []string{"selected", "purchased", "received"} {
		resp, body = requestJSON(t, env, http.MethodPatch, "/api/list-items/"+item.ID+"/status", session.Token, map[string]string{"status": status})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: expected 200, got %d: %s", status, resp.StatusCode, string(body))
		}
		var after itemResponse
		decodeInto(t, body, &after)
		if after.Status != status {
			t.Fatalf("transition to %s: got status %q", status, after.Status)
		}
	}

	// Received is terminal.
	resp, body = requestJSON(t, env, http.MethodPatch, "/api/list-items/"+item.ID+"/status", session.Token, map[string]string{"status": "idea"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("leave received: expected 400, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodPatch, "/api/list-items/"+second.ID+"/assign", session.Token, map[string]any{
		"assigned_to": session.User.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign item: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var assigned itemResponse
	decodeInto(t, body, &assigned)
	if assigned.AssignedTo == nil || *assigned.AssignedTo != session.User.ID {
		t.Fatalf("assign item: expected assignee %s, got %v", session.User.ID, assigned.AssignedTo)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/lists/"+list.ID, session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get list: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var detail listDetailResponse
	decodeInto(t, body, &detail)
	if len(detail.Items) != 2 {
		t.Fatalf("get list: expected 2 items, got %d", len(detail.Items))
	}
	// One received at 60 plus two planned at 25 each.
	if !detail.Budget.PurchasedAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("get list: expected purchased 60, got %s", detail.Budget.PurchasedAmount)
	}
	if !detail.Budget.PlannedAmount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("get list: expected planned 50, got %s", detail.Budget.PlannedAmount)
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/list-items/"+second.ID, session.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete item: expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/lists/"+list.ID, session.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete list: expected 204, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestOccasionBudgetFlow(t *testing.T) {
	env := setupE2E(t)

	session := registerUser(t, env, "budget@example.com", "Boris")
	createGroup(t, env, session.Token, "Boris's family")

	resp, body := requestJSON(t, env, http.MethodPost, "/api/occasions", session.Token, map[string]any{
		"name":         "New Year",
		"kind":         "christmas",
		"date":         "2026-12-31",
		"budget_total": "100",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create occasion: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var occasion occasionResponse
	decodeInto(t, body, &occasion)
	if occasion.Date != "2026-12-31" {
		t.Fatalf("create occasion: expected date 2026-12-31, got %q", occasion.Date)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/gifts", session.Token, map[string]any{"name": "Sled"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create gift: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var gift giftResponse
	decodeInto(t, body, &gift)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists", session.Token, map[string]any{
		"name":        "New Year list",
		"occasion_id": occasion.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create list: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var list listResponse
	decodeInto(t, body, &list)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/lists/"+list.ID+"/items", session.Token, map[string]any{
		"gift_id":  gift.ID,
		"price":    "30",
		"quantity": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var item itemResponse
	decodeInto(t, body, &item)

	for _, status := range []string{"selected", "purchased"} {
		resp, body = requestJSON(t, env, http.MethodPatch, "/api/list-items/"+item.ID+"/status", session.Token, map[string]string{"status": status})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: expected 200, got %d: %s", status, resp.StatusCode, string(body))
		}
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/occasions/"+occasion.ID+"/budget", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("occasion budget: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var meter occasionBudgetResponse
	decodeInto(t, body, &meter)
	if !meter.Summary.PurchasedAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("occasion budget: expected purchased 60, got %s", meter.Summary.PurchasedAmount)
	}
	if meter.Summary.Remaining == nil || !meter.Summary.Remaining.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("occasion budget: expected remaining 40, got %v", meter.Summary.Remaining)
	}
	if meter.Summary.IsOverBudget {
		t.Fatalf("occasion budget: expected within budget, got over")
	}

	resp, body = requestJSON(t, env, http.MethodPut, "/api/occasions/"+occasion.ID+"/budgets/list/"+list.ID, session.Token, map[string]any{
		"amount": "-5",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative cap: expected 400, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodPut, "/api/occasions/"+occasion.ID+"/budgets/list/"+list.ID, session.Token, map[string]any{
		"amount": "80",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set list cap: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	// Repeating the PUT replaces the cap instead of growing a second row.
	resp, body = requestJSON(t, env, http.MethodPut, "/api/occasions/"+occasion.ID+"/budgets/list/"+list.ID, session.Token, map[string]any{
		"amount": "50",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace list cap: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var listCap entityBudgetResponse
	decodeInto(t, body, &listCap)
	if !listCap.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("replace list cap: expected 50, got %s", listCap.Amount)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/occasions/"+occasion.ID+"/budget", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("occasion budget after cap: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	decodeInto(t, body, &meter)
	if len(meter.Entities) != 1 {
		t.Fatalf("occasion budget after cap: expected 1 entity meter, got %d", len(meter.Entities))
	}
	entity := meter.Entities[0]
	if entity.EntityKind != "list" || entity.EntityID != list.ID {
		t.Fatalf("occasion budget after cap: unexpected entity %+v", entity)
	}
	// 60 purchased against a 50 cap.
	if !entity.Summary.IsOverBudget {
		t.Fatalf("occasion budget after cap: expected list over budget")
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/occasions/"+occasion.ID+"/budgets", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list caps: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var caps struct {
		Items []entityBudgetResponse `json:"items"`
	}
	decodeInto(t, body, &caps)
	if len(caps.Items) != 1 {
		t.Fatalf("list caps: expected 1, got %d", len(caps.Items))
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/occasions/"+occasion.ID+"/budgets/list/"+list.ID, session.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete cap: expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodDelete, "/api/occasions/"+occasion.ID+"/budgets/list/"+list.ID, session.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete cap twice: expected 404, got %d: %s", resp.StatusCode, string(body))
	}
	if code := errorCode(t, body); code != "budget_not_found" {
		t.Fatalf("delete cap twice: expected budget_not_found, got %q", code)
	}
}

func TestCommentsActivityDashboardFlow(t *testing.T) {
	env := setupE2E(t)

	session := registerUser(t, env, "feed@example.com", "Fedor")
	createGroup(t, env, session.Token, "Fedor's family")

	resp, body := requestJSON(t, env, http.MethodPost, "/api/gifts", session.Token, map[string]any{"name": "Puzzle"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create gift: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var gift giftResponse
	decodeInto(t, body, &gift)

	resp, body = requestJSON(t, env, http.MethodPost, "/api/comments", session.Token, map[string]string{
		"parent_kind": "gift",
		"parent_id":   gift.ID,
		"body":        "She already owns this one",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create comment: expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var comment commentResponse
	decodeInto(t, body, &comment)
	if comment.AuthorID != session.User.ID {
		t.Fatalf("create comment: expected author %s, got %s", session.User.ID, comment.AuthorID)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/comments", session.Token, map[string]string{
		"parent_kind": "car",
		"parent_id":   gift.ID,
		"body":        "nope",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad parent kind: expected 400, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/comments?parent_kind=gift&parent_id="+gift.ID, session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var commentList struct {
		Items []commentResponse `json:"items"`
		Total int64             `json:"total"`
	}
	decodeInto(t, body, &commentList)
	if commentList.Total != 1 || len(commentList.Items) != 1 {
		t.Fatalf("list comments: expected 1, got %+v", commentList)
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/activity", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activity: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var feed activityListResponse
	decodeInto(t, body, &feed)
	actions := map[string]bool{}
	for _, entry := range feed.Items {
		actions[entry.Action] = true
	}
	if !actions["gift.created"] || !actions["comment.added"] {
		t.Fatalf("activity: expected gift.created and comment.added, got %v", actions)
	}

	resp, body = requestJSON(t, env, http.MethodPost, "/api/occasions", session.Token, map[string]any{
		"name": "Birthday",
		"kind": "birthday",
		"date": time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create occasion: expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, env, http.MethodGet, "/api/dashboard", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var overview overviewResponse
	decodeInto(t, body, &overview)
	if len(overview.UpcomingOccasions) != 1 {
		t.Fatalf("dashboard: expected 1 upcoming occasion, got %d", len(overview.UpcomingOccasions))
	}
	if overview.GiftStatusCounts["active"] != 1 {
		t.Fatalf("dashboard: expected 1 active gift, got %v", overview.GiftStatusCounts)
	}
	if len(overview.RecentActivity) == 0 {
		t.Fatalf("dashboard: expected recent activity entries")
	}
}
