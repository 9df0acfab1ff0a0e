package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"giftboard/internal/domain/lists"
	"giftboard/internal/notify"
)

type fakeOccasion struct {
	groupID string
	budget  *decimal.Decimal
}

type fakeRepo struct {
	occasions     map[string]fakeOccasion
	budgets       map[string]EntityBudget
	occasionLines map[string][]Line
	listLines     map[string][]Line
	giftLines     map[string][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		occasions:     make(map[string]fakeOccasion),
		budgets:       make(map[string]EntityBudget),
		occasionLines: make(map[string][]Line),
		listLines:     make(map[string][]Line),
		giftLines:     make(map[string][]Line),
	}
}

func budgetKey(occasionID string, ref EntityRef) string {
	return occasionID + "|" + string(ref.Kind) + "|" + ref.ID
}

func (f *fakeRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) GetOccasionBudget(ctx context.Context, groupID, occasionID string) (*decimal.Decimal, error) {
	occasion, ok := f.occasions[occasionID]
	if !ok || occasion.groupID != groupID {
		return nil, ErrOccasionNotFound
	}
	return occasion.budget, nil
}

func (f *fakeRepo) ListOccasionLines(ctx context.Context, occasionID string) ([]Line, error) {
	return f.occasionLines[occasionID], nil
}

func (f *fakeRepo) ListListLines(ctx context.Context, groupID, listID string) ([]Line, error) {
	return f.listLines[listID], nil
}

func (f *fakeRepo) ListGiftLines(ctx context.Context, occasionID, giftID string) ([]Line, error) {
	return f.giftLines[occasionID+"|"+giftID], nil
}

func (f *fakeRepo) UpsertEntityBudget(ctx context.Context, entityBudget *EntityBudget) error {
	key := budgetKey(entityBudget.OccasionID, entityBudget.Ref())
	if existing, ok := f.budgets[key]; ok {
		existing.Amount = entityBudget.Amount
		f.budgets[key] = existing
		return nil
	}
	f.budgets[key] = *entityBudget
	return nil
}

func (f *fakeRepo) ListEntityBudgets(ctx context.Context, occasionID string) ([]EntityBudget, error) {
	var result []EntityBudget
	for _, eb := range f.budgets {
		if eb.OccasionID == occasionID {
			result = append(result, eb)
		}
	}
	return result, nil
}

func (f *fakeRepo) GetEntityBudget(ctx context.Context, occasionID string, ref EntityRef) (*EntityBudget, error) {
	eb, ok := f.budgets[budgetKey(occasionID, ref)]
	if !ok {
		return nil, ErrBudgetNotFound
	}
	return &eb, nil
}

func (f *fakeRepo) DeleteEntityBudget(ctx context.Context, occasionID string, ref EntityRef) (bool, error) {
	key := budgetKey(occasionID, ref)
	if _, ok := f.budgets[key]; !ok {
		return false, nil
	}
	delete(f.budgets, key)
	return true, nil
}

type fakePublisher struct {
	events []notify.Event
}

func (f *fakePublisher) Publish(event notify.Event) {
	f.events = append(f.events, event)
}

func seedOccasion(repo *fakeRepo, groupID, occasionID, budgetTotal string) {
	occasion := fakeOccasion{groupID: groupID}
	if budgetTotal != "" {
		occasion.budget = money(budgetTotal)
	}
	repo.occasions[occasionID] = occasion
}

func TestUpsertEntityBudget(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "500.00")
	pub := &fakePublisher{}
	svc := NewService(repo, pub, time.Minute)

	ref := EntityRef{Kind: EntityList, ID: "list-1"}
	stored, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.RequireFromString("120.505"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !stored.Amount.Equal(decimal.RequireFromString("120.51")) {
		t.Fatalf("expected amount rounded to 120.51, got %s", stored.Amount)
	}
	if stored.ID == "" {
		t.Fatal("expected generated id")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].Topic != "occasion:occ-1" {
		t.Fatalf("expected occasion topic, got %q", pub.events[0].Topic)
	}
	if pub.events[0].Type != notify.EventUpdated {
		t.Fatalf("expected UPDATED, got %q", pub.events[0].Type)
	}
}

func TestUpsertEntityBudgetSecondWriteWins(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "500.00")
	svc := NewService(repo, nil, time.Minute)

	ref := EntityRef{Kind: EntityGift, ID: "gift-1"}
	first, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.RequireFromString("50.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.RequireFromString("75.00"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(repo.budgets) != 1 {
		t.Fatalf("expected a single row, got %d", len(repo.budgets))
	}
	if second.ID != first.ID {
		t.Fatalf("expected the original row to survive, got %q vs %q", second.ID, first.ID)
	}
	if !second.Amount.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected the second amount to win, got %s", second.Amount)
	}
}

func TestUpsertEntityBudgetValidation(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "500.00")
	svc := NewService(repo, nil, time.Minute)

	_, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", EntityRef{Kind: "person", ID: "p-1"}, decimal.NewFromInt(10))
	if !errors.Is(err, ErrInvalidEntityKind) {
		t.Fatalf("expected ErrInvalidEntityKind, got %v", err)
	}

	_, err = svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", EntityRef{Kind: EntityGift, ID: "gift-1"}, decimal.NewFromInt(-5))
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	_, err = svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "missing", EntityRef{Kind: EntityGift, ID: "gift-1"}, decimal.NewFromInt(5))
	if !errors.Is(err, ErrOccasionNotFound) {
		t.Fatalf("expected ErrOccasionNotFound, got %v", err)
	}
}

func TestUpsertEntityBudgetWrongGroup(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "500.00")
	svc := NewService(repo, nil, time.Minute)

	_, err := svc.UpsertEntityBudget(context.Background(), "group-2", "user-1", "occ-1", EntityRef{Kind: EntityGift, ID: "gift-1"}, decimal.NewFromInt(5))
	if !errors.Is(err, ErrOccasionNotFound) {
		t.Fatalf("expected ErrOccasionNotFound for foreign group, got %v", err)
	}
}

func TestOccasionSummary(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "100.00")
	repo.occasionLines["occ-1"] = []Line{
		{Status: lists.StatusPurchased, Price: money("60.00"), Quantity: 1},
		{Status: lists.StatusSelected, Price: money("50.00"), Quantity: 1},
	}
	svc := NewService(repo, nil, time.Minute)

	summary, err := svc.OccasionSummary(context.Background(), "group-1", "occ-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !summary.Summary.IsOverBudget {
		t.Fatal("expected over budget")
	}
	if summary.Summary.Remaining == nil || !summary.Summary.Remaining.Equal(decimal.RequireFromString("-10.00")) {
		t.Fatalf("expected remaining -10.00, got %v", summary.Summary.Remaining)
	}
	if len(summary.Entities) != 0 {
		t.Fatalf("expected no entity budgets, got %d", len(summary.Entities))
	}
}

func TestOccasionSummaryIncludesEntities(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "300.00")
	repo.listLines["list-1"] = []Line{
		{Status: lists.StatusPurchased, Price: money("80.00"), Quantity: 1},
	}
	svc := NewService(repo, nil, time.Minute)

	ref := EntityRef{Kind: EntityList, ID: "list-1"}
	if _, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.RequireFromString("100.00")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	summary, err := svc.OccasionSummary(context.Background(), "group-1", "occ-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summary.Entities) != 1 {
		t.Fatalf("expected 1 entity summary, got %d", len(summary.Entities))
	}

	entity := summary.Entities[0]
	if entity.Ref != ref {
		t.Fatalf("expected ref %+v, got %+v", ref, entity.Ref)
	}
	if entity.Summary.BudgetTotal == nil || !entity.Summary.BudgetTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected cap 100.00, got %v", entity.Summary.BudgetTotal)
	}
	if !entity.Summary.PurchasedAmount.Equal(decimal.RequireFromString("80.00")) {
		t.Fatalf("expected purchased 80.00, got %s", entity.Summary.PurchasedAmount)
	}
}

func TestOccasionSummaryCacheInvalidatedByUpsert(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "300.00")
	svc := NewService(repo, nil, time.Minute)

	first, err := svc.OccasionSummary(context.Background(), "group-1", "occ-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(first.Entities) != 0 {
		t.Fatalf("expected no entities yet, got %d", len(first.Entities))
	}

	ref := EntityRef{Kind: EntityGift, ID: "gift-1"}
	if _, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.RequireFromString("40.00")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := svc.OccasionSummary(context.Background(), "group-1", "occ-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(second.Entities) != 1 {
		t.Fatalf("expected the upsert to invalidate the cached summary, got %d entities", len(second.Entities))
	}
}

func TestOccasionSummaryNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, time.Minute)

	_, err := svc.OccasionSummary(context.Background(), "group-1", "missing")
	if !errors.Is(err, ErrOccasionNotFound) {
		t.Fatalf("expected ErrOccasionNotFound, got %v", err)
	}
}

func TestEntitySummaryWithoutBudgetRow(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "300.00")
	repo.giftLines["occ-1|gift-1"] = []Line{
		{Status: lists.StatusSelected, Price: money("20.00"), Quantity: 2},
	}
	svc := NewService(repo, nil, time.Minute)

	summary, err := svc.EntitySummary(context.Background(), "group-1", "occ-1", EntityRef{Kind: EntityGift, ID: "gift-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Summary.BudgetTotal != nil {
		t.Fatalf("expected nil cap without a budget row, got %v", summary.Summary.BudgetTotal)
	}
	if !summary.Summary.PlannedAmount.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("expected planned 40.00, got %s", summary.Summary.PlannedAmount)
	}
}

func TestDeleteEntityBudget(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "300.00")
	pub := &fakePublisher{}
	svc := NewService(repo, pub, time.Minute)

	ref := EntityRef{Kind: EntityList, ID: "list-1"}
	if _, err := svc.UpsertEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := svc.DeleteEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.budgets) != 0 {
		t.Fatalf("expected row removed, got %d", len(repo.budgets))
	}
	if len(pub.events) != 2 || pub.events[1].Type != notify.EventDeleted {
		t.Fatalf("expected DELETED event, got %v", pub.events)
	}

	err := svc.DeleteEntityBudget(context.Background(), "group-1", "user-1", "occ-1", ref)
	if !errors.Is(err, ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got %v", err)
	}
}

func TestListSummaryUsesEntityCap(t *testing.T) {
	repo := newFakeRepo()
	seedOccasion(repo, "group-1", "occ-1", "300.00")
	repo.listLines["list-1"] = []Line{
		{Status: lists.StatusPurchased, Price: money("25.00"), Quantity: 1},
	}
	repo.budgets[budgetKey("occ-1", EntityRef{Kind: EntityList, ID: "list-1"})] = EntityBudget{
		ID:         "eb-1",
		OccasionID: "occ-1",
		EntityKind: EntityList,
		EntityID:   "list-1",
		Amount:     decimal.RequireFromString("50.00"),
	}
	svc := NewService(repo, nil, time.Minute)

	occasionID := "occ-1"
	summary, err := svc.ListSummary(context.Background(), "group-1", "list-1", &occasionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.BudgetTotal == nil || !summary.BudgetTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected cap 50.00, got %v", summary.BudgetTotal)
	}

	unlinked, err := svc.ListSummary(context.Background(), "group-1", "list-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if unlinked.BudgetTotal != nil {
		t.Fatalf("expected nil cap for unlinked list, got %v", unlinked.BudgetTotal)
	}
}
