package dashboard

import (
	"errors"
	"net/http"
	"time"

	groupsdomain "giftboard/internal/domain/groups"
	occasionsdomain "giftboard/internal/domain/occasions"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/shopspring/decimal"
)

type occasionMeterResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Kind        string                `json:"kind"`
	Date        string                `json:"date"`
	BudgetTotal *decimal.Decimal      `json:"budget_total"`
	Budget      budgetSummaryResponse `json:"budget"`
	CreatedAt   time.Time             `json:"created_at"`
}

type overviewResponse struct {
	UpcomingOccasions []occasionMeterResponse `json:"upcoming_occasions"`
	RecentActivity    []activityEntryResponse `json:"recent_activity"`
	GiftStatusCounts  map[string]int64        `json:"gift_status_counts"`
}

func toOccasionMeterResponse(occasion occasionsdomain.Occasion, summary budgetSummaryResponse) occasionMeterResponse {
	return occasionMeterResponse{
		ID:          occasion.ID,
		Name:        occasion.Name,
		Kind:        occasion.Kind,
		Date:        occasion.Date.Format("2006-01-02"),
		BudgetTotal: occasion.BudgetTotal,
		Budget:      summary,
		CreatedAt:   occasion.CreatedAt,
	}
}

func (h *Handlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("dashboard.overview: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("dashboard.overview: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	overview, err := h.Dashboard.Overview(r.Context(), group.ID)
	if err != nil {
		h.log.InternalError("dashboard.overview: build overview failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	occasions := make([]occasionMeterResponse, 0, len(overview.UpcomingOccasions))
	for _, meter := range overview.UpcomingOccasions {
		occasions = append(occasions, toOccasionMeterResponse(meter.Occasion, toBudgetSummaryResponse(meter.Budget)))
	}

	activity := make([]activityEntryResponse, 0, len(overview.RecentActivity))
	for _, entry := range overview.RecentActivity {
		activity = append(activity, toActivityEntryResponse(entry))
	}

	counts := overview.GiftStatusCounts
	if counts == nil {
		counts = map[string]int64{}
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		UpcomingOccasions: occasions,
		RecentActivity:    activity,
		GiftStatusCounts:  counts,
	})
}
