package web

import (
	"net/http"

	"go.uber.org/zap"

	"pharmaevents/event"
	"pharmaevents/internal/classify"
	"pharmaevents/internal/timeutil"
)

const dashboardListLimit = 5

type dashboardPageView struct {
	layoutView
	Stats          classify.Stats
	RecentEvents   []event.Event
	UpcomingEvents []event.Event
	CategoryCounts []event.NameCount
	TypeCounts     []event.NameCount
}

type monthlyResponse struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := dashboardPageView{layoutView: s.layout(w, r, "Dashboard")}

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.logger.Error("dashboard events", zap.Error(err))
	}
	now := s.now()
	view.Stats = classify.Tally(events, now)
	view.UpcomingEvents = classify.Upcoming(events, now, dashboardListLimit)

	if view.RecentEvents, err = s.store.RecentEvents(ctx, dashboardListLimit); err != nil {
		s.logger.Error("dashboard recent events", zap.Error(err))
	}
	if view.CategoryCounts, err = s.store.CategoryCounts(ctx); err != nil {
		s.logger.Error("dashboard category counts", zap.Error(err))
	}
	if view.TypeCounts, err = s.store.TypeCounts(ctx); err != nil {
		s.logger.Error("dashboard type counts", zap.Error(err))
	}

	s.render(w, "dashboard.html", view)
}

func (s *Server) handleAPIDashboardStats(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("dashboard stats", zap.Error(err))
		writeJSON(w, http.StatusOK, classify.Stats{})
		return
	}
	writeJSON(w, http.StatusOK, classify.Tally(events, s.now()))
}

func (s *Server) handleAPIDashboardCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CategoryCounts(r.Context())
	if err != nil {
		s.logger.Error("dashboard categories", zap.Error(err))
		counts = nil
	}
	writeJSON(w, http.StatusOK, nonNilCounts(counts))
}

func (s *Server) handleAPIDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	resp := monthlyResponse{Labels: timeutil.MonthLabels(), Data: make([]int, 12)}
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("dashboard monthly", zap.Error(err))
		writeJSON(w, http.StatusOK, resp)
		return
	}
	counts := classify.MonthlyCounts(events, s.now().In(s.location).Year(), s.location)
	copy(resp.Data, counts[:])
	writeJSON(w, http.StatusOK, resp)
}

// handleAPIDashboardEventTypes falls back to an online/offline split when no
// event has a type.
func (s *Server) handleAPIDashboardEventTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := s.store.TypeCounts(ctx)
	if err != nil {
		s.logger.Error("dashboard event types", zap.Error(err))
		writeJSON(w, http.StatusOK, []event.NameCount{})
		return
	}
	if len(counts) > 0 {
		writeJSON(w, http.StatusOK, counts)
		return
	}

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.logger.Error("dashboard event types", zap.Error(err))
		writeJSON(w, http.StatusOK, []event.NameCount{})
		return
	}
	stats := classify.Tally(events, s.now())
	if stats.TotalEvents == 0 {
		writeJSON(w, http.StatusOK, []event.NameCount{})
		return
	}
	writeJSON(w, http.StatusOK, []event.NameCount{
		{Name: "Online Events", Count: stats.OnlineEvents},
		{Name: "Offline Events", Count: stats.OfflineEvents},
	})
}

func (s *Server) handleAPIDashboardRequesters(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.RequesterCounts(r.Context())
	if err != nil {
		s.logger.Error("dashboard requesters", zap.Error(err))
		counts = nil
	}
	writeJSON(w, http.StatusOK, nonNilCounts(counts))
}

func nonNilCounts(counts []event.NameCount) []event.NameCount {
	if counts == nil {
		return []event.NameCount{}
	}
	return counts
}
