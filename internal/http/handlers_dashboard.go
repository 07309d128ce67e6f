package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	trend := r.URL.Query().Get("trend")
	if trend == "" {
		trend = "7"
	}

	cacheKey := ownerID + "|" + trend
	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.dashboards.Summary(r.Context(), ownerID, trend)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, summary)
}
