package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

// monthParam parses the "month" query parameter, defaulting to the current
// month when absent.
func monthParam(r *http.Request) (core.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return core.CurrentMonth(time.Now()), nil
	}
	return core.ParseMonth(raw)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
		return
	}

	statuses, err := s.budgets.MonthlyStatus(r.Context(), ownerFrom(r), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":      month,
		"categories": statuses,
	})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID string          `json:"category_id"`
		Month      core.Month      `json:"month"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	budget, err := s.budgets.SetBudget(r.Context(), ownerID, req.CategoryID, req.Month, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
		return
	}
	categoryID := r.URL.Query().Get("category_id")
	if categoryID == "" {
		writeError(w, http.StatusBadRequest, "category_id is required")
		return
	}

	ownerID := ownerFrom(r)
	if err := s.budgets.DeleteBudget(r.Context(), ownerID, categoryID, month); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	if months, ok := s.monthsCache.Get(ownerID); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, months)
		return
	}

	months, err := s.budgets.AvailableMonths(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.monthsCache.Set(ownerID, months)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, months)
}
