package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

func transactionFilter(r *http.Request) (store.TransactionFilter, error) {
	q := r.URL.Query()
	var f store.TransactionFilter

	if v := q.Get("from"); v != "" {
		d, err := core.ParseISODate(v)
		if err != nil {
			return f, err
		}
		f.DateFrom = &d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseISODate(v)
		if err != nil {
			return f, err
		}
		f.DateTo = &d
	}
	f.CategoryID = q.Get("category_id")
	f.AccountID = q.Get("account_id")
	f.Type = q.Get("type")
	if v := q.Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}
	return f, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		return
	}
	if filter.Type != "" && filter.Type != "income" && filter.Type != "expense" {
		writeError(w, http.StatusBadRequest, "invalid type, want income or expense")
		return
	}

	page, err := s.transactions.List(r.Context(), ownerFrom(r), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date        *core.Date       `json:"date"`
		Description *string          `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		CategoryID  *string          `json:"category_id"`
		AccountID   *string          `json:"account_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	tx, err := s.transactions.Update(r.Context(), ownerID, r.PathValue("id"), store.TransactionUpdate{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	if err := s.transactions.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	if err := s.transactions.Delete(r.Context(), ownerID, req.IDs...); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}

func (s *Server) handleBulkSetCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs        []string `json:"ids"`
		CategoryID string   `json:"category_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	if err := s.transactions.BulkSetCategory(r.Context(), ownerID, req.IDs, req.CategoryID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.IDs)})
}

func (s *Server) handleBulkSetAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs       []string `json:"ids"`
		AccountID string   `json:"account_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	if err := s.transactions.BulkSetAccount(r.Context(), ownerID, req.IDs, req.AccountID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.IDs)})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.transactions.Accounts(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Institution string `json:"institution"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := s.transactions.CreateAccount(r.Context(), ownerFrom(r), req.Name, req.Institution)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}
