package http

import (
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	if r.URL.Query().Get("stats") == "true" {
		withStats, err := s.categories.ListWithStats(r.Context(), ownerID, includeArchived)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, withStats)
		return
	}

	categories, err := s.categories.List(r.Context(), ownerID, includeArchived)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	category, err := s.categories.Create(r.Context(), ownerID, req.Name, req.Color)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	category, err := s.categories.Update(r.Context(), ownerID, r.PathValue("id"), req.Name, req.Color)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	if err := s.categories.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleArchiveCategory(w http.ResponseWriter, r *http.Request) {
	s.setCategoryArchived(w, r, true)
}

func (s *Server) handleUnarchiveCategory(w http.ResponseWriter, r *http.Request) {
	s.setCategoryArchived(w, r, false)
}

func (s *Server) setCategoryArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	ownerID := ownerFrom(r)
	var err error
	if archived {
		err = s.categories.Archive(r.Context(), ownerID, r.PathValue("id"))
	} else {
		err = s.categories.Unarchive(r.Context(), ownerID, r.PathValue("id"))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMergeCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"source_id"`
		TargetID string `json:"target_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ownerID := ownerFrom(r)
	if err := s.categories.Merge(r.Context(), ownerID, req.SourceID, req.TargetID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusNoContent, nil)
}
