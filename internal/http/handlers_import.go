package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

// readUpload pulls the "file" part out of a multipart upload, enforcing the
// configured size ceiling before the body is read.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename string, size int64, content string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return "", 0, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return "", 0, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return "", 0, "", false
	}
	return header.Filename, header.Size, string(data), true
}

func (s *Server) handleImportInspect(w http.ResponseWriter, r *http.Request) {
	filename, size, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	inspection, err := s.imports.Inspect(r.Context(), filename, size, content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspection)
}

func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)
	filename, _, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	var mapping core.ColumnMapping
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			writeError(w, http.StatusBadRequest, "invalid mapping: "+err.Error())
			return
		}
	}

	result, err := s.imports.Commit(r.Context(), ownerID, filename, content, mapping,
		r.FormValue("default_category_id"), r.FormValue("default_account_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOwner(ownerID)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string             `json:"name"`
		Mapping core.ColumnMapping `json:"mapping"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	preset, err := s.imports.SavePreset(r.Context(), ownerFrom(r), req.Name, req.Mapping)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.imports.ListPresets(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if presets == nil {
		presets = []core.MappingPreset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.imports.ListBatches(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if batches == nil {
		batches = []core.ImportBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}
