package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/scanner"
)

type itemJSON struct {
	ID             int64          `json:"id"`
	TmdbID         *int64         `json:"tmdb_id,omitempty"`
	Title          string         `json:"title"`
	OriginalTitle  string         `json:"original_title,omitempty"`
	Year           string         `json:"year,omitempty"`
	Aliases        []string       `json:"aliases,omitempty"`
	MatchedFolders []string       `json:"matched_folders,omitempty"`
	Materials      []materialJSON `json:"materials"`
}

type materialJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         string `json:"size"`
	FileType     string `json:"file_type"`
	Category     string `json:"category,omitempty"`
	AddedAt      string `json:"add_time"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

type candidateJSON struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         string `json:"size"`
	Similarity   int    `json:"similarity"`
	FileType     string `json:"file_type"`
	Category     string `json:"category,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

func toItemJSON(item *catalog.Item) itemJSON {
	out := itemJSON{
		ID:             item.ID,
		TmdbID:         item.TmdbID,
		Title:          item.Title,
		OriginalTitle:  item.OriginalTitle,
		Year:           item.Year,
		Aliases:        item.Aliases,
		MatchedFolders: item.MatchedFolders,
		Materials:      []materialJSON{},
	}
	for _, m := range item.Materials {
		out.Materials = append(out.Materials, toMaterialJSON(m))
	}
	return out
}

func toMaterialJSON(m catalog.Material) materialJSON {
	out := materialJSON{
		ID:       m.ID,
		Name:     m.Name,
		Path:     m.Path,
		Size:     m.Size,
		FileType: string(m.FileType),
		AddedAt:  m.AddedAt.Format(time.RFC3339),
	}
	if m.Category != catalog.CategoryDefault {
		out.Category = string(m.Category)
	}
	if !m.ModifiedTime.IsZero() {
		out.ModifiedTime = m.ModifiedTime.Format(time.RFC3339)
	}
	return out
}

func toCandidateJSON(c catalog.Candidate) candidateJSON {
	out := candidateJSON{
		Key:        c.Key,
		Name:       c.Name,
		Path:       c.Path,
		Size:       c.Size,
		Similarity: c.Score,
		FileType:   string(c.FileType),
	}
	if c.Category != catalog.CategoryDefault {
		out.Category = string(c.Category)
	}
	if !c.ModifiedTime.IsZero() {
		out.ModifiedTime = c.ModifiedTime.Format(time.RFC3339)
	}
	return out
}

// sortCandidates orders best score first, for presentation.
func sortCandidates(candidates []catalog.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

func (s *Server) itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.db.GetAllItems()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toItemJSON(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string   `json:"title"`
		OriginalTitle string   `json:"original_title"`
		Year          string   `json:"year"`
		TmdbID        *int64   `json:"tmdb_id"`
		Aliases       []string `json:"aliases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := &catalog.Item{
		Title:         req.Title,
		OriginalTitle: req.OriginalTitle,
		Year:          req.Year,
		TmdbID:        req.TmdbID,
		Aliases:       req.Aliases,
	}
	if err := s.db.CreateItem(item); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toItemJSON(item))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.db.GetItem(id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.db.DeleteItem(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req struct {
		Threshold   *int     `json:"threshold"`
		TempFolders []string `json:"temp_folders"`
		SaveFolders bool     `json:"save_folders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.db.GetItem(id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	threshold := s.cfg.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	folders := s.cfg.FolderSet()
	folders.Temp = append(append([]string(nil), req.TempFolders...), item.MatchedFolders...)

	if req.SaveFolders && len(req.TempFolders) > 0 {
		if err := s.manager.MergeMatchedFolders(id, req.TempFolders); err != nil {
			s.logger.Warn("api", "failed to persist matched folders", logging.F("item", id), logging.F("error", err))
		}
	}

	result, err := s.matcher.MatchOne(r.Context(), item.MatchTitles(), folders, threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortCandidates(result.Candidates)
	candidates := make([]candidateJSON, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		candidates = append(candidates, toCandidateJSON(c))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"warnings":   result.Warnings,
	})
}

func (s *Server) handleBatchMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold *int `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold := s.cfg.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	items, err := s.db.GetAllItems()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	batch, err := s.matcher.MatchAll(r.Context(), items, s.cfg.FolderSet(), threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type itemResultJSON struct {
		ItemID     int64           `json:"item_id"`
		Title      string          `json:"title"`
		Candidates []candidateJSON `json:"candidates"`
		Warnings   []string        `json:"warnings,omitempty"`
	}
	type failureJSON struct {
		ItemID int64  `json:"item_id"`
		Title  string `json:"title"`
		Error  string `json:"error"`
	}

	results := make([]itemResultJSON, 0, len(batch.Results))
	for _, res := range batch.Results {
		sortCandidates(res.Candidates)
		out := itemResultJSON{
			ItemID:     res.Item.ID,
			Title:      res.Item.Title,
			Candidates: []candidateJSON{},
			Warnings:   res.Warnings,
		}
		for _, c := range res.Candidates {
			out.Candidates = append(out.Candidates, toCandidateJSON(c))
		}
		results = append(results, out)
	}

	failures := make([]failureJSON, 0, len(batch.Failures))
	for _, f := range batch.Failures {
		failures = append(failures, failureJSON{ItemID: f.ItemID, Title: f.Title, Error: f.Err.Error()})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":       results,
		"failures":      failures,
		"failure_count": batch.FailureCount(),
	})
}

func (s *Server) handleAssociate(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req candidateJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	cand := catalog.Candidate{
		Key:      req.Key,
		Name:     req.Name,
		Path:     req.Path,
		Size:     req.Size,
		Score:    req.Similarity,
		FileType: scanner.FileType(req.FileType),
		Category: catalog.CategoryDefault,
	}
	if req.Category != "" {
		cand.Category = catalog.Category(req.Category)
	}
	if req.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, req.ModifiedTime); err == nil {
			cand.ModifiedTime = t
		}
	}

	material, err := s.manager.Associate(id, cand)
	switch {
	case errors.Is(err, catalog.ErrDuplicateMaterial):
		writeError(w, http.StatusConflict, "path already associated")
		return
	case errors.Is(err, catalog.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toMaterialJSON(*material))
}

func (s *Server) handleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.manager.RemoveMaterial(id, chi.URLParam(r, "materialID")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id, err := s.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req struct {
		Path    string `json:"path"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newPath, err := s.manager.RenamePropagate(id, req.Path, req.NewName)
	switch {
	case errors.Is(err, catalog.ErrPartialSync):
		// The file was renamed but the catalog was not updated; the
		// caller must re-sync. Distinct status so it cannot be
		// mistaken for a clean failure.
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":    err.Error(),
			"new_path": newPath,
			"state":    "partial",
		})
		return
	case errors.Is(err, catalog.ErrRenameFailed):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"new_path": newPath})
}
