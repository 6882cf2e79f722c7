package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/extract"
	"github.com/vsbattles/versus/internal/storage"
)

type createCharacterRequest struct {
	Name  string `json:"name" validate:"required"`
	Sheet string `json:"sheet" validate:"required"`
}

type createCharacterResponse struct {
	*storage.CharacterRecord
	Issues []string `json:"issues"`
}

func (h *Handler) HandleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if !h.decode(w, r, &req) {
		return
	}

	set := h.extractor.Tiers()
	sheet, err := extract.ParseSheet(strings.NewReader(req.Sheet), set.StatNames())
	if err != nil {
		h.writeError(w, "Invalid stat sheet: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(sheet.Versions) == 0 {
		h.writeError(w, "Invalid stat sheet: Key line lists no versions", http.StatusBadRequest)
		return
	}

	c := character.NewWithVersions(strings.TrimSpace(req.Name), sheet.Versions)
	report, err := h.extractor.Populate(c, sheet.Blocks)
	if err != nil {
		h.writeError(w, "Extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := h.store.SaveCharacter(r.Context(), c)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	issues := make([]string, 0)
	for _, issue := range report.Issues() {
		issues = append(issues, issue.Error())
	}
	h.writeJSON(w, http.StatusCreated, createCharacterResponse{CharacterRecord: rec, Issues: issues})
}

func (h *Handler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListCharacters(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) HandleGetCharacter(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetCharacter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCharacter(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
