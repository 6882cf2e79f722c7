package handlers

import (
	"fmt"
	"net/http"

	"github.com/vsbattles/versus/internal/battle"
	"github.com/vsbattles/versus/internal/character"
	"github.com/vsbattles/versus/internal/storage"
	"github.com/vsbattles/versus/internal/tier"
)

type battleSide struct {
	CharacterID string `json:"character_id" validate:"required,uuid"`
	Version     string `json:"version" validate:"required"`
}

type createBattleRequest struct {
	First  battleSide `json:"first" validate:"required"`
	Second battleSide `json:"second" validate:"required"`
}

type createBattleResponse struct {
	*storage.BattleRecord
	Summary string `json:"summary"`
}

func (h *Handler) HandleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req createBattleRequest
	if !h.decode(w, r, &req) {
		return
	}

	first, ok := h.loadVariant(w, r, req.First)
	if !ok {
		return
	}
	second, ok := h.loadVariant(w, r, req.Second)
	if !ok {
		return
	}

	result := battle.Compare(first, second)
	rec, err := h.store.SaveBattle(r.Context(), req.First.CharacterID, req.Second.CharacterID, result)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, createBattleResponse{BattleRecord: rec, Summary: result.String()})
}

func (h *Handler) loadVariant(w http.ResponseWriter, r *http.Request, side battleSide) (*character.Variant, bool) {
	rec, err := h.store.GetCharacter(r.Context(), side.CharacterID)
	if err != nil {
		h.writeStoreError(w, err)
		return nil, false
	}
	v, ok := rec.Character.Variant(side.Version)
	if !ok {
		msg := fmt.Sprintf("%s has no version %q", rec.Character.Name, side.Version)
		if hint := tier.Closest(side.Version, rec.Character.VersionNames()); hint != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", hint)
		}
		h.writeError(w, msg, http.StatusNotFound)
		return nil, false
	}
	return v, true
}

func (h *Handler) HandleListBattles(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListBattles(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}
