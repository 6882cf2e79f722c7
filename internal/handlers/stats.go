package handlers

import (
	"net/http"

	"github.com/vsbattles/versus/internal/tier"
)

type statResponse struct {
	Name  string      `json:"name"`
	Tiers []tier.Tier `json:"tiers"`
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	set := h.extractor.Tiers()
	stats := make([]statResponse, 0, len(set.StatNames()))
	for _, name := range set.StatNames() {
		stats = append(stats, statResponse{Name: name, Tiers: set.Tiers(name)})
	}
	h.writeJSON(w, http.StatusOK, stats)
}

type scanRequest struct {
	Stat string `json:"stat" validate:"required,stat"`
	Text string `json:"text" validate:"required"`
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decode(w, r, &req) {
		return
	}

	tiers, err := h.extractor.FindTiers(req.Stat, req.Text)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if tiers == nil {
		tiers = []tier.Tier{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"stat":  req.Stat,
		"tiers": tiers,
	})
}
