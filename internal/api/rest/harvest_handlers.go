package rest

import (
	"encoding/json"
	"net/http"

	"github.com/fortuna/ceres/internal/harvest"
)

// HarvestHandler proxies API calls to the harvest job queue.
type HarvestHandler struct {
	service *harvest.Service
}

// NewHarvestHandler wires the REST layer to the harvest service.
func NewHarvestHandler(service *harvest.Service) *HarvestHandler {
	return &HarvestHandler{service: service}
}

type apiHarvestRequest struct {
	Years     []int    `json:"years"`
	Year      int      `json:"year"`
	Genders   []string `json:"genders"`
	Divisions []string `json:"divisions"`
	DryRun    bool     `json:"dry_run"`
}

// HandleHarvestRequest handles POST /api/v1/harvest.
func (h *HarvestHandler) HandleHarvestRequest(w http.ResponseWriter, r *http.Request) {
	var req apiHarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	spec := harvest.JobSpec{
		Years:     req.Years,
		Genders:   req.Genders,
		Divisions: req.Divisions,
		DryRun:    req.DryRun,
	}
	if req.Year != 0 {
		spec.Years = append(spec.Years, req.Year)
	}

	job, err := h.service.Enqueue(spec)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to enqueue harvest job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"job": job})
}

// HandleHarvestStatus handles GET /api/v1/harvest/status.
func (h *HarvestHandler) HandleHarvestStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()

	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active jobs",
		"queued":  status.Queued,
	}
	if status.Active != nil {
		response["status"] = status.Active.Status
		response["message"] = status.Active.Message
		response["active_job"] = status.Active
	}

	history := make([]*harvest.Job, 0, len(status.History))
	history = append(history, status.History...)
	response["history"] = history

	respondJSON(w, http.StatusOK, response)
}
