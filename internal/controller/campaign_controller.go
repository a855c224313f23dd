// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/model"
	"github.com/mkandie/concierge-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// UpsertCampaign creates or partially updates a campaign and, when the
// request asks for it, attempts an immediate delivery.
func (c *CampaignController) UpsertCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		model.CampaignPayload
		DeliverNow bool `json:"deliver_now"`
		Force      bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.CampaignService.UpsertAndDeliver(r.Context(), body.CampaignPayload, body.DeliverNow, body.Force)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": campaigns,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := c.CampaignService.Store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(campaign)
}

// RunDueCampaigns is the unconditional trigger: manual admin action and
// the periodic cron caller both land here.
func (c *CampaignController) RunDueCampaigns(w http.ResponseWriter, r *http.Request) {
	summary, err := c.CampaignService.RunDue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// DeliverCampaign attempts delivery of one campaign. force bypasses the
// window dedup but two simultaneous forced deliveries still serialize.
func (c *CampaignController) DeliverCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Force bool `json:"force"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
	}

	summary, err := c.CampaignService.DeliverCampaign(r.Context(), id, body.Force)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case appErrors.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case appErrors.IsConflict(err):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
