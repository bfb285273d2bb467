package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/engine"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/validation"
)

type CampaignHandler struct{ DB *gorm.DB }

func NewCampaignHandler(db *gorm.DB) *CampaignHandler { return &CampaignHandler{DB: db} }

// validSegments are the codes a campaign may target; empty targets everyone.
var validSegments = map[string]bool{
	"":                       true,
	engine.SegmentVIP:        true,
	engine.SegmentLoyal:      true,
	engine.SegmentRegular:    true,
	engine.SegmentInactive:   true,
	engine.SegmentOccasional: true,
}

func (h *CampaignHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *CampaignHandler) Item(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	path := strings.TrimPrefix(r.URL.Path, "/campaigns/")
	// POST /campaigns/{id}/send marks the campaign as sent.
	if rest, found := strings.CutSuffix(path, "/send"); found {
		id, ok := pathID("/campaigns/", "/campaigns/"+rest)
		if !ok {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		h.send(w, r, store, id)
		return
	}
	id, ok := pathID("/campaigns/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var c models.Campaign
	if err := h.DB.Where("store_id = ?", store.ID).First(&c, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "campaign_not_found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		httpx.JSON(w, http.StatusOK, c)
	case http.MethodPut:
		h.update(w, r, c)
	case http.MethodDelete:
		if err := h.DB.Delete(&c).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *CampaignHandler) list(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	q := h.DB.Where("store_id = ?", store.ID)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var campaigns []models.Campaign
	if err := q.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, campaigns)
}

type campaignInput struct {
	Name          string     `json:"name"`
	Message       string     `json:"message"`
	TargetSegment string     `json:"target_segment"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

func (in *campaignInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !validSegments[in.TargetSegment] {
		v["target_segment"] = "unknown_segment"
	}
	return v
}

func (h *CampaignHandler) create(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	var in campaignInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Campaign{
		StoreID:       store.ID,
		Name:          strings.TrimSpace(in.Name),
		Message:       in.Message,
		TargetSegment: in.TargetSegment,
		Status:        models.CampaignDraft,
		ScheduledAt:   in.ScheduledAt,
	}
	if in.ScheduledAt != nil {
		c.Status = models.CampaignScheduled
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) update(w http.ResponseWriter, r *http.Request, c models.Campaign) {
	if c.Status == models.CampaignSent {
		httpx.JSONError(w, http.StatusConflict, "campaign_already_sent", nil)
		return
	}
	var in campaignInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Message = in.Message
	c.TargetSegment = in.TargetSegment
	c.ScheduledAt = in.ScheduledAt
	if in.ScheduledAt != nil && c.Status == models.CampaignDraft {
		c.Status = models.CampaignScheduled
	}
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) send(w http.ResponseWriter, r *http.Request, store models.Store, id uint) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var c models.Campaign
	if err := h.DB.Where("store_id = ?", store.ID).First(&c, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "campaign_not_found", nil)
		return
	}
	if c.Status == models.CampaignSent {
		httpx.JSONError(w, http.StatusConflict, "campaign_already_sent", nil)
		return
	}
	now := timeNow()
	c.Status = models.CampaignSent
	c.SentAt = &now
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "send_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
