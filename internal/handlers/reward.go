package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/services"
	"github.com/zelloapp/zello-backend/internal/validation"
)

type RewardHandler struct {
	DB      *gorm.DB
	Loyalty *services.LoyaltyService
}

func NewRewardHandler(db *gorm.DB) *RewardHandler {
	return &RewardHandler{DB: db, Loyalty: services.NewLoyaltyService(db)}
}

func (h *RewardHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

func (h *RewardHandler) Item(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	id, ok := pathID("/rewards/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var reward models.Reward
	if err := h.DB.Where("store_id = ?", store.ID).First(&reward, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "reward_not_found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		httpx.JSON(w, http.StatusOK, reward)
	case http.MethodPut:
		h.update(w, r, reward)
	case http.MethodDelete:
		if err := h.DB.Delete(&reward).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *RewardHandler) list(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	q := h.DB.Where("store_id = ?", store.ID)
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("active = ?", true)
	}
	var rewards []models.Reward
	if err := q.Order("points_cost ASC").Find(&rewards).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rewards)
}

type rewardInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Active      *bool  `json:"active"`
}

func (in *rewardInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.PositiveInt("points_cost", in.PointsCost, v)
	return v
}

func (h *RewardHandler) create(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	var in rewardInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	reward := models.Reward{
		StoreID:     store.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PointsCost:  in.PointsCost,
		Active:      true,
	}
	if in.Active != nil {
		reward.Active = *in.Active
	}
	if err := h.DB.Create(&reward).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) update(w http.ResponseWriter, r *http.Request, reward models.Reward) {
	var in rewardInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	reward.Name = strings.TrimSpace(in.Name)
	reward.Description = in.Description
	reward.PointsCost = in.PointsCost
	if in.Active != nil {
		reward.Active = *in.Active
	}
	if err := h.DB.Save(&reward).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, reward)
}

type redeemInput struct {
	CustomerID uint `json:"customer_id"`
	RewardID   uint `json:"reward_id"`
}

// Redeem spends a customer's points on a reward, merchant side (at the till).
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	store, _ := middleware.StoreFrom(r.Context())
	var in redeemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var link models.CustomerStoreLink
	if err := h.DB.Where("customer_id = ? AND store_id = ?", in.CustomerID, store.ID).
		First(&link).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "customer_not_found", nil)
		return
	}
	redemption, err := h.Loyalty.Redeem(store, link, in.RewardID)
	if err != nil {
		writeRedeemError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, redemption)
}

// ListRedemptions returns the store's redemption history, newest first.
func (h *RewardHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	store, _ := middleware.StoreFrom(r.Context())
	page, size := pagination(r)

	q := h.DB.Model(&models.Redemption{}).
		Joins("JOIN customer_store_links ON customer_store_links.id = redemptions.link_id").
		Where("customer_store_links.store_id = ?", store.ID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	var redemptions []models.Redemption
	if err := q.Preload("Reward").Order("redeemed_at DESC").
		Limit(size).Offset((page - 1) * size).Find(&redemptions).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: redemptions, Page: page, PageSize: size, Total: total})
}

func writeRedeemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRewardUnavailable):
		httpx.JSONError(w, http.StatusNotFound, "reward_not_found", nil)
	case errors.Is(err, services.ErrInsufficientPoints):
		httpx.JSONError(w, http.StatusConflict, "insufficient_points", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "redeem_failed", nil)
	}
}
