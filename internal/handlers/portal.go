package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/services"
)

// PortalHandler serves the customer-facing card portal. No merchant session:
// the loyalty card token is the credential.
type PortalHandler struct {
	DB      *gorm.DB
	Loyalty *services.LoyaltyService
}

func NewPortalHandler(db *gorm.DB) *PortalHandler {
	return &PortalHandler{DB: db, Loyalty: services.NewLoyaltyService(db)}
}

// cardView is what the customer sees: balance, store identity and the rewards
// currently within or near reach. No merchant data beyond the store name.
type cardView struct {
	StoreName   string       `json:"store_name"`
	Prenom      string       `json:"prenom"`
	Points      int          `json:"points"`
	Visits      int          `json:"visits"`
	LastVisitAt *time.Time   `json:"last_visit_at"`
	Rewards     []rewardView `json:"rewards"`
}

type rewardView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	Affordable  bool   `json:"affordable"`
}

// Card shows the loyalty card for a token.
func (h *PortalHandler) Card(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.JSONError(w, http.StatusBadRequest, "token_required", nil)
		return
	}
	link, err := h.Loyalty.FindLinkByToken(token)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "card_not_found", nil)
		return
	}

	var rewards []models.Reward
	if err := h.DB.Where("store_id = ? AND active = ?", link.StoreID, true).
		Order("points_cost ASC").Find(&rewards).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "card_failed", nil)
		return
	}
	view := cardView{
		StoreName:   link.Store.Name,
		Prenom:      link.Customer.Prenom,
		Points:      link.Points,
		Visits:      link.Visits,
		LastVisitAt: link.LastVisitAt,
	}
	for _, rw := range rewards {
		view.Rewards = append(view.Rewards, rewardView{
			ID:          rw.ID,
			Name:        rw.Name,
			Description: rw.Description,
			PointsCost:  rw.PointsCost,
			Affordable:  link.Points >= rw.PointsCost,
		})
	}
	httpx.JSON(w, http.StatusOK, view)
}

type portalRedeemInput struct {
	Token    string `json:"token"`
	RewardID uint   `json:"reward_id"`
}

// Redeem lets the customer spend points from the portal.
func (h *PortalHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var in portalRedeemInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Token == "" {
		httpx.JSONError(w, http.StatusBadRequest, "token_required", nil)
		return
	}
	link, err := h.Loyalty.FindLinkByToken(in.Token)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "card_not_found", nil)
		return
	}
	redemption, err := h.Loyalty.Redeem(link.Store, *link, in.RewardID)
	if err != nil {
		writeRedeemError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"redemption":       redemption,
		"remaining_points": link.Points - redemption.PointsSpent,
	})
}
