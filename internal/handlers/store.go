package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/auth"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/validation"
)

// StoreHandler manages the merchant's stores. These routes sit behind the
// session middleware but not behind RequireStore: they are how the client
// discovers which store_id to scope the rest of the API with.
type StoreHandler struct{ DB *gorm.DB }

func NewStoreHandler(db *gorm.DB) *StoreHandler { return &StoreHandler{DB: db} }

func (h *StoreHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

func (h *StoreHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID("/stores/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	var store models.Store
	if err := h.DB.Where("user_id = ?", uid).First(&store, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "store_not_found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		httpx.JSON(w, http.StatusOK, store)
	case http.MethodPut:
		h.update(w, r, store)
	case http.MethodDelete:
		h.remove(w, store)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *StoreHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var stores []models.Store
	if err := h.DB.Where("user_id = ?", uid).Order("name ASC").Find(&stores).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stores)
}

type storeInput struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Address    string   `json:"address"`
	Ville      string   `json:"ville"`
	Telephone  string   `json:"telephone"`
	PointsRate *float64 `json:"points_rate"`
}

func (in *storeInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if in.PointsRate != nil {
		validation.PositiveFloat("points_rate", *in.PointsRate, v)
	}
	return v
}

func (h *StoreHandler) create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var in storeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	store := models.Store{
		UserID:     uid,
		Name:       strings.TrimSpace(in.Name),
		Category:   in.Category,
		Address:    in.Address,
		Ville:      in.Ville,
		Telephone:  in.Telephone,
		PointsRate: 1,
	}
	if in.PointsRate != nil {
		store.PointsRate = *in.PointsRate
	}
	if err := h.DB.Create(&store).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, store)
}

func (h *StoreHandler) update(w http.ResponseWriter, r *http.Request, store models.Store) {
	var in storeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	store.Name = strings.TrimSpace(in.Name)
	store.Category = in.Category
	store.Address = in.Address
	store.Ville = in.Ville
	store.Telephone = in.Telephone
	if in.PointsRate != nil {
		store.PointsRate = *in.PointsRate
	}
	if err := h.DB.Save(&store).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *StoreHandler) remove(w http.ResponseWriter, store models.Store) {
	// Soft delete: the sales history stays queryable.
	if err := h.DB.Delete(&store).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
