package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/validation"
)

type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

func (h *ProductHandler) Item(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	id, ok := pathID("/products/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var p models.Product
	if err := h.DB.Where("store_id = ?", store.ID).First(&p, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		httpx.JSON(w, http.StatusOK, p)
	case http.MethodPut:
		h.update(w, r, p)
	case http.MethodDelete:
		if err := h.DB.Delete(&p).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	page, size := pagination(r)

	q := h.DB.Model(&models.Product{}).Where("store_id = ?", store.ID)
	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR code LIKE ?", like, like)
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	var products []models.Product
	if err := q.Order("name ASC").Limit(size).Offset((page - 1) * size).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: products, Page: page, PageSize: size, Total: total})
}

type productInput struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	Currency      string  `json:"currency"`
}

func (in *productInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("code", in.Code, v)
	validation.Required("name", in.Name, v)
	validation.NonNegativeFloat("purchase_price", in.PurchasePrice, v)
	validation.PositiveFloat("sale_price", in.SalePrice, v)
	return v
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	var in productInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{
		StoreID:       store.ID,
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:          strings.TrimSpace(in.Name),
		Category:      in.Category,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Currency:      in.Currency,
	}
	if p.Currency == "" {
		p.Currency = "EUR"
	}
	if err := h.DB.Create(&p).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "code_already_used", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, p models.Product) {
	var in productInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	p.Name = strings.TrimSpace(in.Name)
	p.Category = in.Category
	p.PurchasePrice = in.PurchasePrice
	p.SalePrice = in.SalePrice
	if in.Currency != "" {
		p.Currency = in.Currency
	}
	if err := h.DB.Save(&p).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "code_already_used", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
