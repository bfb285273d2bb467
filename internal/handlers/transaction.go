package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/engine"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/services"
)

// TransactionHandler records sales through the loyalty service and lists the
// store's history.
type TransactionHandler struct {
	DB      *gorm.DB
	Loyalty *services.LoyaltyService
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db, Loyalty: services.NewLoyaltyService(db)}
}

func (h *TransactionHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

func (h *TransactionHandler) Item(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	id, ok := pathID("/transactions/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var tx models.Transaction
	if err := h.DB.Preload("Items").Where("store_id = ?", store.ID).First(&tx, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "transaction_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) list(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	page, size := pagination(r)

	q := h.DB.Model(&models.Transaction{}).Where("store_id = ?", store.ID)
	// Optional window, same tokens as the analytics screens.
	if token := r.URL.Query().Get("period"); token != "" {
		window, err := engine.ResolvePeriod(token, r.URL.Query().Get("start"), r.URL.Query().Get("end"), timeNow())
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_period", map[string]string{"period": err.Error()})
			return
		}
		q = q.Where("timestamp BETWEEN ? AND ?", window.Start, window.End)
	}
	if cid := r.URL.Query().Get("customer_id"); cid != "" {
		q = q.Where("customer_id = ?", cid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	var txs []models.Transaction
	if err := q.Preload("Items").Order("timestamp DESC").
		Limit(size).Offset((page - 1) * size).Find(&txs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: txs, Page: page, PageSize: size, Total: total})
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	var in services.SaleInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	tx, err := h.Loyalty.RecordSale(store, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySale), errors.Is(err, services.ErrInvalidQuantity):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"items": err.Error()})
		case errors.Is(err, services.ErrUnknownProduct):
			httpx.JSONError(w, http.StatusBadRequest, "unknown_product", nil)
		case errors.Is(err, services.ErrNoLoyaltyCard):
			httpx.JSONError(w, http.StatusNotFound, "no_loyalty_card", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "sale_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}
