package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/engine"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/services"
)

// AnalyticsHandler exposes the segmentation engine over HTTP. Every endpoint
// takes the same period params: period (7d|30d|3m|6m|1y|all|custom) plus
// start/end for custom.
type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: services.NewAnalyticsService(db)}
}

// window resolves the request's period params; a nil error means the window
// is valid. Missing period defaults to 30d.
func (h *AnalyticsHandler) window(r *http.Request) (engine.Period, error) {
	token := r.URL.Query().Get("period")
	if token == "" {
		token = "30d"
	}
	return engine.ResolvePeriod(token, r.URL.Query().Get("start"), r.URL.Query().Get("end"), h.Analytics.Now())
}

func (h *AnalyticsHandler) withWindow(w http.ResponseWriter, r *http.Request, fn func(storeID uint, window engine.Period)) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	store, _ := middleware.StoreFrom(r.Context())
	window, err := h.window(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_period", map[string]string{"period": err.Error()})
		return
	}
	fn(store.ID, window)
}

// Overview returns the full engine result: classified products, segmented
// customers, totals and data quality warnings.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	h.withWindow(w, r, func(storeID uint, window engine.Period) {
		res, err := h.Analytics.Overview(storeID, window)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, res)
	})
}

// Products returns only the product side of the engine result.
func (h *AnalyticsHandler) Products(w http.ResponseWriter, r *http.Request) {
	h.withWindow(w, r, func(storeID uint, window engine.Period) {
		res, err := h.Analytics.Overview(storeID, window)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"window":   res.Window,
			"products": res.Products,
			"warnings": res.Warnings,
		})
	})
}

// Customers returns the segmented customers plus per-segment counts.
func (h *AnalyticsHandler) Customers(w http.ResponseWriter, r *http.Request) {
	h.withWindow(w, r, func(storeID uint, window engine.Period) {
		res, err := h.Analytics.Overview(storeID, window)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"window":    res.Window,
			"customers": res.Customers,
			"segments":  engine.SegmentCounts(res.Customers),
			"warnings":  res.Warnings,
		})
	})
}

// Frequentation returns visit buckets by day, hour and weekday.
func (h *AnalyticsHandler) Frequentation(w http.ResponseWriter, r *http.Request) {
	h.withWindow(w, r, func(storeID uint, window engine.Period) {
		res, err := h.Analytics.Frequentation(storeID, window)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, res)
	})
}

// Summary returns the headline numbers; compare=true adds the previous window
// and growth rates.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.withWindow(w, r, func(storeID uint, window engine.Period) {
		compare := r.URL.Query().Get("compare") == "true"
		res, err := h.Analytics.Summary(storeID, window, compare)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, res)
	})
}

// Forecast projects the next period from trailing windows of the same length.
// Custom periods cannot be projected, only repeating tokens.
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	store, _ := middleware.StoreFrom(r.Context())
	token := r.URL.Query().Get("period")
	if token == "" {
		token = "30d"
	}
	report, err := h.Analytics.Forecast(store.ID, token)
	if err != nil {
		// A bad token is the caller's fault; anything else is ours.
		if errors.Is(err, engine.ErrInvalidPeriod) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_period", map[string]string{"period": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "analytics_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
