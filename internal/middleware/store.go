package middleware

import (
	"context"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/auth"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/models"
)

type ctxKey string

const storeCtxKey = ctxKey("store")

// StoreFrom returns the store attached to the request context by
// RequireStore.
func StoreFrom(ctx context.Context) (models.Store, bool) {
	s, ok := ctx.Value(storeCtxKey).(models.Store)
	return s, ok
}

// WithStore attaches a store to the context (exported for handler tests).
func WithStore(ctx context.Context, s models.Store) context.Context {
	return context.WithValue(ctx, storeCtxKey, s)
}

// RequireStore resolves the tenant: it reads store_id (query param, falling
// back to the X-Store-ID header), checks that the authenticated user owns
// that store, and attaches it to the context. Every store-scoped route runs
// behind this.
func RequireStore(db *gorm.DB, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		idStr := r.URL.Query().Get("store_id")
		if idStr == "" {
			idStr = r.Header.Get("X-Store-ID")
		}
		id, _ := strconv.Atoi(idStr)
		if id <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "store_id_required", nil)
			return
		}
		var store models.Store
		if err := db.First(&store, id).Error; err != nil {
			httpx.JSONError(w, http.StatusNotFound, "store_not_found", nil)
			return
		}
		if store.UserID != uid {
			// Never confirm that another account's store exists.
			httpx.JSONError(w, http.StatusNotFound, "store_not_found", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
	})
}
