package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/auth"
	"github.com/zelloapp/zello-backend/internal/handlers"
	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
)

// New builds the full HTTP handler: routes, session middleware, tenant
// resolution, request logging and panic recovery.
func New(db *gorm.DB) http.Handler {
	// Sessions pointing at a deleted account are rejected.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count == 1
	})

	authH := handlers.NewAuthHandler(db)
	storeH := handlers.NewStoreHandler(db)
	productH := handlers.NewProductHandler(db)
	customerH := handlers.NewCustomerHandler(db)
	txH := handlers.NewTransactionHandler(db)
	rewardH := handlers.NewRewardHandler(db)
	campaignH := handlers.NewCampaignHandler(db)
	analyticsH := handlers.NewAnalyticsHandler(db)
	portalH := handlers.NewPortalHandler(db)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", health)
	mux.HandleFunc("/healthz", health)

	// Public: signup, login, and the card-token customer portal.
	authH.Register(mux)
	mux.HandleFunc("/portal/card", portalH.Card)
	mux.HandleFunc("/portal/redeem", portalH.Redeem)

	// Session required but no store yet: the client picks a store first.
	authed := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	mux.Handle("/stores", authed(storeH.Collection))
	mux.Handle("/stores/", authed(storeH.Item))

	// Everything else is store-scoped via store_id / X-Store-ID.
	scoped := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(middleware.RequireStore(db, h))
	}
	mux.Handle("/products", scoped(productH.Collection))
	mux.Handle("/products/", scoped(productH.Item))
	mux.Handle("/customers", scoped(customerH.Collection))
	mux.Handle("/customers/", scoped(customerH.Item))
	mux.Handle("/transactions", scoped(txH.Collection))
	mux.Handle("/transactions/", scoped(txH.Item))
	mux.Handle("/rewards", scoped(rewardH.Collection))
	mux.Handle("/rewards/", scoped(rewardH.Item))
	mux.Handle("/redemptions", scoped(rewardH.ListRedemptions))
	mux.Handle("/redeem", scoped(rewardH.Redeem))
	mux.Handle("/campaigns", scoped(campaignH.Collection))
	mux.Handle("/campaigns/", scoped(campaignH.Item))

	mux.Handle("/analytics/overview", scoped(analyticsH.Overview))
	mux.Handle("/analytics/products", scoped(analyticsH.Products))
	mux.Handle("/analytics/customers", scoped(analyticsH.Customers))
	mux.Handle("/analytics/frequentation", scoped(analyticsH.Frequentation))
	mux.Handle("/analytics/summary", scoped(analyticsH.Summary))
	mux.Handle("/analytics/forecast", scoped(analyticsH.Forecast))

	return middleware.Logging(middleware.Recover(auth.Middleware(mux)))
}

func health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
