package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/auth"
	"github.com/zelloapp/zello-backend/internal/db"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range db.ModelList() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return conn
}

func seedAccount(t *testing.T, conn *gorm.DB) (models.User, models.Store) {
	t.Helper()
	user := models.User{Email: t.Name() + "@test", Password: "x", Prenom: "Jean", Nom: "Dupont"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	store := models.Store{UserID: user.ID, Name: "Boutique Test", PointsRate: 1}
	if err := conn.Create(&store).Error; err != nil {
		t.Fatalf("store: %v", err)
	}
	return user, store
}

// request builds a JSON request with the user and store preinstalled in the
// context, the way the middleware chain would.
func request(t *testing.T, method, target string, body any, user models.User, store models.Store) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	ctx := r.Context()
	if user.ID != 0 {
		ctx = auth.WithUserID(ctx, user.ID)
	}
	if store.ID != 0 {
		ctx = middleware.WithStore(ctx, store)
	}
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// fixedClock pins the package clock for period resolution.
func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}
