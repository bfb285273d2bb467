package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zelloapp/zello-backend/internal/models"
)

func TestSaleAwardsPointsOverHTTP(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	p := models.Product{StoreID: store.ID, Code: "CROIS", Name: "Croissant", SalePrice: 1.2}
	conn.Create(&p)
	customer := models.Customer{Nom: "Martin"}
	conn.Create(&customer)
	link := models.CustomerStoreLink{CustomerID: customer.ID, StoreID: store.ID, CardToken: "tok-sale", JoinedAt: time.Now()}
	conn.Create(&link)

	h := NewTransactionHandler(conn)
	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/transactions", map[string]any{
		"customer_id": customer.ID,
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 10}},
	}, user, store))
	if w.Code != http.StatusCreated {
		t.Fatalf("sale: %d %s", w.Code, w.Body)
	}
	var tx models.Transaction
	decodeBody(t, w, &tx)
	if tx.Total != 12 || tx.PointsAwarded != 12 {
		t.Fatalf("tx: total=%v points=%d", tx.Total, tx.PointsAwarded)
	}

	var fresh models.CustomerStoreLink
	conn.First(&fresh, link.ID)
	if fresh.Points != 12 || fresh.Visits != 1 {
		t.Fatalf("link: points=%d visits=%d", fresh.Points, fresh.Visits)
	}
}

func TestSaleErrorMapping(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	h := NewTransactionHandler(conn)

	// Empty sale.
	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/transactions", map[string]any{
		"items": []map[string]any{},
	}, user, store))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty sale: %d", w.Code)
	}

	// Unknown product.
	w = httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/transactions", map[string]any{
		"items": []map[string]any{{"product_id": 999, "quantity": 1}},
	}, user, store))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown product: %d", w.Code)
	}

	// Customer without a card.
	p := models.Product{StoreID: store.ID, Code: "P", Name: "P", SalePrice: 1}
	conn.Create(&p)
	c := models.Customer{Nom: "Sans"}
	conn.Create(&c)
	w = httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/transactions", map[string]any{
		"customer_id": c.ID,
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 1}},
	}, user, store))
	if w.Code != http.StatusNotFound {
		t.Fatalf("no card: %d %s", w.Code, w.Body)
	}
}

func TestTransactionListWindowed(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	fixedClock(t, now)

	for _, daysAgo := range []int{2, 5, 45} {
		tx := models.Transaction{StoreID: store.ID, Total: 10, Timestamp: now.AddDate(0, 0, -daysAgo)}
		if err := conn.Create(&tx).Error; err != nil {
			t.Fatalf("tx: %v", err)
		}
	}

	h := NewTransactionHandler(conn)
	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodGet, "/transactions?period=30d", nil, user, store))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body)
	}
	var list listResponse
	decodeBody(t, w, &list)
	if list.Total != 2 {
		t.Fatalf("windowed total: %d, want 2", list.Total)
	}

	w = httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodGet, "/transactions?period=yolo", nil, user, store))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad period: %d", w.Code)
	}
}
