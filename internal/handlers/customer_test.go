package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zelloapp/zello-backend/internal/models"
)

func TestCustomerEnroll(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	h := NewCustomerHandler(conn)

	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/customers", map[string]any{
		"nom": "Martin", "prenom": "Alice", "email": "Alice@Example.com",
	}, user, store))
	if w.Code != http.StatusCreated {
		t.Fatalf("enroll: %d %s", w.Code, w.Body)
	}
	var view linkView
	decodeBody(t, w, &view)
	if view.CardToken == "" {
		t.Fatal("enroll must mint a card token")
	}
	if view.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", view.Email)
	}

	// Enrolling the same person twice on the same store conflicts.
	w = httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/customers", map[string]any{
		"nom": "Martin", "prenom": "Alice", "email": "alice@example.com",
	}, user, store))
	if w.Code != http.StatusConflict {
		t.Fatalf("double enroll: %d %s", w.Code, w.Body)
	}
}

func TestCustomerSharedAcrossStores(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	other := models.Store{UserID: user.ID, Name: "Boutique 2", PointsRate: 1}
	conn.Create(&other)
	h := NewCustomerHandler(conn)

	payload := map[string]any{"nom": "Durand", "email": "d@example.com"}
	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/customers", payload, user, store))
	if w.Code != http.StatusCreated {
		t.Fatalf("store 1: %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/customers", payload, user, other))
	if w.Code != http.StatusCreated {
		t.Fatalf("store 2: %d %s", w.Code, w.Body)
	}

	// One customer row, two links.
	var customers, links int64
	conn.Model(&models.Customer{}).Count(&customers)
	conn.Model(&models.CustomerStoreLink{}).Count(&links)
	if customers != 1 || links != 2 {
		t.Fatalf("customers=%d links=%d", customers, links)
	}
}

func TestCustomerListAndSearch(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	h := NewCustomerHandler(conn)

	for _, nom := range []string{"Martin", "Durand", "Marchand"} {
		w := httptest.NewRecorder()
		h.Collection(w, request(t, http.MethodPost, "/customers", map[string]any{"nom": nom}, user, store))
		if w.Code != http.StatusCreated {
			t.Fatalf("enroll %s: %d", nom, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodGet, "/customers?q=Mar", nil, user, store))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list listResponse
	decodeBody(t, w, &list)
	if list.Total != 2 {
		t.Fatalf("search total: %d, want 2", list.Total)
	}
}

func TestCustomerUpdateVIP(t *testing.T) {
	conn := setupDB(t)
	user, store := seedAccount(t, conn)
	h := NewCustomerHandler(conn)

	w := httptest.NewRecorder()
	h.Collection(w, request(t, http.MethodPost, "/customers", map[string]any{"nom": "Petit"}, user, store))
	var view linkView
	decodeBody(t, w, &view)

	w = httptest.NewRecorder()
	h.Item(w, request(t, http.MethodPut, "/customers/1", map[string]any{
		"nom": "Petit", "prenom": "Lucie", "vip": true,
	}, user, store))
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}
	var link models.CustomerStoreLink
	conn.First(&link, view.LinkID)
	if !link.VIP {
		t.Fatal("vip flag not persisted")
	}
	var customer models.Customer
	conn.First(&customer, view.CustomerID)
	if customer.Prenom != "Lucie" {
		t.Fatalf("prenom: %q", customer.Prenom)
	}
}
