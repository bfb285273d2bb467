package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zelloapp/zello-backend/internal/models"
)

func TestPortalCard(t *testing.T) {
	conn := setupDB(t)
	_, store := seedAccount(t, conn)
	customer := models.Customer{Nom: "Martin", Prenom: "Alice"}
	conn.Create(&customer)
	link := models.CustomerStoreLink{CustomerID: customer.ID, StoreID: store.ID, Points: 60, Visits: 4, CardToken: "tok-portal", JoinedAt: time.Now()}
	conn.Create(&link)
	cheap := models.Reward{StoreID: store.ID, Name: "Café", PointsCost: 50, Active: true}
	pricey := models.Reward{StoreID: store.ID, Name: "Gâteau", PointsCost: 200, Active: true}
	hidden := models.Reward{StoreID: store.ID, Name: "Ancien", PointsCost: 10, Active: false}
	conn.Create(&cheap)
	conn.Create(&pricey)
	conn.Create(&hidden)

	h := NewPortalHandler(conn)
	w := httptest.NewRecorder()
	h.Card(w, httptest.NewRequest(http.MethodGet, "/portal/card?token=tok-portal", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("card: %d %s", w.Code, w.Body)
	}
	var view cardView
	decodeBody(t, w, &view)
	if view.StoreName != "Boutique Test" || view.Points != 60 {
		t.Fatalf("view: %+v", view)
	}
	if len(view.Rewards) != 2 {
		t.Fatalf("inactive rewards must be hidden: %+v", view.Rewards)
	}
	if !view.Rewards[0].Affordable || view.Rewards[1].Affordable {
		t.Fatalf("affordability: %+v", view.Rewards)
	}

	w = httptest.NewRecorder()
	h.Card(w, httptest.NewRequest(http.MethodGet, "/portal/card?token=wrong", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad token: %d", w.Code)
	}
}

func TestPortalRedeem(t *testing.T) {
	conn := setupDB(t)
	_, store := seedAccount(t, conn)
	customer := models.Customer{Nom: "Martin"}
	conn.Create(&customer)
	link := models.CustomerStoreLink{CustomerID: customer.ID, StoreID: store.ID, Points: 60, CardToken: "tok-redeem", JoinedAt: time.Now()}
	conn.Create(&link)
	reward := models.Reward{StoreID: store.ID, Name: "Café", PointsCost: 50, Active: true}
	conn.Create(&reward)

	h := NewPortalHandler(conn)
	w := httptest.NewRecorder()
	h.Redeem(w, request(t, http.MethodPost, "/portal/redeem", map[string]any{
		"token": "tok-redeem", "reward_id": reward.ID,
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusCreated {
		t.Fatalf("redeem: %d %s", w.Code, w.Body)
	}
	var res struct {
		RemainingPoints int `json:"remaining_points"`
	}
	decodeBody(t, w, &res)
	if res.RemainingPoints != 10 {
		t.Fatalf("remaining: %d", res.RemainingPoints)
	}

	// Not enough points left for a second one.
	w = httptest.NewRecorder()
	h.Redeem(w, request(t, http.MethodPost, "/portal/redeem", map[string]any{
		"token": "tok-redeem", "reward_id": reward.ID,
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusConflict {
		t.Fatalf("second redeem: %d", w.Code)
	}
}
