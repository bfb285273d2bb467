package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zelloapp/zello-backend/internal/models"
)

func TestSignupLoginFlow(t *testing.T) {
	conn := setupDB(t)
	h := NewAuthHandler(conn)

	w := httptest.NewRecorder()
	h.signup(w, request(t, http.MethodPost, "/signup", map[string]string{
		"email": "marie@example.com", "password": "secret123", "prenom": "Marie", "nom": "Curie",
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("signup must set a session cookie")
	}
	var view userView
	decodeBody(t, w, &view)
	if view.Email != "marie@example.com" || view.ID == 0 {
		t.Fatalf("view: %+v", view)
	}

	// Password must never be stored in clear.
	var user models.User
	conn.First(&user, view.ID)
	if user.Password == "secret123" {
		t.Fatal("password stored in clear")
	}

	w = httptest.NewRecorder()
	h.login(w, request(t, http.MethodPost, "/login", map[string]string{
		"email": "Marie@Example.com", "password": "secret123",
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}

	w = httptest.NewRecorder()
	h.login(w, request(t, http.MethodPost, "/login", map[string]string{
		"email": "marie@example.com", "password": "wrong",
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", w.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	conn := setupDB(t)
	h := NewAuthHandler(conn)

	w := httptest.NewRecorder()
	h.signup(w, request(t, http.MethodPost, "/signup", map[string]string{
		"email": "a@b.c", "password": "short",
	}, models.User{}, models.Store{}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password: %d", w.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	conn := setupDB(t)
	h := NewAuthHandler(conn)
	payload := map[string]string{"email": "dup@example.com", "password": "secret123"}

	w := httptest.NewRecorder()
	h.signup(w, request(t, http.MethodPost, "/signup", payload, models.User{}, models.Store{}))
	if w.Code != http.StatusCreated {
		t.Fatalf("first signup: %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.signup(w, request(t, http.MethodPost, "/signup", payload, models.User{}, models.Store{}))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", w.Code)
	}
}
