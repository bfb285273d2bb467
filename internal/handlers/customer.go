package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/httpx"
	"github.com/zelloapp/zello-backend/internal/middleware"
	"github.com/zelloapp/zello-backend/internal/models"
	"github.com/zelloapp/zello-backend/internal/validation"
)

// CustomerHandler manages the store's loyalty members. A Customer row is
// shared across stores; what this handler actually creates and lists are
// CustomerStoreLink rows scoped to the tenant.
type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

// linkView flattens a link with its customer for the client.
type linkView struct {
	LinkID      uint       `json:"link_id"`
	CustomerID  uint       `json:"customer_id"`
	Nom         string     `json:"nom"`
	Prenom      string     `json:"prenom"`
	Email       string     `json:"email"`
	Telephone   string     `json:"telephone"`
	Points      int        `json:"points"`
	Visits      int        `json:"visits"`
	VIP         bool       `json:"vip"`
	CardToken   string     `json:"card_token"`
	JoinedAt    time.Time  `json:"joined_at"`
	LastVisitAt *time.Time `json:"last_visit_at"`
}

func viewOfLink(l models.CustomerStoreLink) linkView {
	return linkView{
		LinkID:      l.ID,
		CustomerID:  l.CustomerID,
		Nom:         l.Customer.Nom,
		Prenom:      l.Customer.Prenom,
		Email:       l.Customer.Email,
		Telephone:   l.Customer.Telephone,
		Points:      l.Points,
		Visits:      l.Visits,
		VIP:         l.VIP,
		CardToken:   l.CardToken,
		JoinedAt:    l.JoinedAt,
		LastVisitAt: l.LastVisitAt,
	}
}

func (h *CustomerHandler) Collection(w http.ResponseWriter, r *http.Request) {
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

func (h *CustomerHandler) Item(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	id, ok := pathID("/customers/", r.URL.Path)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var link models.CustomerStoreLink
	if err := h.DB.Preload("Customer").
		Where("store_id = ? AND customer_id = ?", store.ID, id).
		First(&link).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "customer_not_found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		httpx.JSON(w, http.StatusOK, viewOfLink(link))
	case http.MethodPut:
		h.update(w, r, link)
	default:
		w.Header().Set("Allow", "GET, PUT")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	page, size := pagination(r)

	q := h.DB.Model(&models.CustomerStoreLink{}).
		Joins("JOIN customers ON customers.id = customer_store_links.customer_id").
		Where("customer_store_links.store_id = ?", store.ID)
	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("customers.nom LIKE ? OR customers.prenom LIKE ? OR customers.email LIKE ?", like, like, like)
	}
	if r.URL.Query().Get("vip") == "true" {
		q = q.Where("customer_store_links.vip = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	var links []models.CustomerStoreLink
	if err := q.Preload("Customer").
		Order("customers.nom ASC, customers.prenom ASC").
		Limit(size).Offset((page - 1) * size).
		Find(&links).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	views := make([]linkView, 0, len(links))
	for _, l := range links {
		views = append(views, viewOfLink(l))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: views, Page: page, PageSize: size, Total: total})
}

type customerInput struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	VIP       *bool  `json:"vip"`
}

func (h *CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	store, _ := middleware.StoreFrom(r.Context())
	var in customerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nom", in.Nom, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	var link models.CustomerStoreLink
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		// Reuse the existing customer record when the email is known.
		if email != "" {
			tx.Where("email = ?", email).First(&customer)
		}
		if customer.ID == 0 {
			customer = models.Customer{
				Nom:       strings.TrimSpace(in.Nom),
				Prenom:    strings.TrimSpace(in.Prenom),
				Email:     email,
				Telephone: strings.TrimSpace(in.Telephone),
			}
			if err := tx.Create(&customer).Error; err != nil {
				return err
			}
		}
		link = models.CustomerStoreLink{
			CustomerID: customer.ID,
			StoreID:    store.ID,
			CardToken:  uuid.NewString(),
			JoinedAt:   time.Now(),
		}
		if in.VIP != nil {
			link.VIP = *in.VIP
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		link.Customer = customer
		return nil
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "already_enrolled", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOfLink(link))
}

func (h *CustomerHandler) update(w http.ResponseWriter, r *http.Request, link models.CustomerStoreLink) {
	var in customerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nom", in.Nom, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		link.Customer.Nom = strings.TrimSpace(in.Nom)
		link.Customer.Prenom = strings.TrimSpace(in.Prenom)
		link.Customer.Email = strings.ToLower(strings.TrimSpace(in.Email))
		link.Customer.Telephone = strings.TrimSpace(in.Telephone)
		if err := tx.Save(&link.Customer).Error; err != nil {
			return err
		}
		if in.VIP != nil {
			link.VIP = *in.VIP
			if err := tx.Model(&models.CustomerStoreLink{}).
				Where("id = ?", link.ID).
				Update("vip", link.VIP).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOfLink(link))
}
