package db

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/models"
)

// Seed inserts a demo merchant with one store, a small catalog and a few
// loyalty cards. Safe to call repeatedly; existing rows are kept.
func Seed(db *gorm.DB) {
	var user models.User
	if err := db.Where("email = ?", "demo@zello.app").First(&user).Error; err == gorm.ErrRecordNotFound {
		hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
		user = models.User{Email: "demo@zello.app", Password: string(hash), Prenom: "Démo", Nom: "Zello"}
		db.Create(&user)
	}

	var store models.Store
	if err := db.Where("user_id = ?", user.ID).First(&store).Error; err == gorm.ErrRecordNotFound {
		store = models.Store{UserID: user.ID, Name: "Boulangerie Démo", Category: "boulangerie", Ville: "Paris", PointsRate: 1}
		db.Create(&store)
	}

	baseProducts := []models.Product{
		{StoreID: store.ID, Code: "CROIS", Name: "Croissant", Category: "viennoiserie", PurchasePrice: 0.40, SalePrice: 1.20},
		{StoreID: store.ID, Code: "BAG", Name: "Baguette tradition", Category: "pain", PurchasePrice: 0.30, SalePrice: 1.30},
		{StoreID: store.ID, Code: "ECL", Name: "Éclair au chocolat", Category: "pâtisserie", PurchasePrice: 1.00, SalePrice: 3.20},
	}
	for _, p := range baseProducts {
		var existing models.Product
		if err := db.Where("store_id = ? AND code = ?", p.StoreID, p.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&p)
		}
	}

	baseRewards := []models.Reward{
		{StoreID: store.ID, Name: "Café offert", PointsCost: 50, Active: true},
		{StoreID: store.ID, Name: "Pâtisserie offerte", PointsCost: 150, Active: true},
	}
	for _, rw := range baseRewards {
		var existing models.Reward
		if err := db.Where("store_id = ? AND name = ?", rw.StoreID, rw.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&rw)
		}
	}

	var customer models.Customer
	if err := db.Where("email = ?", "alice@example.com").First(&customer).Error; err == gorm.ErrRecordNotFound {
		customer = models.Customer{Nom: "Martin", Prenom: "Alice", Email: "alice@example.com"}
		db.Create(&customer)
		db.Create(&models.CustomerStoreLink{
			CustomerID: customer.ID,
			StoreID:    store.ID,
			CardToken:  uuid.NewString(),
			JoinedAt:   time.Now(),
		})
	}
}
