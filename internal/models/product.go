package models

import (
	"time"

	"gorm.io/gorm"
)

// Product catalog entry, scoped to a store.
type Product struct {
	ID      uint  `gorm:"primaryKey"`
	StoreID uint  `gorm:"not null;index:idx_store_code,priority:1"`
	Store   Store `gorm:"foreignKey:StoreID"`
	// Code produit unique par boutique. Identifiant lisible pour la caisse.
	Code          string         `gorm:"size:40;not null;index:idx_store_code,unique,priority:2"`
	Name          string         `gorm:"not null"`
	Category      string         `gorm:"index"`
	PurchasePrice float64        `gorm:"not null"` // prix d'achat HT
	SalePrice     float64        `gorm:"not null"` // prix de vente
	Currency      string         `gorm:"not null;default:'EUR'"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
