package models

import "time"

// Customer is a person, independent of any store.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Nom       string `gorm:"not null;index"`
	Prenom    string `gorm:"index"`
	Email     string `gorm:"index"`
	Telephone string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerStoreLink is the loyalty relationship between a customer and one
// store: points balance, visit counter and the card token used by the
// customer-facing portal. Points and visits are mutated by the loyalty
// service when a sale is recorded, never by the analytics engine.
type CustomerStoreLink struct {
	ID         uint     `gorm:"primaryKey"`
	CustomerID uint     `gorm:"not null;index:idx_customer_store,unique,priority:1"`
	Customer   Customer `gorm:"foreignKey:CustomerID"`
	StoreID    uint     `gorm:"not null;index:idx_customer_store,unique,priority:2"`
	Store      Store    `gorm:"foreignKey:StoreID"`
	Points     int      `gorm:"not null;default:0"`
	Visits     int      `gorm:"not null;default:0"`
	VIP        bool     `gorm:"column:vip;not null;default:false"`
	// CardToken identifie la carte de fidélité côté portail client (UUID).
	CardToken   string `gorm:"size:36;uniqueIndex"`
	JoinedAt    time.Time
	LastVisitAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
