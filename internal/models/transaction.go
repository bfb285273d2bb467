package models

import "time"

// Transaction is one completed sale. Immutable once created.
type Transaction struct {
	ID            uint  `gorm:"primaryKey"`
	StoreID       uint  `gorm:"not null;index"`
	Store         Store `gorm:"foreignKey:StoreID"`
	CustomerID    *uint `gorm:"index"` // nil = vente anonyme
	Customer      *Customer
	Items         []TransactionItem `gorm:"foreignKey:TransactionID"`
	Total         float64           `gorm:"not null"`
	PointsAwarded int               `gorm:"not null;default:0"`
	Timestamp     time.Time         `gorm:"not null;index"`
	CreatedAt     time.Time
}

type TransactionItem struct {
	ID            uint    `gorm:"primaryKey"`
	TransactionID uint    `gorm:"not null;index"`
	ProductID     uint    `gorm:"not null;index"`
	Product       Product `gorm:"foreignKey:ProductID"`
	Quantity      int     `gorm:"not null"`
	UnitPrice     float64 `gorm:"not null"` // prix au moment de la vente
}
