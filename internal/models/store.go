package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is the tenant unit: every product, customer link, transaction and
// reward is scoped to exactly one store. A merchant account may own several.
type Store struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"` // propriétaire (compte marchand)
	User      User   `gorm:"foreignKey:UserID"`
	Name      string `gorm:"not null;index"`
	Category  string // ex: boulangerie, coiffeur, restaurant
	Address   string
	Ville     string
	Telephone string
	// PointsRate: points crédités par unité de devise dépensée (défaut 1).
	PointsRate float64        `gorm:"not null;default:1"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
