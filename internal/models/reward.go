package models

import (
	"time"

	"gorm.io/gorm"
)

// Reward that customers can redeem against their points balance.
type Reward struct {
	ID          uint   `gorm:"primaryKey"`
	StoreID     uint   `gorm:"not null;index"`
	Store       Store  `gorm:"foreignKey:StoreID"`
	Name        string `gorm:"not null"`
	Description string
	PointsCost  int `gorm:"not null"`
	// Pas de default gorm ici: la valeur est toujours posée explicitement,
	// sinon Create omettrait le champ à false.
	Active    bool           `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redemption records a reward claimed by a customer; points are deducted from
// the CustomerStoreLink in the same DB transaction.
type Redemption struct {
	ID          uint              `gorm:"primaryKey"`
	LinkID      uint              `gorm:"not null;index"`
	Link        CustomerStoreLink `gorm:"foreignKey:LinkID"`
	RewardID    uint              `gorm:"not null;index"`
	Reward      Reward            `gorm:"foreignKey:RewardID"`
	PointsSpent int               `gorm:"not null"`
	RedeemedAt  time.Time         `gorm:"not null"`
	CreatedAt   time.Time
}
