package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign statuses.
const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSent      = "sent"
	CampaignArchived  = "archived"
)

// Campaign is a marketing message targeted at a segment of the store's
// customers. Sending itself (mail/SMS) is delegated to an external provider;
// we only persist the definition and status.
type Campaign struct {
	ID      uint   `gorm:"primaryKey"`
	StoreID uint   `gorm:"not null;index"`
	Store   Store  `gorm:"foreignKey:StoreID"`
	Name    string `gorm:"not null"`
	Message string
	// Segment cible: vide = tous, sinon un code segment (vip, loyal, ...).
	TargetSegment string `gorm:"index"`
	Status        string `gorm:"not null;default:'draft'"`
	ScheduledAt   *time.Time
	SentAt        *time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
