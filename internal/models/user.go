package models

import "time"

// User & auth related models
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // hashé (bcrypt)
	Nom       string `gorm:"index"`
	Prenom    string `gorm:"index"`
	Stores    []Store
	CreatedAt time.Time
	UpdatedAt time.Time
}
