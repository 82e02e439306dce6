package models

import (
	"slices"
	"time"
)

// User is an admin account. Password holds the bcrypt hash.
type User struct {
	ID        uint     `gorm:"primaryKey"`
	Email     string   `gorm:"size:180;not null;uniqueIndex"`
	Password  string   `gorm:"size:255;not null" json:"-"`
	Roles     []string `gorm:"type:text;serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) HasRole(role string) bool { return slices.Contains(u.Roles, role) }
