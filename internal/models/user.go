package models

import (
	"time"

	"gorm.io/gorm"
)

const RoleAdmin = "admin"

// User is a back-office account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role      string         `gorm:"size:32;not null;default:admin" json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// All lists every model handled by AutoMigrate.
func All() []any {
	return []any{&User{}, &Formation{}, &ContactMessage{}, &DevisRecord{}, &KVEntry{}, &Upload{}}
}
