package models

import "time"

// DevisRecord is the persisted form of an assembled quote. Payload holds the
// full quote as JSON; the other columns exist for lookup and listing.
type DevisRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Reference     string    `gorm:"uniqueIndex;size:32;not null" json:"reference"`
	FormationSlug string    `gorm:"size:120;index;not null" json:"formationSlug"`
	ClientNom     string    `gorm:"size:120;not null" json:"clientNom"`
	ClientEmail   string    `gorm:"size:255;not null" json:"clientEmail"`
	DateEmission  time.Time `gorm:"not null" json:"dateEmission"`
	TotalTTC      float64   `gorm:"not null" json:"totalTTC"`
	AccessToken   string    `gorm:"size:64;not null;default:''" json:"-"`
	Payload       string    `gorm:"type:text;not null" json:"-"`
}

// KVEntry backs small keyed documents such as the per-session quote history.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
