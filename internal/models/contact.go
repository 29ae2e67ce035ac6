package models

import "time"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Reference     string    `gorm:"uniqueIndex;size:40;not null" json:"reference"`
	Nom           string    `gorm:"size:120;not null" json:"nom"`
	Email         string    `gorm:"size:255;not null" json:"email"`
	Telephone     string    `gorm:"size:30" json:"telephone,omitempty"`
	Entreprise    string    `gorm:"size:255" json:"entreprise,omitempty"`
	Sujet         string    `gorm:"size:40;not null" json:"sujet"`
	FormationSlug string    `gorm:"size:120;index" json:"formationSlug,omitempty"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Consentement  bool      `gorm:"not null" json:"consentement"`
	Notifie       bool      `gorm:"not null;default:false" json:"notifie"`
}
