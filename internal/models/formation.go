package models

import (
	"time"

	"github.com/diewo77/go-formations/internal/pricing"
)

// Etat values of a catalog entry.
const (
	EtatActive   = "active"
	EtatAVenir   = "a_venir"
	EtatArchivee = "archivee"
)

// Formation is a training program of the catalog. Reference data: the devis
// flow reads it and never writes it.
type Formation struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`

	Slug          string `gorm:"uniqueIndex;size:120;not null" json:"slug" validate:"required,max=120,slug"`
	Titre         string `gorm:"size:255;not null" json:"titre" validate:"required,max=255"`
	Code          string `gorm:"size:64" json:"code" validate:"omitempty,max=64"`
	Categorie     string `gorm:"size:120;index" json:"categorie,omitempty" validate:"omitempty,max=120"`
	Certifiante   bool   `gorm:"index" json:"certifiante"`
	Certificateur string `gorm:"size:255" json:"certificateur,omitempty" validate:"omitempty,max=255"`
	Etat          string `gorm:"size:32;index;not null;default:active" json:"etat" validate:"omitempty,oneof=active a_venir archivee"`
	Resume        string `gorm:"type:text" json:"resume,omitempty"`

	Objectifs            []string `gorm:"serializer:json;type:text" json:"objectifs"`
	Prerequis            string   `gorm:"type:text" json:"prerequis"`
	DureeHeures          int      `json:"dureeHeures" validate:"gte=0,lte=2000"`
	DureeTexte           string   `gorm:"size:255" json:"dureeTexte"`
	Modalites            string   `gorm:"type:text" json:"modalites"`
	DelaiAcces           string   `gorm:"size:255" json:"delaiAcces"`
	MethodesPedagogiques string   `gorm:"type:text" json:"methodesPedagogiques"`
	Evaluation           string   `gorm:"type:text" json:"evaluation"`
	Accessibilite        string   `gorm:"type:text" json:"accessibilite"`

	TarifIndividuel float64 `gorm:"not null;default:0" json:"tarifIndividuel" validate:"gte=0"`
	TarifGroupe     float64 `gorm:"not null;default:0" json:"tarifGroupe" validate:"gte=0"`
}

// Rates returns the program's hourly rates, falling back to grid for any unset mode.
func (f Formation) Rates(grid pricing.Rates) pricing.Rates {
	r := pricing.Rates{Individual: f.TarifIndividuel, Group: f.TarifGroupe}
	if r.Individual <= 0 {
		r.Individual = grid.Individual
	}
	if r.Group <= 0 {
		r.Group = grid.Group
	}
	return r
}
