package devis

import (
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/pricing"
)

type Limits struct {
	ParticipantsMin      int     `json:"participantsMin"`
	ParticipantsMax      int     `json:"participantsMax"`
	HeuresMin            int     `json:"heuresMin"`
	HeuresMax            int     `json:"heuresMax"`
	TVAMax               float64 `json:"tvaMax"`
	CoutCertificationMax float64 `json:"coutCertificationMax"`
}

type ModeInfo struct {
	Code        pricing.Mode `json:"code"`
	Libelle     string       `json:"libelle"`
	Description string       `json:"description"`
}

type FormationTarif struct {
	Slug        string        `json:"slug"`
	Titre       string        `json:"titre"`
	TauxHoraire pricing.Rates `json:"tauxHoraire"`
}

// Tarifs is the reference pricing grid shown next to the calculator.
type Tarifs struct {
	TauxHoraire pricing.Rates    `json:"tauxHoraire"`
	TVADefaut   float64          `json:"tvaDefaut"`
	Limites     Limits           `json:"limites"`
	Modes       []ModeInfo       `json:"modes"`
	Conditions  Conditions       `json:"conditions"`
	Formations  []FormationTarif `json:"formations"`
}

func BuildTarifs(grid pricing.Rates, formations []models.Formation) Tarifs {
	t := Tarifs{
		TauxHoraire: grid,
		TVADefaut:   pricing.DefaultTaxRate,
		Limites: Limits{
			ParticipantsMin:      pricing.MinParticipants,
			ParticipantsMax:      pricing.MaxParticipants,
			HeuresMin:            pricing.MinHours,
			HeuresMax:            pricing.MaxHours,
			TVAMax:               pricing.MaxTaxRate,
			CoutCertificationMax: pricing.MaxCertificationFee,
		},
		Modes: []ModeInfo{
			{Code: pricing.Individuel, Libelle: "Individuel", Description: "Formation en face-à-face, tarif horaire unique quel que soit le nombre d'inscrits"},
			{Code: pricing.Groupe, Libelle: "Groupe", Description: "Formation collective, tarif horaire appliqué à chaque participant"},
		},
		Conditions: DefaultConditions(),
		Formations: make([]FormationTarif, 0, len(formations)),
	}
	for _, f := range formations {
		t.Formations = append(t.Formations, FormationTarif{Slug: f.Slug, Titre: f.Titre, TauxHoraire: f.Rates(grid)})
	}
	return t
}
