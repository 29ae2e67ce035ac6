// Package devis assembles training quotes from a request and the catalog.
package devis

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/diewo77/go-formations/internal/pricing"
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialised as YYYY-MM-DD.
type Date struct{ time.Time }

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

// Compact renders the date as YYYYMMDD.
func (d Date) Compact() string { return d.Format("20060102") }

// French renders the date as DD/MM/YYYY.
func (d Date) French() string { return d.Format("02/01/2006") }

func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Client struct {
	Nom        string `json:"nom" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Telephone  string `json:"telephone,omitempty" validate:"omitempty,max=30"`
	Adresse    string `json:"adresse,omitempty" validate:"omitempty,max=500"`
	Entreprise string `json:"entreprise,omitempty" validate:"omitempty,max=255"`
	Siret      string `json:"siret,omitempty" validate:"omitempty,numeric,len=14"`
}

// FormationSummary is the part of a catalog entry copied onto a quote.
type FormationSummary struct {
	Slug          string `json:"slug"`
	Titre         string `json:"titre"`
	Code          string `json:"code,omitempty"`
	Certifiante   bool   `json:"certifiante"`
	Certificateur string `json:"certificateur,omitempty"`
	DureeTexte    string `json:"dureeTexte,omitempty"`
}

type Prestation struct {
	Mode         pricing.Mode `json:"mode"`
	Participants int          `json:"participants"`
	Heures       int          `json:"heures"`
	Lieu         string       `json:"lieu,omitempty"`
	Periode      string       `json:"periode,omitempty"`
	TauxHoraire  float64      `json:"tauxHoraire"`
}

type Financier struct {
	SousTotal         float64 `json:"sousTotal"`
	CoutCertification float64 `json:"coutCertification"`
	TotalHT           float64 `json:"totalHT"`
	TauxTVA           float64 `json:"tauxTVA"`
	MontantTVA        float64 `json:"montantTVA"`
	TotalTTC          float64 `json:"totalTTC"`
}

// Conditions are the fixed commercial terms printed on every quote.
type Conditions struct {
	ValiditeJours        int    `json:"validiteJours"`
	AcomptePourcent      int    `json:"acomptePourcent"`
	Solde                string `json:"solde"`
	DelaiAnnulationJours int    `json:"delaiAnnulationJours"`
}

func DefaultConditions() Conditions {
	return Conditions{
		ValiditeJours:        30,
		AcomptePourcent:      30,
		Solde:                "à réception de facture",
		DelaiAnnulationJours: 15,
	}
}

type Quote struct {
	Reference    string           `json:"reference"`
	DateEmission Date             `json:"dateEmission"`
	DateEcheance Date             `json:"dateEcheance"`
	Client       Client           `json:"client"`
	Formation    FormationSummary `json:"formation"`
	Prestation   Prestation       `json:"prestation"`
	Financier    Financier        `json:"financier"`
	Conditions   Conditions       `json:"conditions"`
}

// Reprice recomputes the totals from the quote's own prestation and financier
// fields. For an assembled quote the result matches Financier exactly.
func Reprice(q Quote) (pricing.Result, error) {
	in := pricing.Input{
		Mode:             q.Prestation.Mode,
		Participants:     q.Prestation.Participants,
		Hours:            q.Prestation.Heures,
		TaxRate:          q.Financier.TauxTVA,
		CertificationFee: q.Financier.CoutCertification,
	}
	rate := q.Prestation.TauxHoraire
	return pricing.Compute(in, pricing.Rates{Individual: rate, Group: rate})
}

func financierFrom(r pricing.Result) Financier {
	return Financier{
		SousTotal:         r.Subtotal,
		CoutCertification: r.CertificationFee,
		TotalHT:           r.TotalHT,
		TauxTVA:           r.TaxRate,
		MontantTVA:        r.VATAmount,
		TotalTTC:          r.TotalTTC,
	}
}
