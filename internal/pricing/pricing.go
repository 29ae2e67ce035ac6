// Package pricing computes training quote totals (HT, TVA, TTC).
//
// Amounts stay unrounded here; rounding happens only when values are
// presented (see Round2 and FormatEUR).
package pricing

import (
	"math"
	"strings"

	"github.com/diewo77/go-formations/validation"
)

type Mode string

const (
	Individuel Mode = "individuel"
	Groupe     Mode = "groupe"
)

const (
	MinParticipants     = 1
	MaxParticipants     = 50
	MinHours            = 1
	MaxHours            = 2000
	MaxTaxRate          = 100.0
	MaxCertificationFee = 10000.0
	DefaultTaxRate      = 20.0
)

// ParseMode accepts the French values and their English aliases.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individuel", "individual":
		return Individuel, true
	case "groupe", "group":
		return Groupe, true
	}
	return "", false
}

// Rates holds the hourly rate (HT) per delivery mode.
type Rates struct {
	Individual float64 `json:"individuel"`
	Group      float64 `json:"groupe"`
}

func (r Rates) For(m Mode) float64 {
	if m == Groupe {
		return r.Group
	}
	return r.Individual
}

// Input is a validated pricing request.
type Input struct {
	Mode             Mode
	Participants     int
	Hours            int
	TaxRate          float64
	CertificationFee float64
}

type Result struct {
	Mode               Mode    `json:"mode"`
	HourlyRate         float64 `json:"tauxHoraire"`
	Participants       int     `json:"participants"`
	BilledParticipants int     `json:"participantsFactures"`
	Hours              int     `json:"heures"`
	Subtotal           float64 `json:"sousTotal"`
	CertificationFee   float64 `json:"coutCertification"`
	TotalHT            float64 `json:"totalHT"`
	TaxRate            float64 `json:"tva"`
	VATAmount          float64 `json:"montantTVA"`
	TotalTTC           float64 `json:"totalTTC"`
}

// NewInput validates raw numeric values (as decoded from JSON) and converts them.
func NewInput(mode string, participants, hours, taxRate, certificationFee float64) (Input, error) {
	v := validation.Violations{}
	m, ok := ParseMode(mode)
	if strings.TrimSpace(mode) == "" {
		v["mode"] = "required"
	} else if !ok {
		v["mode"] = "invalid_mode"
	}
	validation.RangeInt("participants", participants, MinParticipants, MaxParticipants, v)
	validation.RangeInt("heures", hours, MinHours, MaxHours, v)
	checkAmounts(taxRate, certificationFee, v)
	if err := v.Err(); err != nil {
		return Input{}, err
	}
	return Input{
		Mode:             m,
		Participants:     int(participants),
		Hours:            int(hours),
		TaxRate:          taxRate,
		CertificationFee: certificationFee,
	}, nil
}

// Validate checks in against the accepted ranges.
func (in Input) Validate() error {
	v := validation.Violations{}
	switch in.Mode {
	case Individuel, Groupe:
	case "":
		v["mode"] = "required"
	default:
		v["mode"] = "invalid_mode"
	}
	if in.Participants < MinParticipants || in.Participants > MaxParticipants {
		v["participants"] = "out_of_range"
	}
	if in.Hours < MinHours || in.Hours > MaxHours {
		v["heures"] = "out_of_range"
	}
	checkAmounts(in.TaxRate, in.CertificationFee, v)
	return v.Err()
}

func checkAmounts(taxRate, fee float64, v validation.Violations) {
	if math.IsNaN(taxRate) {
		v["tva"] = "invalid"
	} else {
		validation.RangeFloat("tva", taxRate, 0, MaxTaxRate, v)
	}
	if math.IsNaN(fee) {
		v["coutCertification"] = "invalid"
	} else {
		validation.RangeFloat("coutCertification", fee, 0, MaxCertificationFee, v)
	}
}

// Compute prices in with the rate of its mode. Individual delivery bills a
// single participant whatever the headcount; group delivery bills each one.
func Compute(in Input, rates Rates) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	rate := rates.For(in.Mode)
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Result{}, validation.Violations{"tauxHoraire": "must_be_positive"}.Err()
	}
	billed := 1
	if in.Mode == Groupe {
		billed = in.Participants
	}
	subtotal := float64(in.Hours) * float64(billed) * rate
	totalHT := subtotal + in.CertificationFee
	vat := totalHT * in.TaxRate / 100
	return Result{
		Mode:               in.Mode,
		HourlyRate:         rate,
		Participants:       in.Participants,
		BilledParticipants: billed,
		Hours:              in.Hours,
		Subtotal:           subtotal,
		CertificationFee:   in.CertificationFee,
		TotalHT:            totalHT,
		TaxRate:            in.TaxRate,
		VATAmount:          vat,
		TotalTTC:           totalHT + vat,
	}, nil
}
