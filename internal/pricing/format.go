package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nbsp is used as the French thousands separator and before the currency sign.
const nbsp = "\u00a0"

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatEUR renders v in French notation, e.g. 3360 -> "3 360,00 €".
func FormatEUR(v float64) string {
	return FormatNumber(v, 2) + nbsp + "€"
}

// FormatNumber renders v with French separators and the given number of decimals.
func FormatNumber(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatPercent renders a rate such as 20 -> "20 %" or 5.5 -> "5,5 %".
func FormatPercent(v float64) string {
	s := decimal.NewFromFloat(v).String()
	return strings.Replace(s, ".", ",", 1) + nbsp + "%"
}

// Display is the presentation view of a Result, rounded to cents and formatted.
type Display struct {
	HourlyRate       string `json:"tauxHoraire"`
	Subtotal         string `json:"sousTotal"`
	CertificationFee string `json:"coutCertification"`
	TotalHT          string `json:"totalHT"`
	TaxRate          string `json:"tva"`
	VATAmount        string `json:"montantTVA"`
	TotalTTC         string `json:"totalTTC"`
}

func (r Result) Display() Display {
	return Display{
		HourlyRate:       FormatEUR(r.HourlyRate),
		Subtotal:         FormatEUR(r.Subtotal),
		CertificationFee: FormatEUR(r.CertificationFee),
		TotalHT:          FormatEUR(r.TotalHT),
		TaxRate:          FormatPercent(r.TaxRate),
		VATAmount:        FormatEUR(r.VATAmount),
		TotalTTC:         FormatEUR(r.TotalTTC),
	}
}
