package pdf

import (
	"fmt"
	"strings"

	"github.com/diewo77/go-formations/internal/devis"
	"github.com/diewo77/go-formations/internal/pricing"
	"github.com/diewo77/go-formations/validation"
)

// table column widths: designation, quantity, unit price, total
var cols = [4]float64{86, 30, 32, 32}

// RenderQuote lays out q as a two-page quote: figures on the first page,
// terms and acceptance block on the second.
func (r *Renderer) RenderQuote(q devis.Quote, template string) ([]byte, error) {
	if strings.TrimSpace(q.Formation.Slug) == "" {
		return nil, validation.Violations{"formationSlug": "formation_required"}.Err()
	}
	tpl, err := ParseTemplate(template, r.def)
	if err != nil {
		return nil, err
	}
	d := r.newDoc(tpl, "Devis "+q.Reference)
	d.SetSubject("Devis de formation : "+q.Formation.Titre, true)
	d.AddPage()
	d.header(r.issuer, "DEVIS")

	d.quoteMeta(q)
	d.quoteSubject(q)
	d.quoteTable(q)
	d.quoteTotals(q)

	d.AddPage()
	d.header(r.issuer, "DEVIS")
	d.quoteConditions(q)
	d.signature()
	return d.bytes()
}

func (d *doc) quoteMeta(q devis.Quote) {
	top := d.GetY()
	half := bodyWidth / 2

	d.SetFont("Helvetica", "B", 10)
	d.line(6, "Devis n° "+q.Reference)
	d.SetFont("Helvetica", "", 10)
	d.line(5, "Date d'émission : "+q.DateEmission.French())
	d.line(5, "Date d'échéance : "+q.DateEcheance.French())
	d.line(5, fmt.Sprintf("Validité de l'offre : %d jours", q.Conditions.ValiditeJours))
	left := d.GetY()

	x := margin + half + 5
	w := half - 5
	boxTop := top
	if d.th.band {
		d.fill(d.th.softFill)
		d.Rect(x-2, boxTop-2, w+2, 34, "F")
	}
	d.SetXY(x, top)
	d.SetFont("Helvetica", "B", 9)
	d.color(d.th.muted)
	d.text(w, 5, "DESTINATAIRE", "L")
	d.Ln(5)
	d.color(d.th.text)
	d.SetFont("Helvetica", "B", 10)
	d.SetX(x)
	d.text(w, 5, trim(q.Client.Nom, 50), "L")
	d.Ln(5)
	d.SetFont("Helvetica", "", 9.5)
	for _, s := range []string{q.Client.Entreprise, q.Client.Adresse, q.Client.Email, q.Client.Telephone} {
		if s == "" {
			continue
		}
		d.SetX(x)
		d.MultiCell(w, 4.5, d.tr(s), "", "L", false)
	}
	if q.Client.Siret != "" {
		d.SetX(x)
		d.text(w, 4.5, "SIRET : "+q.Client.Siret, "L")
		d.Ln(4.5)
	}
	if y := d.GetY(); y > left {
		left = y
	}
	d.SetY(left + 4)
}

func (d *doc) quoteSubject(q devis.Quote) {
	d.heading("Objet")
	d.SetFont("Helvetica", "B", 10)
	d.para(5, "Formation « "+q.Formation.Titre+" »")
	d.SetFont("Helvetica", "", 9.5)
	var info []string
	if q.Formation.Code != "" {
		info = append(info, "Code : "+q.Formation.Code)
	}
	if q.Formation.Certifiante {
		c := "Formation certifiante"
		if q.Formation.Certificateur != "" {
			c += " (" + q.Formation.Certificateur + ")"
		}
		info = append(info, c)
	}
	if len(info) > 0 {
		d.line(5, strings.Join(info, "  •  "))
	}
	p := q.Prestation
	d.line(5, "Modalité : "+modeLabel(p.Mode)+", "+participantsLabel(p.Participants)+", "+fmt.Sprintf("%d heures", p.Heures))
	if p.Lieu != "" {
		d.line(5, "Lieu : "+p.Lieu)
	}
	if p.Periode != "" {
		d.line(5, "Période : "+p.Periode)
	}
}

func (d *doc) quoteTable(q devis.Quote) {
	d.heading("Détail de la prestation")
	h := d.th.rowH
	d.SetFont("Helvetica", "B", 9.5)
	d.fill(d.th.softFill)
	d.draw(d.th.muted)
	headers := [4]string{"Désignation", "Quantité", "P.U. HT", "Total HT"}
	aligns := [4]string{"L", "C", "R", "R"}
	for i, hd := range headers {
		d.CellFormat(cols[i], h, d.tr(hd), "1", 0, aligns[i], true, 0, "")
	}
	d.Ln(-1)

	d.SetFont("Helvetica", "", 9.5)
	p := q.Prestation
	qty := fmt.Sprintf("%d h", p.Heures)
	if p.Mode == pricing.Groupe {
		qty = fmt.Sprintf("%d × %d h", p.Participants, p.Heures)
	}
	d.row(h, trim("Formation : "+q.Formation.Titre, 52), qty, pricing.FormatEUR(p.TauxHoraire)+"/h", pricing.FormatEUR(q.Financier.SousTotal))
	if q.Financier.CoutCertification > 0 {
		d.row(h, "Frais de certification", "1", pricing.FormatEUR(q.Financier.CoutCertification), pricing.FormatEUR(q.Financier.CoutCertification))
	}
}

func (d *doc) row(h float64, cells ...string) {
	aligns := [4]string{"L", "C", "R", "R"}
	for i, c := range cells {
		d.CellFormat(cols[i], h, d.tr(c), "1", 0, aligns[i], false, 0, "")
	}
	d.Ln(-1)
}

func (d *doc) quoteTotals(q devis.Quote) {
	d.Ln(d.th.padding + 2)
	labelW, valueW := 40.0, 32.0
	x := margin + bodyWidth - labelW - valueW
	f := q.Financier
	lines := [][2]string{
		{"Total HT", pricing.FormatEUR(f.TotalHT)},
		{"TVA (" + pricing.FormatPercent(f.TauxTVA) + ")", pricing.FormatEUR(f.MontantTVA)},
	}
	d.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		d.SetX(x)
		d.text(labelW, 6, l[0], "L")
		d.text(valueW, 6, l[1], "R")
		d.Ln(6)
	}
	d.SetX(x)
	d.SetFont("Helvetica", "B", 11)
	if d.th.band {
		d.fill(d.th.accent)
		d.SetTextColor(255, 255, 255)
	} else {
		d.fill(d.th.softFill)
	}
	d.CellFormat(labelW, 8, d.tr("Total TTC"), "T", 0, "L", true, 0, "")
	d.CellFormat(valueW, 8, d.tr(pricing.FormatEUR(f.TotalTTC)), "T", 1, "R", true, 0, "")
	d.color(d.th.text)
	d.SetFont("Helvetica", "", 8.5)
	if f.TauxTVA == 0 {
		d.Ln(2)
		d.line(4, "TVA non applicable, article 261-4-4° du CGI.")
	}
	acompte := f.TotalTTC * float64(q.Conditions.AcomptePourcent) / 100
	d.Ln(2)
	d.line(4, fmt.Sprintf("Acompte à la commande (%d %%) : %s", q.Conditions.AcomptePourcent, pricing.FormatEUR(acompte)))
}

func (d *doc) quoteConditions(q devis.Quote) {
	c := q.Conditions
	d.heading("Conditions")
	items := []string{
		fmt.Sprintf("Offre valable %d jours à compter du %s.", c.ValiditeJours, q.DateEmission.French()),
		fmt.Sprintf("Un acompte de %d %% du montant TTC est dû à la signature du présent devis.", c.AcomptePourcent),
		"Le solde est payable " + c.Solde + ".",
		fmt.Sprintf("Toute annulation intervenant moins de %d jours avant le début de la formation donne lieu à facturation de l'acompte.", c.DelaiAnnulationJours),
		"Une convention de formation sera établie à l'acceptation du devis.",
	}
	for _, it := range items {
		d.para(5, "• "+it)
		d.Ln(1)
	}
}

func (d *doc) signature() {
	d.heading("Bon pour accord")
	d.para(5, "Date, signature et cachet du client précédés de la mention « Bon pour accord » :")
	d.Ln(3)
	d.draw(d.th.muted)
	d.Rect(margin, d.GetY(), bodyWidth/2, 35, "D")
	d.Ln(38)
}

func modeLabel(m pricing.Mode) string {
	if m == pricing.Groupe {
		return "en groupe"
	}
	return "individuelle"
}

func participantsLabel(n int) string {
	if n <= 1 {
		return "1 participant"
	}
	return fmt.Sprintf("%d participants", n)
}
