package pdf

import (
	"fmt"
	"strings"

	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/validation"
)

// RenderProgram prints the program sheet of f. It carries no pricing.
func (r *Renderer) RenderProgram(f models.Formation, template string) ([]byte, error) {
	if strings.TrimSpace(f.Slug) == "" {
		return nil, validation.Violations{"formationSlug": "formation_required"}.Err()
	}
	tpl, err := ParseTemplate(template, r.def)
	if err != nil {
		return nil, err
	}
	d := r.newDoc(tpl, "Programme "+f.Titre)
	d.AddPage()
	d.header(r.issuer, "PROGRAMME")

	d.SetFont("Helvetica", "B", 14)
	d.color(d.th.accent)
	d.para(7, f.Titre)
	d.color(d.th.text)
	d.SetFont("Helvetica", "", 9.5)
	var tags []string
	if f.Code != "" {
		tags = append(tags, "Code : "+f.Code)
	}
	if f.Certifiante {
		c := "Certifiante"
		if f.Certificateur != "" {
			c += " : " + f.Certificateur
		}
		tags = append(tags, c)
	}
	if len(tags) > 0 {
		d.line(5, strings.Join(tags, "  •  "))
	}
	if f.Resume != "" {
		d.Ln(2)
		d.para(5, f.Resume)
	}

	d.heading("Objectifs")
	if len(f.Objectifs) == 0 {
		d.para(5, "Non renseigné.")
	}
	for i, o := range f.Objectifs {
		d.para(5, fmt.Sprintf("%d. %s", i+1, o))
	}

	d.section("Prérequis", f.Prerequis)

	d.heading("Durée et modalités")
	duree := f.DureeTexte
	if duree == "" && f.DureeHeures > 0 {
		duree = fmt.Sprintf("%d heures", f.DureeHeures)
	}
	d.field("Durée", duree)
	d.field("Modalités", f.Modalites)
	d.field("Délai d'accès", f.DelaiAcces)

	d.section("Méthodes pédagogiques", f.MethodesPedagogiques)
	d.section("Modalités d'évaluation", f.Evaluation)
	d.section("Accessibilité", f.Accessibilite)
	return d.bytes()
}

func (d *doc) section(title, body string) {
	d.heading(title)
	if strings.TrimSpace(body) == "" {
		body = "Non renseigné."
	}
	d.para(5, body)
}

// field writes "Label : value" with a bold label.
func (d *doc) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = "Non renseigné."
	}
	d.SetFont("Helvetica", "B", 10)
	lw := d.GetStringWidth(d.tr(label+" : ")) + 1
	d.CellFormat(lw, 5, d.tr(label+" : "), "", 0, "L", false, 0, "")
	d.SetFont("Helvetica", "", 10)
	d.MultiCell(0, 5, d.tr(value), "", "L", false)
}
