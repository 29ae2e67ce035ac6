// Package pdf renders quotes and program sheets with gofpdf.
//
// Core Helvetica is used with a cp1252 translator, which covers French
// accents, the euro sign and non-breaking spaces without shipping font files.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/diewo77/go-formations/validation"
	"github.com/jung-kurt/gofpdf"
)

// Template names a visual style. It never changes computed figures.
type Template string

const (
	Standard Template = "standard"
	Moderne  Template = "moderne"
)

// ParseTemplate maps a name to a Template. Empty selects def.
func ParseTemplate(name string, def Template) (Template, error) {
	switch Template(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return def, nil
	case Standard:
		return Standard, nil
	case Moderne:
		return Moderne, nil
	}
	return "", validation.Violations{"template": "invalid_template"}.Err()
}

// Issuer identifies the training organisation on every document.
type Issuer struct {
	Name    string
	Address string
	Siret   string
	NDA     string // numéro de déclaration d'activité
	Email   string
	Phone   string
	Website string
}

type rgb struct{ r, g, b int }

type theme struct {
	accent   rgb
	text     rgb
	muted    rgb
	band     bool // filled header band
	softFill rgb
	padding  float64
	rowH     float64
}

var themes = map[Template]theme{
	Standard: {accent: rgb{0, 0, 0}, text: rgb{0, 0, 0}, muted: rgb{90, 90, 90}, softFill: rgb{240, 240, 240}, padding: 2, rowH: 7},
	Moderne:  {accent: rgb{0, 94, 130}, text: rgb{33, 37, 41}, muted: rgb{108, 117, 125}, band: true, softFill: rgb{228, 241, 246}, padding: 3, rowH: 8},
}

type Renderer struct {
	issuer   Issuer
	def      Template
	compress bool
}

func NewRenderer(issuer Issuer, def Template) *Renderer {
	if _, ok := themes[def]; !ok {
		def = Standard
	}
	return &Renderer{issuer: issuer, def: def, compress: true}
}

func (r *Renderer) DefaultTemplate() Template { return r.def }

// doc bundles a gofpdf document with its theme and text translator.
type doc struct {
	*gofpdf.Fpdf
	th theme
	tr func(string) string
}

const (
	margin    = 15.0
	pageWidth = 210.0
	bodyWidth = pageWidth - 2*margin
)

func (r *Renderer) newDoc(tpl Template, title string) *doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(r.issuer.Name, true)
	pdf.SetCreator("go-formations", false)
	pdf.AliasNbPages("")
	d := &doc{Fpdf: pdf, th: themes[tpl], tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		d.color(d.th.muted)
		pdf.SetFont("Helvetica", "", 8)
		parts := []string{r.issuer.Name}
		if r.issuer.Siret != "" {
			parts = append(parts, "SIRET "+r.issuer.Siret)
		}
		if r.issuer.NDA != "" {
			parts = append(parts, "NDA "+r.issuer.NDA)
		}
		pdf.CellFormat(bodyWidth-20, 5, d.tr(strings.Join(parts, " • ")), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 5, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	return d
}

func (d *doc) color(c rgb) { d.SetTextColor(c.r, c.g, c.b) }
func (d *doc) fill(c rgb) { d.SetFillColor(c.r, c.g, c.b) }
func (d *doc) draw(c rgb) { d.SetDrawColor(c.r, c.g, c.b) }
func (d *doc) text(w, h float64, s, align string) {
	d.CellFormat(w, h, d.tr(s), "", 0, align, false, 0, "")
}

// line writes s across the body width and moves to the next line.
func (d *doc) line(h float64, s string) {
	d.CellFormat(0, h, d.tr(s), "", 1, "L", false, 0, "")
}

func (d *doc) para(h float64, s string) {
	d.MultiCell(0, h, d.tr(s), "", "L", false)
}

// heading draws a section title with an accent rule under it.
func (d *doc) heading(s string) {
	d.Ln(d.th.padding + 2)
	d.SetFont("Helvetica", "B", 12)
	d.color(d.th.accent)
	d.line(7, s)
	d.draw(d.th.accent)
	d.SetLineWidth(0.4)
	y := d.GetY()
	d.Line(margin, y, margin+bodyWidth, y)
	d.SetLineWidth(0.2)
	d.Ln(d.th.padding)
	d.SetFont("Helvetica", "", 10)
	d.color(d.th.text)
}

// header draws the issuer identity block and the document title.
func (d *doc) header(is Issuer, docTitle string) {
	top := margin
	if d.th.band {
		d.fill(d.th.accent)
		d.Rect(0, 0, pageWidth, 34, "F")
		d.SetTextColor(255, 255, 255)
	} else {
		d.color(d.th.text)
	}
	d.SetXY(margin, top-5)
	d.SetFont("Helvetica", "B", 15)
	d.text(bodyWidth/2, 8, is.Name, "L")
	d.SetFont("Helvetica", "B", 18)
	d.text(bodyWidth/2, 8, docTitle, "R")
	d.Ln(8)
	d.SetFont("Helvetica", "", 8.5)
	if is.Address != "" {
		d.line(4, is.Address)
	}
	var ids []string
	if is.Siret != "" {
		ids = append(ids, "SIRET : "+is.Siret)
	}
	if is.NDA != "" {
		ids = append(ids, "Déclaration d'activité n° "+is.NDA)
	}
	if len(ids) > 0 {
		d.line(4, strings.Join(ids, "  •  "))
	}
	var contact []string
	for _, s := range []string{is.Email, is.Phone, is.Website} {
		if s != "" {
			contact = append(contact, s)
		}
	}
	if len(contact) > 0 {
		d.line(4, strings.Join(contact, "  •  "))
	}
	if d.th.band {
		d.SetY(38)
	} else {
		d.Ln(2)
		d.draw(d.th.accent)
		y := d.GetY()
		d.Line(margin, y, margin+bodyWidth, y)
		d.Ln(4)
	}
	d.color(d.th.text)
}

func (d *doc) bytes() ([]byte, error) {
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
