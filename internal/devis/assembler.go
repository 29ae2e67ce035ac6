package devis

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/diewo77/go-formations/internal/apperr"
	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/internal/pricing"
	"github.com/diewo77/go-formations/internal/store"
	"github.com/diewo77/go-formations/validation"
)

// DueDays is the default delay between issue and due date.
const DueDays = 30

var ErrFormationNotFound = apperr.NotFound("FORMATION_NOT_FOUND")

var referencePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Request is the body of a quote submission. Numeric fields are pointers so a
// missing value can be told apart from zero.
type Request struct {
	Client            Client   `json:"client"`
	FormationSlug     string   `json:"formationSlug" validate:"required,max=120"`
	Mode              string   `json:"mode"`
	Participants      *float64 `json:"participants"`
	Heures            *float64 `json:"heures"`
	TVA               *float64 `json:"tva"`
	CoutCertification *float64 `json:"coutCertification"`
	Lieu              string   `json:"lieu,omitempty" validate:"omitempty,max=255"`
	Periode           string   `json:"periode,omitempty" validate:"omitempty,max=255"`
	Reference         string   `json:"reference,omitempty"`
	DateEmission      string   `json:"dateEmission,omitempty"`
	DateEcheance      string   `json:"dateEcheance,omitempty"`
}

// Lookup resolves a catalog entry; a missing slug must wrap store.ErrNotFound.
type Lookup interface {
	Get(ctx context.Context, slug string) (models.Formation, error)
}

type Assembler struct {
	catalog Lookup
	grid    pricing.Rates
	now     func() time.Time
	intn    func(n int) int
}

// NewAssembler builds quotes against catalog. grid supplies the hourly rate of
// any mode a program leaves unset.
func NewAssembler(catalog Lookup, grid pricing.Rates) *Assembler {
	return &Assembler{catalog: catalog, grid: grid, now: time.Now, intn: rand.Intn}
}

func (a *Assembler) Today() Date { return NewDate(a.now()) }

func (a *Assembler) Grid() pricing.Rates { return a.grid }

// NewReference returns DEV-YYYYMMDD-XXXX with four random base-36 characters.
func (a *Assembler) NewReference(d Date) string {
	var b strings.Builder
	b.WriteString("DEV-")
	b.WriteString(d.Compact())
	b.WriteByte('-')
	for i := 0; i < 4; i++ {
		b.WriteByte(base36[a.intn(len(base36))])
	}
	return b.String()
}

type parsed struct {
	in        pricing.Input
	issue     Date
	due       Date
	reference string
}

// parse validates everything that does not need the catalog.
func (a *Assembler) parse(req Request) (parsed, error) {
	v := validation.Struct(req)
	var p parsed

	mode, modeOK := pricing.ParseMode(req.Mode)
	participants := 0.0
	switch {
	case req.Participants != nil:
		participants = *req.Participants
	case modeOK && mode == pricing.Individuel:
		participants = 1
	default:
		v["participants"] = "required"
	}
	hours := 0.0
	if req.Heures != nil {
		hours = *req.Heures
	} else {
		v["heures"] = "required"
	}
	tva := pricing.DefaultTaxRate
	if req.TVA != nil {
		tva = *req.TVA
	}
	fee := 0.0
	if req.CoutCertification != nil {
		fee = *req.CoutCertification
	}
	in, err := pricing.NewInput(req.Mode, participants, hours, tva, fee)
	if pv, ok := validation.AsError(err); ok {
		for field, code := range pv {
			if _, seen := v[field]; !seen {
				v[field] = code
			}
		}
	}
	p.in = in

	p.issue = a.Today()
	if s := strings.TrimSpace(req.DateEmission); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			v["dateEmission"] = "invalid_format"
		} else {
			p.issue = d
		}
	}
	p.due = p.issue.AddDays(DueDays)
	if s := strings.TrimSpace(req.DateEcheance); s != "" {
		d, err := ParseDate(s)
		switch {
		case err != nil:
			v["dateEcheance"] = "invalid_format"
		case d.Before(p.issue.Time):
			v["dateEcheance"] = "out_of_range"
		default:
			p.due = d
		}
	}

	p.reference = strings.ToUpper(strings.TrimSpace(req.Reference))
	if p.reference != "" && !referencePattern.MatchString(p.reference) {
		v["reference"] = "invalid_format"
	}
	if err := v.Err(); err != nil {
		return parsed{}, err
	}
	return p, nil
}

// Build validates req, resolves its program and prices it. Nothing is stored.
func (a *Assembler) Build(ctx context.Context, req Request) (Quote, error) {
	p, err := a.parse(req)
	if err != nil {
		return Quote{}, err
	}
	f, err := a.catalog.Get(ctx, strings.TrimSpace(req.FormationSlug))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Quote{}, apperr.Wrap(ErrFormationNotFound, err)
		}
		return Quote{}, apperr.Processing(err)
	}
	res, err := pricing.Compute(p.in, f.Rates(a.grid))
	if err != nil {
		return Quote{}, err
	}
	ref := p.reference
	if ref == "" {
		ref = a.NewReference(p.issue)
	}
	return Quote{
		Reference:    ref,
		DateEmission: p.issue,
		DateEcheance: p.due,
		Client:       trimClient(req.Client),
		Formation: FormationSummary{
			Slug:          f.Slug,
			Titre:         f.Titre,
			Code:          f.Code,
			Certifiante:   f.Certifiante,
			Certificateur: f.Certificateur,
			DureeTexte:    f.DureeTexte,
		},
		Prestation: Prestation{
			Mode:         res.Mode,
			Participants: res.Participants,
			Heures:       res.Hours,
			Lieu:         strings.TrimSpace(req.Lieu),
			Periode:      strings.TrimSpace(req.Periode),
			TauxHoraire:  res.HourlyRate,
		},
		Financier:  financierFrom(res),
		Conditions: DefaultConditions(),
	}, nil
}

func trimClient(c Client) Client {
	return Client{
		Nom:        strings.TrimSpace(c.Nom),
		Email:      strings.TrimSpace(c.Email),
		Telephone:  strings.TrimSpace(c.Telephone),
		Adresse:    strings.TrimSpace(c.Adresse),
		Entreprise: strings.TrimSpace(c.Entreprise),
		Siret:      strings.TrimSpace(c.Siret),
	}
}

// Template holds the default values of a blank quote form.
type Template struct {
	Reference         string       `json:"reference"`
	DateEmission      Date         `json:"dateEmission"`
	DateEcheance      Date         `json:"dateEcheance"`
	Mode              pricing.Mode `json:"mode"`
	Participants      int          `json:"participants"`
	Heures            int          `json:"heures"`
	TVA               float64      `json:"tva"`
	CoutCertification float64      `json:"coutCertification"`
	Conditions        Conditions   `json:"conditions"`
}

func (a *Assembler) Template() Template {
	today := a.Today()
	return Template{
		Reference:    a.NewReference(today),
		DateEmission: today,
		DateEcheance: today.AddDays(DueDays),
		Mode:         pricing.Individuel,
		Participants: 1,
		Heures:       7,
		TVA:          pricing.DefaultTaxRate,
		Conditions:   DefaultConditions(),
	}
}
