package catalog

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/diewo77/go-formations/internal/models"
	"github.com/diewo77/go-formations/validation"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter narrows a catalog listing. Zero values match everything.
type Filter struct {
	Query       string
	Certifiante *bool
	Etat        string
}

// ParseFilter reads q, certifiante and etat from query parameters.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(q.Get("q")), Etat: strings.TrimSpace(q.Get("etat"))}
	if raw := strings.TrimSpace(q.Get("certifiante")); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "1", "oui", "yes":
			b := true
			f.Certifiante = &b
		case "false", "0", "non", "no":
			b := false
			f.Certifiante = &b
		default:
			return Filter{}, validation.Violations{"certifiante": "invalid_choice"}.Err()
		}
	}
	return f, nil
}

func (f Filter) Match(fm models.Formation) bool {
	if f.Certifiante != nil && fm.Certifiante != *f.Certifiante {
		return false
	}
	if f.Etat != "" && !strings.EqualFold(fm.Etat, f.Etat) {
		return false
	}
	if f.Query == "" {
		return true
	}
	hay := fold(strings.Join(append([]string{fm.Titre, fm.Code, fm.Slug, fm.Categorie, fm.Certificateur, fm.Resume}, fm.Objectifs...), " "))
	for _, term := range strings.Fields(fold(f.Query)) {
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

// fold lowercases s and strips diacritics so "securite" finds "Sécurité".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
