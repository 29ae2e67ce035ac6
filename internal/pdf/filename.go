package pdf

import (
	"strings"
	"unicode"

	"github.com/diewo77/go-formations/internal/devis"
)

const (
	maxSlugLen   = 40
	maxClientLen = 60
)

// Filename builds {reference}_{YYYYMMDD}_{slug}_{client}.pdf for q.
func Filename(q devis.Quote) string {
	return strings.Join([]string{
		q.Reference,
		q.DateEmission.Compact(),
		cut(q.Formation.Slug, maxSlugLen),
		SanitizeName(q.Client.Nom),
	}, "_") + ".pdf"
}

// ProgramFilename is the download name of a program sheet.
func ProgramFilename(slug string) string {
	return "programme_" + cut(slug, maxSlugLen) + ".pdf"
}

// SanitizeName keeps letters, digits, spaces, hyphens and underscores, then
// truncates to 60 characters.
func SanitizeName(s string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
	return cut(strings.TrimSpace(kept), maxClientLen)
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
