package i18n

import (
	"context"
	"strings"
)

type ctxKey struct{}

var messages = map[string]map[string]string{
	"fr": {
		"required":            "Requis",
		"invalid_email":       "Adresse e-mail invalide",
		"out_of_range":        "Valeur hors limites",
		"must_be_integer":     "Doit être un nombre entier",
		"must_be_positive":    "Doit être positif",
		"invalid_choice":      "Valeur non autorisée",
		"invalid_mode":        "Mode inconnu (individuel ou groupe)",
		"invalid_format":      "Format invalide",
		"invalid_template":    "Modèle de document inconnu",
		"formation_required":  "Veuillez sélectionner une formation",
		"invalid":             "Invalide",
		"VALIDATION_ERROR":    "Les données envoyées sont invalides",
		"MISSING_PARAMETERS":  "Paramètres requis manquants : mode, participants, heures",
		"FORMATION_NOT_FOUND": "Formation introuvable",
		"DEVIS_NOT_FOUND":     "Devis introuvable",
		"DEVIS_EXISTS":        "Un devis porte déjà cette référence",
		"FORMATION_EXISTS":    "Une formation porte déjà cet identifiant",
		"INVALID_JSON":        "Corps de requête JSON invalide",
		"UNAUTHORIZED":        "Authentification requise",
		"INVALID_CREDENTIALS": "Identifiants incorrects",
		"RATE_LIMITED":        "Trop de requêtes, réessayez plus tard",
		"FILE_TOO_LARGE":      "Fichier trop volumineux",
		"UNSUPPORTED_FILE":    "Type de fichier non autorisé",
		"NOT_FOUND":           "Ressource introuvable",
		"DB_UNAVAILABLE":      "Base de données indisponible",
		"METHOD_NOT_ALLOWED":  "Méthode non autorisée",
		"INTERNAL_ERROR":      "Une erreur est survenue, veuillez réessayer",
		"devis_created":       "Devis créé",
		"contact_received":    "Message reçu, nous vous répondrons rapidement",
		"formation_created":   "Formation créée",
		"formation_updated":   "Formation mise à jour",
		"formation_deleted":   "Formation supprimée",
		"file_uploaded":       "Fichier envoyé",
	},
	"en": {
		"required":            "Required",
		"invalid_email":       "Invalid email address",
		"out_of_range":        "Value out of range",
		"must_be_integer":     "Must be a whole number",
		"must_be_positive":    "Must be positive",
		"invalid_choice":      "Value not allowed",
		"invalid_mode":        "Unknown mode (individuel or groupe)",
		"invalid_format":      "Invalid format",
		"invalid_template":    "Unknown document template",
		"formation_required":  "Please select a training program",
		"invalid":             "Invalid",
		"VALIDATION_ERROR":    "The submitted data is invalid",
		"MISSING_PARAMETERS":  "Missing required parameters: mode, participants, heures",
		"FORMATION_NOT_FOUND": "Training program not found",
		"DEVIS_NOT_FOUND":     "Quote not found",
		"DEVIS_EXISTS":        "A quote with this reference already exists",
		"FORMATION_EXISTS":    "A training program with this slug already exists",
		"INVALID_JSON":        "Invalid JSON request body",
		"UNAUTHORIZED":        "Authentication required",
		"INVALID_CREDENTIALS": "Invalid credentials",
		"RATE_LIMITED":        "Too many requests, try again later",
		"FILE_TOO_LARGE":      "File too large",
		"UNSUPPORTED_FILE":    "File type not allowed",
		"NOT_FOUND":           "Resource not found",
		"DB_UNAVAILABLE":      "Database unavailable",
		"METHOD_NOT_ALLOWED":  "Method not allowed",
		"INTERNAL_ERROR":      "Something went wrong, please try again",
		"devis_created":       "Quote created",
		"contact_received":    "Message received, we will get back to you shortly",
		"formation_created":   "Training program created",
		"formation_updated":   "Training program updated",
		"formation_deleted":   "Training program deleted",
		"file_uploaded":       "File uploaded",
	},
}

// DetectLanguage picks "en" when the Accept-Language header starts with English, "fr" otherwise.
func DetectLanguage(acceptLanguage string) string {
	al := strings.ToLower(strings.TrimSpace(acceptLanguage))
	if strings.HasPrefix(al, "en") {
		return "en"
	}
	return "fr"
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates code for lang, falling back to French then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages["fr"][code]; ok {
		return s
	}
	return code
}

// Localize returns a copy of v with every code translated.
func Localize(lang string, v map[string]string) map[string]string {
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = T(lang, code)
	}
	return out
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx or "fr".
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return "fr"
}
