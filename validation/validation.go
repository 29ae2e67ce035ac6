package validation

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the violated field names in stable order.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Error carries field-level violations. Callers map it to a 400 VALIDATION_ERROR.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, f := range e.Violations.Fields() {
		parts = append(parts, f+": "+e.Violations[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns nil when v is empty, otherwise a *Error wrapping it.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Violations: v}
}

// AsError extracts violations from err, if any.
func AsError(err error) (Violations, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// RangeInt checks an integral value read from JSON as float64.
func RangeInt(field string, val float64, minVal, maxVal int, v Violations) {
	if val != math.Trunc(val) {
		v[field] = "must_be_integer"
		return
	}
	RangeFloat(field, val, float64(minVal), float64(maxVal), v)
}

var (
	once     sync.Once
	validate *validator.Validate
)

// slugPattern matches URL-safe identifiers such as "excel-avance".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slug reports whether s is usable as a path segment and file name part.
func Slug(s string) bool { return slugPattern.MatchString(s) }

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names so clients can match violations to their payload
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return Slug(fl.Field().String())
		})
	})
	return validate
}

// Struct validates s against its `validate` tags and returns violations keyed by json field name.
func Struct(s any) Violations {
	v := Violations{}
	err := engine().Struct(s)
	if err == nil {
		return v
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range fieldErrs {
		// drop the root struct name: "Request.client.email" -> "client.email"
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if _, seen := v[field]; seen {
			continue
		}
		v[field] = codeFor(fe.Tag())
	}
	return v
}

func codeFor(tag string) string {
	switch tag {
	case "required", "required_if", "required_with":
		return "required"
	case "email":
		return "invalid_email"
	case "min", "max", "gte", "lte", "gt", "lt":
		return "out_of_range"
	case "oneof":
		return "invalid_choice"
	case "url", "http_url":
		return "invalid_url"
	case "alphanumunicode", "slug":
		return "invalid_format"
	default:
		return "invalid"
	}
}
