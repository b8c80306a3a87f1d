package candidate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldError is a validation rejection for a single field. It is a value,
// not a propagating failure: the state machine consumes the reason to
// re-prompt for that specific field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	validate    = validator.New()
	namePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
)

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// NormalizeRole maps free text onto the role controlled vocabulary. Matching
// is exact after trimming and lowercasing. Unmatched input returns false and
// must be dropped by the caller, never treated as an error.
func NormalizeRole(text string) (string, bool) {
	role, ok := roleMap[strings.ToLower(strings.TrimSpace(text))]
	return role, ok
}

// NormalizeLocation canonicalizes a "City, Country" string. The country
// segment must match the country table exactly (case-insensitive); the city
// is title-cased. When the pair has a catalog entry its canonical display
// string is returned, otherwise "City, Country" is synthesized. Invalid
// input returns empty strings and false.
func NormalizeLocation(raw string) (city, country, display string, ok bool) {
	segments := strings.Split(raw, ",")
	if len(segments) != 2 {
		return "", "", "", false
	}

	country, ok = LookupCountry(segments[1])
	if !ok {
		return "", "", "", false
	}

	city = titleCase(strings.TrimSpace(segments[0]))
	if city == "" {
		return "", "", "", false
	}

	if canonical, found := cityCatalog[cityKey{strings.ToLower(city), country}]; found {
		return city, country, canonical, true
	}

	return city, country, fmt.Sprintf("%s, %s", city, country), true
}

// NormalizePhone parses raw as an international phone number with no default
// region and returns its E.164 representation. The number must be both
// possible and valid per the numbering plan.
func NormalizePhone(raw string) (string, *FieldError) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), "")
	if err != nil {
		return "", &FieldError{
			Field:  FieldPhone,
			Reason: "the phone number must be in international format, like +14155552671",
		}
	}

	if !phonenumbers.IsPossibleNumber(num) || !phonenumbers.IsValidNumber(num) {
		return "", &FieldError{
			Field:  FieldPhone,
			Reason: "that does not look like a real phone number for its country code",
		}
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeName validates and title-cases a full legal name. At least two
// whitespace-separated tokens are required, and only letters, spaces,
// hyphens, apostrophes and periods are allowed.
func NormalizeName(raw string) (string, *FieldError) {
	trimmed := strings.TrimSpace(raw)
	if len(strings.Fields(trimmed)) < 2 {
		return "", &FieldError{
			Field:  FieldName,
			Reason: "please provide both your first and last name",
		}
	}

	if !namePattern.MatchString(trimmed) {
		return "", &FieldError{
			Field:  FieldName,
			Reason: "a name can only contain letters, spaces, hyphens, apostrophes and periods",
		}
	}

	return titleCase(trimmed), nil
}

// NormalizeEmail validates email syntax and lowercases the address.
func NormalizeEmail(raw string) (string, *FieldError) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", &FieldError{
			Field:  FieldEmail,
			Reason: "that does not look like a valid email address",
		}
	}

	return email, nil
}

// NormalizeYears bounds years of experience to [0, max]. A non-positive max
// falls back to DefaultMaxYears.
func NormalizeYears(years, max int) (int, *FieldError) {
	if max <= 0 {
		max = DefaultMaxYears
	}

	if years < 0 || years > max {
		return 0, &FieldError{
			Field:  FieldYears,
			Reason: fmt.Sprintf("years of experience must be between 0 and %d", max),
		}
	}

	return years, nil
}
