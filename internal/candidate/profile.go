// Package candidate holds the candidate profile data model, the controlled
// vocabularies, and the pure normalization functions that turn free-text
// fragments into canonical values.
package candidate

import "strings"

// Field names used in rejections, missing-field reporting and prompts.
const (
	FieldConsent   = "consent"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldYears     = "years_experience"
	FieldPosition  = "desired_position"
	FieldLocation  = "current_location"
	FieldTechStack = "tech_stack"
)

// Tech stack categories.
const (
	CategoryLanguage  = "language"
	CategoryFramework = "framework"
	CategoryDatabase  = "database"
	CategoryTool      = "tool"
)

// DefaultLanguage is the language tag stored on every profile until a
// language detector exists.
const DefaultLanguage = "en"

// DefaultMaxYears bounds years of experience when no limit is configured.
const DefaultMaxYears = 40

// Profile is a fully validated candidate record. All string fields hold
// canonical values produced by the normalizers.
type Profile struct {
	Consent          bool
	FullName         string
	Email            string
	Phone            string
	YearsExperience  int
	DesiredPositions []string
	CurrentLocation  string
	Language         string
	TechStack        TechStack
}

// TechStack groups declared technologies into four ordered, duplicate-free
// lists. The flat union across categories is what the minimal interview flow
// operates on.
type TechStack struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Databases  []string `json:"databases"`
	Tools      []string `json:"tools"`
}

// Add appends name to the list for category, preserving insertion order and
// skipping names already present anywhere in the stack (case-insensitive).
func (t *TechStack) Add(category, name string) {
	name = strings.TrimSpace(name)
	if name == "" || t.contains(name) {
		return
	}

	switch category {
	case CategoryLanguage:
		t.Languages = append(t.Languages, name)
	case CategoryFramework:
		t.Frameworks = append(t.Frameworks, name)
	case CategoryDatabase:
		t.Databases = append(t.Databases, name)
	default:
		t.Tools = append(t.Tools, name)
	}
}

// All returns the flat union of all categories in insertion order,
// languages first.
func (t *TechStack) All() []string {
	all := make([]string, 0, len(t.Languages)+len(t.Frameworks)+len(t.Databases)+len(t.Tools))
	all = append(all, t.Languages...)
	all = append(all, t.Frameworks...)
	all = append(all, t.Databases...)
	all = append(all, t.Tools...)
	return all
}

// Empty reports whether no technology has been declared in any category.
func (t *TechStack) Empty() bool {
	return len(t.Languages) == 0 && len(t.Frameworks) == 0 && len(t.Databases) == 0 && len(t.Tools) == 0
}

func (t *TechStack) contains(name string) bool {
	for _, existing := range t.All() {
		if strings.EqualFold(existing, name) {
			return true
		}
	}
	return false
}
