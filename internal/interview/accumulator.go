// Package interview implements the conversation state machine that drives a
// candidate pre-screening session: accumulating profile fields across turns,
// collecting the tech stack, asking generated questions and persisting the
// finished record.
package interview

import (
	"github.com/talentscout/screener/internal/candidate"
	"github.com/talentscout/screener/internal/oracle"
)

// missingPriority fixes the order in which unfilled fields are prompted for.
var missingPriority = []string{
	candidate.FieldConsent,
	candidate.FieldName,
	candidate.FieldEmail,
	candidate.FieldPhone,
	candidate.FieldYears,
	candidate.FieldPosition,
	candidate.FieldLocation,
}

// Accumulator holds the partially-filled profile across turns. Fields are
// only ever filled by values that passed normalization; invalid or absent
// extractions never clear what is already set.
type Accumulator struct {
	maxYears int

	consent   bool
	name      string
	email     string
	phone     string
	years     *int
	positions []string
	location  string
	stack     candidate.TechStack
}

// NewAccumulator creates an empty accumulator with the given experience
// bound. A non-positive bound falls back to the default.
func NewAccumulator(maxYears int) *Accumulator {
	if maxYears <= 0 {
		maxYears = candidate.DefaultMaxYears
	}
	return &Accumulator{maxYears: maxYears}
}

// Merge normalizes every non-nil extracted field and fills the profile with
// the values that pass. Valid values overwrite earlier ones
// (last-valid-write-wins); rejected values are returned so the machine can
// shape its re-prompt. Out-of-vocabulary roles and malformed locations are
// dropped silently per their normalizer contracts.
func (a *Accumulator) Merge(fields *oracle.ProfileFields) []*candidate.FieldError {
	if fields == nil {
		return nil
	}

	var rejected []*candidate.FieldError

	if fields.Name != nil {
		if name, ferr := candidate.NormalizeName(*fields.Name); ferr != nil {
			rejected = append(rejected, ferr)
		} else {
			a.name = name
		}
	}

	if fields.Email != nil {
		if email, ferr := candidate.NormalizeEmail(*fields.Email); ferr != nil {
			rejected = append(rejected, ferr)
		} else {
			a.email = email
		}
	}

	if fields.Phone != nil {
		if phone, ferr := candidate.NormalizePhone(*fields.Phone); ferr != nil {
			rejected = append(rejected, ferr)
		} else {
			a.phone = phone
		}
	}

	if fields.YearsExperience != nil {
		if years, ferr := candidate.NormalizeYears(*fields.YearsExperience, a.maxYears); ferr != nil {
			rejected = append(rejected, ferr)
		} else {
			a.years = &years
		}
	}

	if fields.DesiredPosition != nil {
		if role, ok := candidate.NormalizeRole(*fields.DesiredPosition); ok {
			a.addPosition(role)
		}
	}

	if fields.CurrentLocation != nil {
		if _, _, display, ok := candidate.NormalizeLocation(*fields.CurrentLocation); ok {
			a.location = display
		}
	}

	return rejected
}

// Missing returns the unfilled required fields in prompt priority order.
// The tech stack is tracked by the conversation phase, not here.
func (a *Accumulator) Missing() []string {
	var missing []string
	for _, field := range missingPriority {
		if !a.has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Complete reports whether every required field is filled and valid.
func (a *Accumulator) Complete() bool {
	return len(a.Missing()) == 0
}

// GrantConsent marks the candidate's explicit data-processing consent.
// Consent is never revoked by a merge; only a session reset clears it.
func (a *Accumulator) GrantConsent() {
	a.consent = true
}

// SetTechStack stores the collected stack. Empty stacks are ignored.
func (a *Accumulator) SetTechStack(stack candidate.TechStack) {
	if stack.Empty() {
		return
	}
	a.stack = stack
}

// Email returns the accepted email address, empty until one passed
// validation.
func (a *Accumulator) Email() string {
	return a.email
}

// Years returns the accepted years of experience, zero until set.
func (a *Accumulator) Years() int {
	if a.years == nil {
		return 0
	}
	return *a.years
}

// TechStack returns the collected stack.
func (a *Accumulator) TechStack() candidate.TechStack {
	return a.stack
}

// Profile builds the finalized profile. Only meaningful once Complete.
func (a *Accumulator) Profile() candidate.Profile {
	return candidate.Profile{
		Consent:          a.consent,
		FullName:         a.name,
		Email:            a.email,
		Phone:            a.phone,
		YearsExperience:  a.Years(),
		DesiredPositions: a.positions,
		CurrentLocation:  a.location,
		Language:         candidate.DefaultLanguage,
		TechStack:        a.stack,
	}
}

func (a *Accumulator) has(field string) bool {
	switch field {
	case candidate.FieldConsent:
		return a.consent
	case candidate.FieldName:
		return a.name != ""
	case candidate.FieldEmail:
		return a.email != ""
	case candidate.FieldPhone:
		return a.phone != ""
	case candidate.FieldYears:
		return a.years != nil
	case candidate.FieldPosition:
		return len(a.positions) > 0
	case candidate.FieldLocation:
		return a.location != ""
	default:
		return false
	}
}

func (a *Accumulator) addPosition(role string) {
	for _, existing := range a.positions {
		if existing == role {
			return
		}
	}
	a.positions = append(a.positions, role)
}
