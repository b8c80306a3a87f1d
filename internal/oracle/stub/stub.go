// Package stub provides a deterministic, dependency-free extraction oracle.
// It is the hard fallback for environments without a live LLM backend and
// the safety net the live oracle degrades to on malformed output.
package stub

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/talentscout/screener/internal/candidate"
	"github.com/talentscout/screener/internal/oracle"
)

// Extractor classifies text fragments with containment heuristics. It is
// stateless and safe for concurrent use.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+[0-9][0-9 ().-]{6,18}[0-9]`)
	yearsPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)

	namePrefix     = regexp.MustCompile(`(?i)^(?:my name is|i am|i'm|this is|name is|name:)\s+`)
	locationPrefix = regexp.MustCompile(`(?i)^(?:i(?:\s+am|'m)\s+)?(?:currently\s+)?(?:liv(?:e|ing)\s+in|located\s+in|based\s+in|in|from)\s+`)
	rolePrefix     = regexp.MustCompile(`(?i)^(?:applying for|looking for|i want to be|as an?|position of|role:)\s+`)
	roleSuffix     = regexp.MustCompile(`(?i)\s+(?:position|role)$`)

	techToken = regexp.MustCompile(`[a-z0-9+#.]+`)
)

// ExtractProfile splits the message into comma/newline fragments and
// classifies each one. Unrecognized fragments are ignored, never guessed.
func (e *Extractor) ExtractProfile(ctx context.Context, text string) (*oracle.ProfileFields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := &oracle.ProfileFields{}

	if email := emailPattern.FindString(text); email != "" {
		fields.Email = &email
	}
	if phone := phonePattern.FindString(text); phone != "" {
		fields.Phone = &phone
	}
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			fields.YearsExperience = &years
		}
	}

	fragments := splitFragments(text)
	consumed := make([]bool, len(fragments))

	// Locations span two fragments because the comma split breaks
	// "City, Country" apart. Try adjacent pairs first.
	for i := 0; i < len(fragments)-1; i++ {
		if consumed[i] || consumed[i+1] {
			continue
		}
		country, ok := leadingCountry(fragments[i+1])
		if !ok {
			continue
		}
		joined := locationPrefix.ReplaceAllString(fragments[i], "") + ", " + country
		if _, _, _, ok := candidate.NormalizeLocation(joined); ok {
			fields.CurrentLocation = &joined
			consumed[i], consumed[i+1] = true, true
			break
		}
	}

	for i, fragment := range fragments {
		if consumed[i] {
			continue
		}
		cleaned := roleSuffix.ReplaceAllString(rolePrefix.ReplaceAllString(fragment, ""), "")
		if _, ok := candidate.NormalizeRole(cleaned); ok {
			fields.DesiredPosition = &cleaned
			consumed[i] = true
			break
		}
	}

	for i, fragment := range fragments {
		if consumed[i] {
			continue
		}
		if name, ok := guessName(fragment); ok {
			fields.Name = &name
			break
		}
	}

	return fields, nil
}

// ExtractTechStack matches whole tokens against the technology catalog,
// preserving first-appearance order. An empty result means nothing matched;
// no default is fabricated.
func (e *Extractor) ExtractTechStack(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []string
	seen := make(map[string]bool)

	for _, token := range techToken.FindAllString(strings.ToLower(text), -1) {
		token = strings.TrimRight(token, ".")
		display, _, ok := candidate.LookupTechnology(token)
		if !ok || seen[display] {
			continue
		}
		seen[display] = true
		found = append(found, display)
	}

	return found, nil
}

// GenerateQuestions returns the deterministic template questions.
func (e *Extractor) GenerateQuestions(ctx context.Context, techStack []string, years int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Questions(techStack, years), nil
}

// Questions builds five screening questions biased toward the primary
// declared technology, with depth scaled by years of experience. It is
// exported so the interview layer can reuse it as its own last-resort
// fallback.
func Questions(techStack []string, years int) []string {
	primary := "your primary technology"
	if len(techStack) > 0 && strings.TrimSpace(techStack[0]) != "" {
		primary = strings.TrimSpace(techStack[0])
	}

	switch {
	case years < 2:
		return []string{
			fmt.Sprintf("What drew you to %s, and what have you built with it so far?", primary),
			fmt.Sprintf("Walk me through a small project you completed using %s.", primary),
			fmt.Sprintf("Which parts of %s do you feel most comfortable with today?", primary),
			"How do you usually debug a problem you have never seen before?",
			"How do you go about learning a new technology?",
		}
	case years <= 5:
		return []string{
			fmt.Sprintf("What is your experience with %s?", primary),
			fmt.Sprintf("Describe a challenging project you worked on using %s.", primary),
			fmt.Sprintf("What common pitfalls have you learned to avoid in %s?", primary),
			"How do you approach testing in your day-to-day work?",
			"How do you stay updated with new technologies in your field?",
		}
	default:
		return []string{
			fmt.Sprintf("What architectural decisions have you driven in systems built with %s?", primary),
			fmt.Sprintf("How do you evaluate when %s is the wrong tool for a problem?", primary),
			fmt.Sprintf("Describe a production incident involving %s and how you resolved it.", primary),
			"How do you mentor engineers who are newer to your stack?",
			"How do you balance technical debt against feature delivery?",
		}
	}
}

func splitFragments(text string) []string {
	rough := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	fragments := make([]string, 0, len(rough))
	for _, f := range rough {
		if f = strings.TrimSpace(f); f != "" {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

// leadingCountry matches the longest known country name at the start of the
// fragment, so trailing chatter after the country does not break detection.
func leadingCountry(fragment string) (string, bool) {
	words := strings.Fields(fragment)
	limit := 3
	if len(words) < limit {
		limit = len(words)
	}

	for n := limit; n >= 1; n-- {
		name := strings.TrimRight(strings.Join(words[:n], " "), ".!?")
		if _, ok := candidate.LookupCountry(name); ok {
			return name, true
		}
	}
	return "", false
}

// guessName accepts a fragment as a name either when it carries an explicit
// introduction prefix, or when it looks like a short capitalized full name.
func guessName(fragment string) (string, bool) {
	stripped := namePrefix.ReplaceAllString(fragment, "")
	hadPrefix := stripped != fragment

	name, err := candidate.NormalizeName(stripped)
	if err != nil {
		return "", false
	}

	tokens := strings.Fields(stripped)
	if len(tokens) > 4 {
		return "", false
	}

	if !hadPrefix {
		for _, token := range tokens {
			if !unicode.IsUpper(rune(token[0])) {
				return "", false
			}
		}
	}

	return name, true
}
