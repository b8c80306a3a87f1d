// Package oracle defines the extraction oracle consumed by the interview:
// a best-effort text-understanding service whose output is always treated
// as untrusted input to the normalizers.
package oracle

import "context"

// ProfileFields is the loosely-shaped result of a profile extraction. Every
// field is nullable; a nil pointer means the oracle saw nothing for that
// field. Values are raw guesses and must be normalized before use.
type ProfileFields struct {
	Name            *string
	Email           *string
	Phone           *string
	YearsExperience *int
	DesiredPosition *string
	CurrentLocation *string
}

// Empty reports whether the extraction produced no fields at all.
func (f *ProfileFields) Empty() bool {
	if f == nil {
		return true
	}
	return f.Name == nil && f.Email == nil && f.Phone == nil &&
		f.YearsExperience == nil && f.DesiredPosition == nil && f.CurrentLocation == nil
}

// Extractor is the oracle contract. Implementations must be resilient:
// a live backend failure is replaced by a deterministic fallback, so in
// practice errors reach the caller only on context cancellation.
type Extractor interface {
	// ExtractProfile pulls candidate fields out of one chat message.
	ExtractProfile(ctx context.Context, text string) (*ProfileFields, error)
	// ExtractTechStack lists technology names mentioned in the message.
	// The result may be empty; callers must re-prompt rather than advance.
	ExtractTechStack(ctx context.Context, text string) ([]string, error)
	// GenerateQuestions produces screening questions for the declared
	// stack, scaled by years of experience.
	GenerateQuestions(ctx context.Context, techStack []string, years int) ([]string, error)
}
