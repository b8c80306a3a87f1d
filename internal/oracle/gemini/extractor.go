package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/oracle"
	"go.uber.org/zap"
)

//go:embed prompt_profile.md
var profilePrompt string

//go:embed prompt_tech.md
var techPrompt string

//go:embed prompt_questions.md
var questionsPrompt string

const (
	extractionTemperature = 0.1
	questionsTemperature  = 0.7

	defaultMaxLogLength = 200
	defaultBackoff      = 2 * time.Second
)

// contentGenerator abstracts the GenAI client for testing.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, temperature float32) (string, error)
	Model() string
}

// Extractor is the live oracle. Every operation that fails or returns
// malformed output falls back to the deterministic extractor, so callers
// never observe a backend failure.
type Extractor struct {
	generator  contentGenerator
	fallback   oracle.Extractor
	logger     *zap.Logger
	maxRetries int
	maxLogLen  int
	backoff    time.Duration
}

// NewExtractor builds an Extractor over the generator. fallback must not be
// nil; it is consulted whenever the backend cannot produce usable output.
func NewExtractor(generator contentGenerator, fallback oracle.Extractor, maxRetries, maxLogLength int, log *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{
		generator:  generator,
		fallback:   fallback,
		logger:     log,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		backoff:    defaultBackoff,
	}
}

func (e *Extractor) ExtractProfile(ctx context.Context, text string) (*oracle.ProfileFields, error) {
	prompt := strings.ReplaceAll(profilePrompt, "{{MESSAGE}}", text)

	raw, err := e.generate(ctx, prompt, extractionTemperature)
	if err != nil {
		return e.fallbackProfile(ctx, text, err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return e.fallbackProfile(ctx, text, fmt.Errorf("parse profile response: %w", err))
	}

	fields := &oracle.ProfileFields{
		Name:            coerceString(data["name"]),
		Email:           coerceString(data["email"]),
		Phone:           coerceString(data["phone"]),
		YearsExperience: coerceInt(data["years_experience"]),
		DesiredPosition: coerceString(data["desired_position"]),
		CurrentLocation: coerceString(data["current_location"]),
	}

	return fields, nil
}

func (e *Extractor) ExtractTechStack(ctx context.Context, text string) ([]string, error) {
	prompt := strings.ReplaceAll(techPrompt, "{{MESSAGE}}", text)

	raw, err := e.generate(ctx, prompt, extractionTemperature)
	if err != nil {
		return e.fallbackTechStack(ctx, text, err)
	}

	techs, err := parseStringArray(raw)
	if err != nil {
		return e.fallbackTechStack(ctx, text, err)
	}

	return techs, nil
}

func (e *Extractor) GenerateQuestions(ctx context.Context, techStack []string, years int) ([]string, error) {
	prompt := strings.ReplaceAll(questionsPrompt, "{{TECH_STACK}}", strings.Join(techStack, ", "))
	prompt = strings.ReplaceAll(prompt, "{{YEARS}}", strconv.Itoa(years))

	raw, err := e.generate(ctx, prompt, questionsTemperature)
	if err != nil {
		return e.fallbackQuestions(ctx, techStack, years, err)
	}

	questions, err := parseStringArray(raw)
	if err != nil {
		return e.fallbackQuestions(ctx, techStack, years, err)
	}

	return questions, nil
}

// generate calls the backend with bounded retries and context-aware backoff.
func (e *Extractor) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	e.logger.Debug("oracle request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitFor(ctx, time.Duration(attempt)*e.backoff); err != nil {
				return "", err
			}
		}

		raw, err := e.generator.GenerateContent(ctx, prompt, temperature)
		if err == nil {
			e.logger.Debug("oracle response",
				zap.Int("response_length", utf8.RuneCountInString(raw)),
				zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
			)
			return raw, nil
		}

		lastErr = err
		e.logger.Debug("oracle call failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return "", lastErr
}

func (e *Extractor) fallbackProfile(ctx context.Context, text string, cause error) (*oracle.ProfileFields, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	e.logger.Warn("falling back to deterministic profile extraction", zap.Error(cause))
	return e.fallback.ExtractProfile(ctx, text)
}

func (e *Extractor) fallbackTechStack(ctx context.Context, text string, cause error) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	e.logger.Warn("falling back to deterministic tech stack extraction", zap.Error(cause))
	return e.fallback.ExtractTechStack(ctx, text)
}

func (e *Extractor) fallbackQuestions(ctx context.Context, techStack []string, years int, cause error) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	e.logger.Warn("falling back to template questions", zap.Error(cause))
	return e.fallback.GenerateQuestions(ctx, techStack, years)
}

// waitFor sleeps for d unless the context is cancelled first.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseStringArray decodes a JSON array of strings from possibly fenced LLM
// output, coercing non-string items and dropping blanks.
func parseStringArray(raw string) ([]string, error) {
	var items []any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("parse array response: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

// extractJSON strips markdown code fences that models wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

// coerceString returns a trimmed non-empty string or nil. JSON nulls and
// empty strings both mean "field absent".
func coerceString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// coerceInt accepts JSON numbers and numeric strings.
func coerceInt(v any) *int {
	switch val := v.(type) {
	case float64:
		i := int(val)
		return &i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}
