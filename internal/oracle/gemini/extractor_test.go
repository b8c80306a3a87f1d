package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentscout/screener/internal/oracle/stub"
	"go.uber.org/zap"
)

type stubGenerator struct {
	responses  []string
	err        error
	failures   int
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, _ float32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.failures > 0 {
		s.failures--
		return "", errors.New("transient backend failure")
	}
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no response configured")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

func newTestExtractor(gen *stubGenerator, retries int) *Extractor {
	e := NewExtractor(gen, stub.New(), retries, 0, zap.NewNop())
	e.backoff = time.Millisecond
	return e
}

func TestExtractProfileParsesResponse(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"name": "John Doe", "email": "john@x.com", "phone": null, "years_experience": "7", "desired_position": "Backend Engineer", "current_location": "Berlin, Germany"}`,
	}}
	e := newTestExtractor(gen, 0)

	fields, err := e.ExtractProfile(context.Background(), "irrelevant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fields.Name == nil || *fields.Name != "John Doe" {
		t.Errorf("unexpected name: %v", fields.Name)
	}
	if fields.Phone != nil {
		t.Errorf("expected null phone to stay nil, got %q", *fields.Phone)
	}
	if fields.YearsExperience == nil || *fields.YearsExperience != 7 {
		t.Errorf("expected numeric string to be coerced, got %v", fields.YearsExperience)
	}
	if fields.CurrentLocation == nil || *fields.CurrentLocation != "Berlin, Germany" {
		t.Errorf("unexpected location: %v", fields.CurrentLocation)
	}
	if gen.lastPrompt == "" {
		t.Fatalf("expected prompt to be sent")
	}
}

func TestExtractProfileMalformedFallsBack(t *testing.T) {
	gen := &stubGenerator{responses: []string{"I cannot help with that request."}}
	e := newTestExtractor(gen, 0)

	fields, err := e.ExtractProfile(context.Background(), "My name is Jane Roe, jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The deterministic fallback should have classified the fragments.
	if fields.Name == nil || *fields.Name != "Jane Roe" {
		t.Errorf("expected fallback name extraction, got %v", fields.Name)
	}
	if fields.Email == nil || *fields.Email != "jane@example.com" {
		t.Errorf("expected fallback email extraction, got %v", fields.Email)
	}
}

func TestExtractTechStackStripsFences(t *testing.T) {
	gen := &stubGenerator{responses: []string{"```json\n[\"Python\", \"Go\", \"\"]\n```"}}
	e := newTestExtractor(gen, 0)

	techs, err := e.ExtractTechStack(context.Background(), "irrelevant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(techs) != 2 || techs[0] != "Python" || techs[1] != "Go" {
		t.Fatalf("unexpected techs: %v", techs)
	}
}

func TestExtractTechStackBackendErrorFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("backend down")}
	e := newTestExtractor(gen, 0)

	techs, err := e.ExtractTechStack(context.Background(), "I use Python and Docker daily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(techs) != 2 || techs[0] != "Python" || techs[1] != "Docker" {
		t.Fatalf("expected fallback keyword extraction, got %v", techs)
	}
}

func TestGenerateQuestionsMalformedFallsBack(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{"not": "an array"}`}}
	e := newTestExtractor(gen, 0)

	questions, err := e.GenerateQuestions(context.Background(), []string{"Python"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 5 {
		t.Fatalf("expected template questions, got %v", questions)
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	gen := &stubGenerator{
		failures:  1,
		responses: []string{`["q one", "q two", "q three"]`},
	}
	e := newTestExtractor(gen, 2)

	questions, err := e.GenerateQuestions(context.Background(), []string{"Go"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", gen.calls)
	}
	if len(questions) != 3 {
		t.Fatalf("unexpected questions: %v", questions)
	}
}

func TestCancelledContextSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &stubGenerator{err: errors.New("backend down")}
	e := newTestExtractor(gen, 0)

	if _, err := e.ExtractProfile(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1]\n```":           `[1]`,
		"  {\"b\":2}  ":           `{"b":2}`,
	}

	for input, want := range cases {
		if got := extractJSON(input); got != want {
			t.Errorf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}
