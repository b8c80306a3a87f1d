package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/talentscout/screener/internal/candidate"
	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/oracle"
	"github.com/talentscout/screener/internal/store"
	"go.uber.org/zap"
)

// Phase is a named step of the conversation state machine.
type Phase string

const (
	PhaseGreeting        Phase = "greeting"
	PhaseCollectingInfo  Phase = "collecting_info"
	PhaseCollectingTech  Phase = "collecting_tech"
	PhaseAskingQuestions Phase = "asking_questions"
	PhaseCompleted       Phase = "completed"
)

// Message roles in the turn history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string
	Content string
}

const (
	greetingMessage = "Hello! Welcome to TalentScout. I'm here to assist with your initial screening. " +
		"Before we begin, do you consent to us storing the details you share for this application? " +
		"Once you agree, please tell me a bit about yourself: your full name, email, phone number, " +
		"years of experience, desired position, and current location (City, Country)."

	techStackPrompt = "Great! Now, could you tell me about your technical skills? " +
		"What programming languages, frameworks, databases and tools are you proficient in?"

	techStackReprompt = "I didn't quite get that. Could you please list the technologies you work with? " +
		"(e.g. Python, JavaScript, React)"

	firstQuestionPrefix = "Thank you! Now I'll ask you a few technical questions. "

	closingMessage = "Thank you for completing the screening! We've collected all the necessary " +
		"information. Our recruitment team will review your details and contact you shortly."

	noQuestionsClosing = "Thank you for the information! We'll review your details and get back to you soon."
)

// fieldPrompts maps each required field to its question.
var fieldPrompts = map[string]string{
	candidate.FieldConsent:  "Before we continue, I need your consent to store the details you share for recruitment purposes. Do you agree? (yes/no)",
	candidate.FieldName:     "Could you please provide your full name?",
	candidate.FieldEmail:    "What is your email address?",
	candidate.FieldPhone:    "What is your phone number? Please include the country code, e.g. +14155552671.",
	candidate.FieldYears:    "How many years of professional experience do you have?",
	candidate.FieldPosition: "What position are you applying for?",
	candidate.FieldLocation: "Where are you currently located? (City, Country)",
}

var consentWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "sure": true,
	"ok": true, "okay": true, "agree": true, "agreed": true, "i agree": true,
	"i consent": true, "of course": true, "absolutely": true, "yes i do": true,
}

// Session is the per-candidate conversation context. All mutable interview
// state lives here, keyed by a fresh candidate id; nothing is shared across
// sessions except the record store. Sessions are not safe for concurrent
// use: exactly one user message is processed per transition step.
type Session struct {
	id            string
	phase         Phase
	acc           *Accumulator
	messages      []Message
	questions     []string
	questionIndex int
	saved         bool

	maxYears  int
	extractor oracle.Extractor
	generator *QuestionGenerator
	records   *store.Store
	logger    *zap.Logger
}

// NewSession creates an empty session with a fresh candidate id.
func NewSession(extractor oracle.Extractor, records *store.Store, maxYears int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		maxYears:  maxYears,
		extractor: extractor,
		generator: NewQuestionGenerator(extractor, log),
		records:   records,
		logger:    log,
	}
	s.Reset()

	return s
}

// Reset discards all session state and issues a new candidate id.
func (s *Session) Reset() {
	s.id = newCandidateID()
	s.phase = PhaseGreeting
	s.acc = NewAccumulator(s.maxYears)
	s.messages = nil
	s.questions = nil
	s.questionIndex = 0
	s.saved = false
}

// ID returns the candidate identifier for this session.
func (s *Session) ID() string { return s.id }

// Phase returns the current conversation phase.
func (s *Session) Phase() Phase { return s.phase }

// History returns a copy of the turn history.
func (s *Session) History() []Message {
	history := make([]Message, len(s.messages))
	copy(history, s.messages)
	return history
}

// Greeting records and returns the opening assistant message.
func (s *Session) Greeting() string {
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: greetingMessage})
	return greetingMessage
}

// HandleInput processes exactly one user message: it records the turn,
// mutates the state machine once and returns at most one assistant reply.
// The only errors it surfaces are persistence failures and context
// cancellation; oracle and validation trouble stay internal and show up as
// re-prompts.
func (s *Session) HandleInput(ctx context.Context, input string) (string, error) {
	if s.phase == PhaseCompleted {
		return "", nil
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Content: input})

	var (
		reply string
		err   error
	)

	switch s.phase {
	case PhaseGreeting, PhaseCollectingInfo:
		reply, err = s.collectInfo(ctx, input)
	case PhaseCollectingTech:
		reply, err = s.collectTech(ctx, input)
	case PhaseAskingQuestions:
		reply = s.recordAnswer()
	}
	if err != nil {
		return "", err
	}

	if reply != "" {
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	}

	if s.phase == PhaseCompleted && !s.saved {
		if err := s.persist(); err != nil {
			return reply, fmt.Errorf("saving candidate record: %w", err)
		}
	}

	return reply, nil
}

// collectInfo merges extracted fields and either prompts for the first
// missing field or moves on to tech stack collection.
func (s *Session) collectInfo(ctx context.Context, input string) (string, error) {
	if s.awaitingConsent() && isAffirmative(input) {
		s.acc.GrantConsent()
	}

	hadEmail := s.acc.Email() != ""

	fields, err := s.extractor.ExtractProfile(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// The oracle is resilient by contract; treat a stray failure as
		// an empty extraction and re-prompt.
		s.logger.Warn("profile extraction failed", zap.Error(err))
		fields = &oracle.ProfileFields{}
	}

	rejected := s.acc.Merge(fields)
	for _, ferr := range rejected {
		s.logger.Debug("field rejected",
			zap.String("field", ferr.Field),
			zap.String("reason", ferr.Reason),
		)
	}

	if !hadEmail && s.acc.Email() != "" {
		s.checkDuplicate()
	}

	missing := s.acc.Missing()
	if len(missing) > 0 {
		s.phase = PhaseCollectingInfo
		return s.promptFor(missing[0], rejected), nil
	}

	s.phase = PhaseCollectingTech
	return techStackPrompt, nil
}

// collectTech extracts the tech stack. An empty extraction re-prompts and
// never advances the phase.
func (s *Session) collectTech(ctx context.Context, input string) (string, error) {
	techs, err := s.extractor.ExtractTechStack(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn("tech stack extraction failed", zap.Error(err))
		return techStackReprompt, nil
	}

	if len(techs) == 0 {
		return techStackReprompt, nil
	}

	var stack candidate.TechStack
	for _, tech := range techs {
		if display, category, ok := candidate.LookupTechnology(tech); ok {
			stack.Add(category, display)
			continue
		}
		stack.Add(candidate.CategoryTool, tech)
	}
	s.acc.SetTechStack(stack)

	s.questions = s.generator.Generate(ctx, stack.All(), s.acc.Years())
	s.questionIndex = 0

	if len(s.questions) == 0 {
		s.phase = PhaseCompleted
		return noQuestionsClosing, nil
	}

	s.phase = PhaseAskingQuestions
	return firstQuestionPrefix + s.questions[0], nil
}

// recordAnswer accepts the current answer without validation and either
// asks the next question or closes the interview.
func (s *Session) recordAnswer() string {
	if s.questionIndex < len(s.questions)-1 {
		s.questionIndex++
		return s.questions[s.questionIndex]
	}

	s.questionIndex = len(s.questions)
	s.phase = PhaseCompleted
	return closingMessage
}

// persist writes the finalized record exactly once.
func (s *Session) persist() error {
	if s.records == nil {
		return fmt.Errorf("record store is not configured")
	}

	conversation := make([]store.Turn, 0, len(s.messages))
	for _, m := range s.messages {
		conversation = append(conversation, store.Turn{Role: m.Role, Content: m.Content})
	}

	record := store.NewRecord(s.acc.Profile(), s.questions, conversation)
	if err := s.records.Save(s.id, record); err != nil {
		return err
	}

	s.saved = true
	logger.WithSession(s.logger, s.id).Info("candidate record persisted",
		zap.Int("turns", len(conversation)),
		zap.Int("questions", len(s.questions)),
	)

	return nil
}

// promptFor asks for a single missing field, reusing the rejection reason
// when this exact field was just supplied but failed validation.
func (s *Session) promptFor(field string, rejected []*candidate.FieldError) string {
	prompt := fieldPrompts[field]
	for _, ferr := range rejected {
		if ferr.Field == field {
			return fmt.Sprintf("Sorry, %s. %s", ferr.Reason, prompt)
		}
	}
	return prompt
}

func (s *Session) awaitingConsent() bool {
	missing := s.acc.Missing()
	return len(missing) > 0 && missing[0] == candidate.FieldConsent
}

// checkDuplicate logs when the accepted email already has a persisted
// record. Duplicates never block the session.
func (s *Session) checkDuplicate() {
	if s.records == nil {
		return
	}

	exists, err := s.records.Exists(s.acc.Email())
	if err != nil {
		s.logger.Debug("duplicate check failed", zap.Error(err))
		return
	}
	if exists {
		logger.WithSession(s.logger, s.id).Warn("duplicate application detected",
			zap.String("email", s.acc.Email()),
		)
	}
}

func isAffirmative(input string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	cleaned = strings.Trim(cleaned, ".!")
	if consentWords[cleaned] {
		return true
	}

	// "yes, I agree" and friends: accept when the leading clause or the
	// first word is itself an agreement.
	if clause, _, ok := strings.Cut(cleaned, ","); ok && consentWords[strings.TrimSpace(clause)] {
		return true
	}
	first, _, _ := strings.Cut(cleaned, " ")
	return consentWords[strings.Trim(first, ",.!")]
}

// newCandidateID returns a short random alphanumeric session token.
func newCandidateID() string {
	return uuid.NewString()[:8]
}
