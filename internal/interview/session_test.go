package interview

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentscout/screener/internal/oracle/stub"
	"github.com/talentscout/screener/internal/store"
	"go.uber.org/zap"
)

func newTestSession(t *testing.T) (*Session, *store.Store, string) {
	t.Helper()

	dir := t.TempDir()
	records, err := store.New(dir)
	require.NoError(t, err)

	return NewSession(stub.New(), records, 40, zap.NewNop()), records, dir
}

func TestSessionPromptsForFirstMissingField(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()
	session.Greeting()

	_, err := session.HandleInput(ctx, "yes, I agree")
	require.NoError(t, err)

	// Everything but the email is supplied in one turn; the next prompt
	// must ask for the email specifically.
	reply, err := session.HandleInput(ctx,
		"My name is John Doe, +14155552671, 3 years, Python Developer, New York, USA")
	require.NoError(t, err)

	assert.Equal(t, "What is your email address?", reply)
	assert.Equal(t, PhaseCollectingInfo, session.Phase())
}

func TestSessionRePromptsWithRejectionReason(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()
	session.Greeting()

	_, err := session.HandleInput(ctx, "yes")
	require.NoError(t, err)
	_, err = session.HandleInput(ctx, "My name is John Doe, john@x.com, 3 years, Python Developer, New York, USA")
	require.NoError(t, err)

	// An implausible number is rejected and the phone prompt explains why.
	reply, err := session.HandleInput(ctx, "+1111111111111")
	require.NoError(t, err)

	assert.Contains(t, reply, "phone number")
	assert.Equal(t, PhaseCollectingInfo, session.Phase())
}

func TestSessionEmptyTechExtractionRePrompts(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()
	session.Greeting()

	driveToTechCollection(t, session)

	reply, err := session.HandleInput(ctx, "I enjoy long walks on the beach")
	require.NoError(t, err)

	assert.Contains(t, reply, "list the technologies")
	assert.Equal(t, PhaseCollectingTech, session.Phase())
}

func TestSessionEndToEnd(t *testing.T) {
	session, records, dir := newTestSession(t)
	ctx := context.Background()
	session.Greeting()

	driveToTechCollection(t, session)

	reply, err := session.HandleInput(ctx, "Python, React")
	require.NoError(t, err)
	require.Equal(t, PhaseAskingQuestions, session.Phase())
	assert.Contains(t, reply, "technical questions")
	assert.Contains(t, reply, "Python")

	// Answer questions until the interview closes.
	answers := 0
	for session.Phase() == PhaseAskingQuestions {
		reply, err = session.HandleInput(ctx, "here is my answer")
		require.NoError(t, err)
		answers++
		require.LessOrEqual(t, answers, 10, "interview did not terminate")
	}

	assert.Equal(t, PhaseCompleted, session.Phase())
	assert.Contains(t, reply, "Thank you for completing the screening")
	assert.Equal(t, 5, answers)

	record, err := records.Load(session.ID())
	require.NoError(t, err)

	assert.True(t, record.Consent)
	assert.Equal(t, "John Doe", record.FullName)
	assert.Equal(t, "john@x.com", record.Email)
	assert.Equal(t, "+14155552671", record.Phone)
	assert.Equal(t, 3, record.YearsExperience)
	assert.Equal(t, []string{"Python Developer"}, record.DesiredPositions)
	assert.Equal(t, "New York, United States", record.CurrentLocation)
	assert.Equal(t, []string{"Python", "React"}, record.TechStack)
	assert.Len(t, record.Questions, 5)
	assert.NotEmpty(t, record.Timestamp)

	require.NotEmpty(t, record.Conversation)
	assert.Equal(t, RoleAssistant, record.Conversation[0].Role)
	last := record.Conversation[len(record.Conversation)-1]
	assert.Contains(t, last.Content, "Thank you for completing the screening")

	// Exactly one record exists for this session.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	jsonFiles := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") {
			jsonFiles++
		}
	}
	assert.Equal(t, 1, jsonFiles)

	// The terminal phase ignores further input.
	reply, err = session.HandleInput(ctx, "anything else?")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, PhaseCompleted, session.Phase())
}

func TestSessionReset(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()
	session.Greeting()

	_, err := session.HandleInput(ctx, "yes")
	require.NoError(t, err)

	previous := session.ID()
	session.Reset()

	assert.NotEqual(t, previous, session.ID())
	assert.Equal(t, PhaseGreeting, session.Phase())
	assert.Empty(t, session.History())
}

// driveToTechCollection walks a session through consent and the full
// profile so tests can start at the tech stack phase.
func driveToTechCollection(t *testing.T, session *Session) {
	t.Helper()
	ctx := context.Background()

	_, err := session.HandleInput(ctx, "yes, I agree")
	require.NoError(t, err)

	reply, err := session.HandleInput(ctx,
		"My name is John Doe, john@x.com, +14155552671, 3 years, Python Developer, New York, USA")
	require.NoError(t, err)

	require.Equal(t, PhaseCollectingTech, session.Phase())
	require.Contains(t, reply, "technical skills")
}
