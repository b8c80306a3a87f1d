package interview

import (
	"context"
	"strings"

	"github.com/talentscout/screener/internal/oracle"
	"github.com/talentscout/screener/internal/oracle/stub"
	"go.uber.org/zap"
)

const (
	minQuestions = 3
	maxQuestions = 5
)

// QuestionGenerator turns a declared tech stack into an ordered list of
// screening questions. Oracle failures and unusably short output degrade to
// the deterministic template list; the caller never sees an error.
type QuestionGenerator struct {
	extractor oracle.Extractor
	logger    *zap.Logger
}

func NewQuestionGenerator(extractor oracle.Extractor, log *zap.Logger) *QuestionGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionGenerator{extractor: extractor, logger: log}
}

// Generate returns between 3 and 5 non-empty questions biased toward the
// first declared technology.
func (g *QuestionGenerator) Generate(ctx context.Context, techStack []string, years int) []string {
	raw, err := g.extractor.GenerateQuestions(ctx, techStack, years)
	if err != nil {
		g.logger.Warn("question generation failed, using templates", zap.Error(err))
		return stub.Questions(techStack, years)
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
		if len(questions) == maxQuestions {
			break
		}
	}

	if len(questions) < minQuestions {
		g.logger.Warn("question generation returned too few questions, using templates",
			zap.Int("count", len(questions)),
		)
		return stub.Questions(techStack, years)
	}

	return questions
}
