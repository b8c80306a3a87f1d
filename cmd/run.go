package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talentscout/screener/internal/interview"
	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/oracle"
	"github.com/talentscout/screener/internal/oracle/gemini"
	"github.com/talentscout/screener/internal/oracle/stub"
	"github.com/talentscout/screener/internal/secrets"
	"github.com/talentscout/screener/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptNewSession = "Start a new session"
	PromptShowRecord = "Show the saved record"
	PromptExit       = "Exit"

	resetCommand = "/reset"
)

var errExit = errors.New("exit requested")

var completedPrompt = promptui.Select{
	Label: "Screening complete. What next?",
	Items: []string{PromptNewSession, PromptShowRecord, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive candidate screening session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("data-dir", "", "directory for persisted candidate records")
	runCmd.Flags().Bool("no-ai", false, "disable the live oracle and use the deterministic extractor only")

	viper.BindPFlag("data-dir", runCmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("no-ai", runCmd.Flags().Lookup("no-ai"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the screener", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	extractor := buildExtractor(ctx, config, logger)

	records, err := store.New(config.DataDir)
	if err != nil {
		logger.Fatal("opening the record store", zap.Error(err))
	}

	session := interview.NewSession(extractor, records, config.MaxExperienceYears, logger)
	logger.Info("session started", zap.String("session_id", session.ID()))

	say(session.Greeting())

	if err := chatLoop(ctx, session, records, logger); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// chatLoop reads one user message per turn and feeds it to the session
// until the interview completes or the user bails out.
func chatLoop(ctx context.Context, session *interview.Session, records *store.Store, logger *zap.Logger) error {
	input := promptui.Prompt{Label: "you"}

	for {
		text, err := input.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D end the conversation.
			return errExit
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if text == resetCommand {
			session.Reset()
			logger.Info("session reset", zap.String("session_id", session.ID()))
			say(session.Greeting())
			continue
		}

		reply, err := session.HandleInput(ctx, text)
		if err != nil {
			return err
		}

		if reply != "" {
			say(reply)
		}

		if session.Phase() == interview.PhaseCompleted {
			if err := handleCompleted(session, records, logger); err != nil {
				return err
			}
			say(session.Greeting())
		}
	}
}

// handleCompleted shows the post-interview menu and resets the session when
// the candidate wants another round.
func handleCompleted(session *interview.Session, records *store.Store, logger *zap.Logger) error {
	for {
		_, action, err := completedPrompt.Run()
		if err != nil {
			return errExit
		}

		switch action {
		case PromptShowRecord:
			record, err := records.Load(session.ID())
			if err != nil {
				return fmt.Errorf("loading candidate record: %w", err)
			}
			pretty, _ := json.MarshalIndent(record, "", "  ")
			fmt.Printf("\n%s\n\n", pretty)
		case PromptNewSession:
			previous := session.ID()
			session.Reset()
			logger.Info("session reset",
				zap.String("previous_session_id", previous),
				zap.String("session_id", session.ID()),
			)
			return nil
		case PromptExit:
			logger.Info("exiting", zap.String("reason", "interview finished"))
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

// buildExtractor wires the oracle: the live Gemini backend over the
// deterministic stub when AI is enabled and configured, the stub alone
// otherwise. The stub keeps the interview fully functional offline.
func buildExtractor(ctx context.Context, config *Config, log *zap.Logger) oracle.Extractor {
	fallback := stub.New()

	if viper.GetBool("no-ai") || config.AI == nil || !config.AI.Enabled {
		log.Info("live oracle disabled, using deterministic extraction")
		return fallback
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		log.Warn("unsupported ai provider, using deterministic extraction",
			zap.String("provider", config.AI.Provider),
		)
		return fallback
	}

	if config.AI.Gemini == nil {
		log.Warn("gemini configuration is missing, using deterministic extraction")
		return fallback
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		log.Warn("loading gemini api key failed, using deterministic extraction",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
		return fallback
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		log.Warn("building gemini client failed, using deterministic extraction", zap.Error(err))
		return fallback
	}

	oracleLogger := logger.WithProvider(log, "gemini", generator.Model())

	return gemini.NewExtractor(
		generator,
		fallback,
		config.AI.Gemini.MaxRetries,
		config.AI.Gemini.MaxLogLength,
		oracleLogger,
	)
}

// say prints an assistant message to the chat transcript on stdout.
func say(message string) {
	fmt.Printf("\n%s\n\n", message)
}
