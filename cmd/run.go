package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/subsidiematch/subsidiematch/internal/digest"
	"github.com/subsidiematch/subsidiematch/internal/logger"
	"github.com/subsidiematch/subsidiematch/internal/matching"
	"github.com/subsidiematch/subsidiematch/internal/scoring"
	"github.com/subsidiematch/subsidiematch/internal/scoring/gemini"
	"github.com/subsidiematch/subsidiematch/internal/scoring/heuristic"
	"github.com/subsidiematch/subsidiematch/internal/secrets"
	"github.com/subsidiematch/subsidiematch/internal/store"
)

const (
	PromptShowTopMatches = "Show top matches"
	PromptGenerateDigest = "Generate digest for an organisation"
	PromptDumpMatches    = "Dump matches to file"
	PromptExit           = "Exit"

	topMatchesLimit = 10
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowTopMatches, PromptGenerateDigest, PromptDumpMatches, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute all subsidy matches and work with the results",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("non-interactive", "y", false, "recompute matches and exit without the action prompt")
	runCmd.Flags().Bool("offline", false, "force the offline heuristic scorer even when a gemini key is configured")
	runCmd.Flags().IntP("weeks", "w", 0, "digest lookback window in weeks. Default is driven by the subscription tier.")

	viper.BindPFlag("digest.weeks", runCmd.Flags().Lookup("weeks"))
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

	logger.Info("starting subsidiematch", zap.String("version", version))

	if config != nil {
		// do not bother error since there is a valid parseable config
		pretty, _ := json.MarshalIndent(config, "", "  ")
		logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))
	}

	st := store.Seed()

	offline := cmd.Flag("offline").Value.String() == "true"
	scorer := newScorer(ctx, config, logger, offline)

	logger.Info("scoring backend selected",
		zap.Bool("real", scorer.Real()),
		zap.String("hint", backendHint(scorer)),
	)

	engine := matching.New(st, scorer, logger)
	if err := engine.RecomputeAll(ctx, st.ActivePrompt()); err != nil {
		logger.Fatal("recomputing matches", zap.Error(err))
	}

	if cmd.Flag("non-interactive").Value.String() == "true" {
		logger.Info("exiting", zap.String("reason", "non-interactive mode"), zap.Int("matches", len(st.Matches())))
		return
	}

	composer := digest.New(st, logger)

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, st, composer, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, st *store.Store, composer *digest.Composer, logger *zap.Logger) error {
	switch action {
	case PromptShowTopMatches:
		return showTopMatches(st, logger)
	case PromptGenerateDigest:
		return generateDigest(st, composer, logger)
	case PromptDumpMatches:
		filename, err := st.Matches().DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showTopMatches(st *store.Store, logger *zap.Logger) error {
	matches := st.Matches()
	if len(matches) == 0 {
		logger.Warn("no matches computed yet")
		return nil
	}

	subsidies := make(map[int]string)
	for _, sub := range st.Subsidies() {
		subsidies[sub.ID] = sub.Name
	}
	organisations := make(map[int]string)
	for _, org := range st.Organisations() {
		organisations[org.ID] = org.Name
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	limit := topMatchesLimit
	if len(matches) < limit {
		limit = len(matches)
	}

	logger.Info("current list of matches", zap.Int("count", len(matches)), zap.Int("shown", limit))
	for _, match := range matches[:limit] {
		subject := fmt.Sprintf("persona %d", valueOrZero(match.PersonaID))
		if match.Type == store.MatchTypeOrganisation {
			subject = organisations[valueOrZero(match.OrganisationID)]
		}
		logger.Info("match",
			zap.Int("score", match.Score),
			zap.String("subject", subject),
			zap.String("subsidy", subsidies[match.SubsidyID]),
		)
	}

	return nil
}

func generateDigest(st *store.Store, composer *digest.Composer, logger *zap.Logger) error {
	organisations := st.Organisations()
	if len(organisations) == 0 {
		logger.Warn("no organisations available for a digest")
		return nil
	}

	items := make([]string, 0, len(organisations))
	for _, org := range organisations {
		items = append(items, fmt.Sprintf("%d %s (%s)", org.ID, org.Name, org.Subscription))
	}

	orgPrompt := promptui.Select{
		Label: "Choose an organisation and press ENTER",
		Items: items,
	}

	_, selected, err := orgPrompt.Run()
	if err != nil {
		return err
	}

	orgID, err := strconv.Atoi(strings.Split(selected, " ")[0])
	if err != nil {
		return fmt.Errorf("parsing organisation id from %q: %w", selected, err)
	}

	record, err := composer.Generate(orgID, viper.GetInt("digest.weeks"))
	if err != nil {
		return fmt.Errorf("generating digest: %w", err)
	}

	logger.Info("digest generated",
		zap.Int("digest_id", record.ID),
		zap.Int("organisation_id", record.OrganisationID),
	)
	fmt.Println(record.Body)

	return nil
}

// newScorer selects the scoring backend once at startup. A resolvable gemini
// api key selects the real backend; anything else falls back to the offline
// heuristic.
func newScorer(ctx context.Context, config *Config, log *zap.Logger, offline bool) scoring.Scorer {
	if offline {
		log.Info("offline flag is set, using heuristic scorer")
		return heuristic.New()
	}

	var geminiCfg *GeminiConfig
	if config != nil && config.AI != nil {
		if provider := strings.TrimSpace(strings.ToLower(config.AI.Provider)); provider != "" && provider != "gemini" {
			log.Warn("unsupported ai provider, using heuristic scorer", zap.String("provider", config.AI.Provider))
			return heuristic.New()
		}
		geminiCfg = config.AI.Gemini
	}
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{APIKeyFile: viper.GetString("ai.gemini.api-key-file")}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		log.Info("no gemini credential available, using heuristic scorer", zap.Error(err))
		return heuristic.New()
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model)
	if err != nil {
		log.Warn("building gemini generator failed, using heuristic scorer", zap.Error(err))
		return heuristic.New()
	}

	scorerLogger := logger.WithBackendFields(log, "gemini", generator.Model())

	return gemini.NewScorer(generator, scorerLogger, geminiCfg.MaxLogLength)
}

func backendHint(scorer scoring.Scorer) string {
	if scorer.Real() {
		return "scores come from the gemini api"
	}
	return "offline heuristic, no real backend calls are made"
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
