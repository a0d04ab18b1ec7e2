// Command ingest parses one local statement file and prints the
// ParseResult as JSON. Useful for trying out new bank layouts without
// running the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/asharma-dev/statement-pipeline/internal/categorize"
	"github.com/asharma-dev/statement-pipeline/internal/config"
	"github.com/asharma-dev/statement-pipeline/internal/domain"
	"github.com/asharma-dev/statement-pipeline/internal/ledger"
	"github.com/asharma-dev/statement-pipeline/internal/logger"
	"github.com/asharma-dev/statement-pipeline/internal/parser"
	"github.com/asharma-dev/statement-pipeline/internal/pipeline"
)

func main() {
	cfg := config.FromEnv()

	var (
		file      = flag.String("file", "", "statement file to parse (pdf, csv, xlsx, jpg, png)")
		account   = flag.String("account", "default", "account identity for dedup and import")
		lexicon   = flag.String("lexicon", cfg.LexiconPath, "optional YAML file extending the category lexicon")
		useAI     = flag.Bool("ai", cfg.AIEnabled, "enable the Gemini fallback stage")
		doImport  = flag.Bool("import", false, "import the parsed transactions into the in-memory ledger and print the report")
		showTrace = flag.Bool("trace", false, "log the parser chain trace")
	)
	flag.Parse()

	log := logger.New()
	if *file == "" {
		log.Fatal().Msg("usage: ingest -file statement.pdf [-account id] [-ai]")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read statement")
	}

	categorizer := categorize.New()
	if *lexicon != "" {
		categorizer, err = categorize.NewFromYAML(*lexicon)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load category lexicon")
		}
	}

	var ai parser.Parser
	if *useAI {
		ai = parser.NewAIExtractor(cfg.ModelName, cfg.AITimeout)
	}
	chain := parser.NewChain(parser.NewRegistry(), ai)

	led := ledger.NewMemoryLedger()
	ctx := domain.WithAccount(logger.WithContext(context.Background(), log), *account)

	pipe := pipeline.NewStatementPipeline(cfg.MaxUploadBytes, chain, categorizer, led)
	state := &pipeline.State{Filename: *file, Data: data}
	if err := pipe.Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}

	if *showTrace && state.ChainOutcome != nil {
		for _, stage := range state.ChainOutcome.Trace {
			log.Info().
				Str("state", stage.State.String()).
				Str("parser", stage.Parser).
				Int("count", stage.Count).
				Str("skip", stage.Skip).
				Str("error", stage.Err).
				Msg("chain stage")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state.Result); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}

	if *doImport {
		report := ledger.ImportBatch(ctx, led, state.Result.Transactions)
		if err := enc.Encode(report); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode import report")
		}
	}
}
