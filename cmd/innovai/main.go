package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/saffi955/INNOVAI/internal/agent"
	"github.com/saffi955/INNOVAI/internal/config"
	"github.com/saffi955/INNOVAI/internal/dataset"
	"github.com/saffi955/INNOVAI/internal/logbook"
	"github.com/saffi955/INNOVAI/internal/prompt"
	"github.com/saffi955/INNOVAI/internal/runner"
	"github.com/saffi955/INNOVAI/internal/sink"
	"github.com/saffi955/INNOVAI/internal/solver"
	"github.com/saffi955/INNOVAI/internal/verdict"
	"github.com/saffi955/INNOVAI/plugins"
)

func main() {
	configPath := flag.String("config", "innovai.yaml", "path to the run configuration file")
	promptsPath := flag.String("prompts", "prompts.json", "path to the agent system prompt file")
	datasetPath := flag.String("dataset", "", "path to the problem CSV (required)")
	logPath := flag.String("log", "innovai.log", "path to the run logbook")
	maxTries := flag.Int("max-tries", 0, "override solver.max_tries from the config")
	kill := flag.Bool("kill", false, "exit immediately without reading or writing anything")
	flag.Parse()

	// Health-check escape hatch: exits zero before any file or network I/O.
	if *kill {
		fmt.Println("kill requested, exiting")
		return
	}

	// .env is optional; environment already set wins.
	_ = godotenv.Load()

	if strings.TrimSpace(*datasetPath) == "" {
		die("-dataset is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		die("load config: %v", err)
	}
	if *maxTries > 0 {
		cfg.Solver.MaxTries = *maxTries
	}

	book, err := logbook.New(*logPath, logbook.WithEcho(os.Stderr))
	if err != nil {
		die("open logbook: %v", err)
	}

	prompts, err := prompt.Load(*promptsPath)
	if err != nil {
		die("load prompts: %v", err)
	}

	ds := dataset.Open(*datasetPath)
	problems, skipped, err := ds.Load()
	if err != nil {
		die("load dataset: %v", err)
	}
	if len(problems) == 0 {
		fmt.Printf("nothing to do: all %d problems already have outcomes\n", skipped)
		return
	}

	caller, err := agent.NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.Model, prompts,
		agent.WithTimeout(cfg.Ollama.Timeout()))
	if err != nil {
		die("build ollama caller: %v", err)
	}

	strategies, err := verdictChain(cfg.Plugins.Dir)
	if err != nil {
		die("load verdict plugins: %v", err)
	}
	judge := solver.NewAgentJudge(caller, strategies, book)

	out, err := openSink(cfg.Sink)
	if err != nil {
		die("open sink: %v", err)
	}
	defer out.Close()

	ctrl, err := solver.New(solver.Config{
		MaxTries:      cfg.Solver.MaxTries,
		HintThreshold: cfg.Solver.HintThreshold,
		RecordPolicy:  solver.RecordPolicy(cfg.Solver.RecordPolicy),
	}, caller, judge, out, solver.WithLogbook(book))
	if err != nil {
		die("build solver: %v", err)
	}

	run, err := runner.New(ctrl, book, runner.WithMarker(ds))
	if err != nil {
		die("build runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run.Run(ctx, problems, skipped)
	fmt.Println(summary)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("interrupted; unfinished problems keep their blank outcome and will be retried next run")
			return
		}
		die("run: %v", err)
	}
}

// verdictChain prepends plugin rules to the built-in strategies so custom
// vocabularies get first crack at the QA response.
func verdictChain(pluginDir string) (verdict.Chain, error) {
	files, err := plugins.LoadVerdictRuleDir(pluginDir)
	if err != nil {
		return nil, err
	}
	chain := verdict.Chain(plugins.Strategies(files))
	return append(chain, verdict.Default()...), nil
}

func openSink(cfg config.SinkConfig) (sink.Sink, error) {
	switch cfg.Type {
	case "sqlite":
		return sink.NewSQLite(cfg.Path)
	default:
		return sink.NewCSV(cfg.Path)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
