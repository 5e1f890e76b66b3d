// Command lookout is the competitor-intelligence pipeline CLI.
//
// Usage:
//
//	lookout run <job>       Run a pipeline job
//	lookout stats           Pipeline statistics
//	lookout stories         List analyzed stories
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/store"
)

const usage = `lookout - competitor intelligence pipeline

Usage:
  lookout <command> [flags]

Commands:
  run <job>   Run a pipeline job: fetch_sources, normalize, dedupe_and_cluster,
              summarize_and_analyze, alerts, full_pipeline
  stats       Pipeline statistics and recent job runs
  stories     List analyzed stories

Environment:
  LOOKOUT_CONFIG   Config file path (default: lookout.yaml)
  LOOKOUT_DB       SQLite database path (overrides config)
  OPENAI_API_KEY   API key for the optional LLM analysis strategy
  OLLAMA_HOST      Ollama endpoint for the optional LLM analysis strategy

Run 'lookout <command> -h' for command-specific help.
`

func main() {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "run":
		runJob()
	case "stats":
		runStats()
	case "stories":
		runStories()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "lookout: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("LOOKOUT_CONFIG"); p != "" {
		return p
	}
	return "lookout.yaml"
}

// setup loads config, initializes logging, and opens the store.
func setup() (*config.Snapshot, *store.Store) {
	snap, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookout: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(""); err != nil {
		fmt.Fprintf(os.Stderr, "lookout: init logging: %v\n", err)
		os.Exit(1)
	}

	st, err := store.New(snap.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookout: open store: %v\n", err)
		os.Exit(1)
	}
	return snap, st
}
