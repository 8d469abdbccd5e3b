// Package cmd contains the command-line entry points.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/botgpt/botgpt/internal/config"
	"github.com/botgpt/botgpt/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point. It parses the command word, initializes
// logging and configuration, and runs the server.
//
// version and help work even when the configuration is invalid.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			return printVersionInfo()
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "serve":
			// fall through to default behavior
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	logger := initLogger()
	slog.SetDefault(logger)

	if err := checkRequiredEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	return runServe(cfg, logger)
}

// initLogger initializes the structured logger. DEBUG in the environment
// (any value) switches to debug level.
func initLogger() *slog.Logger {
	return log.New(log.Config{
		Level: logLevel(),
		JSON:  os.Getenv("BOTGPT_LOG_JSON") != "",
	})
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// checkRequiredEnv verifies provider credentials are present. Only the
// default gemini provider needs a key at startup; ollama is keyless and
// openai reads OPENAI_API_KEY inside the plugin.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" &&
		os.Getenv("BOTGPT_PROVIDER_KEYLESS") == "" {
		fmt.Fprintln(os.Stderr, "Error: no model API key found")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set one of:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "  export OPENAI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "or, for a local ollama setup:")
		fmt.Fprintln(os.Stderr, "  export BOTGPT_PROVIDER_KEYLESS=1")

		return fmt.Errorf("no model API key set")
	}
	return nil
}

func printVersionInfo() error {
	fmt.Printf("botgpt v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
	return nil
}

func printHelp() {
	fmt.Println("botgpt - retrieval-augmented chat backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  botgpt [serve]      Start the HTTP API server (default)")
	fmt.Println("  botgpt version      Show version information")
	fmt.Println("  botgpt help         Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY             Gemini API key (default provider)")
	fmt.Println("  OPENAI_API_KEY             OpenAI API key")
	fmt.Println("  DATABASE_URL               Postgres connection URL override")
	fmt.Println("  BOTGPT_ADDR                HTTP listen address")
	fmt.Println("  BOTGPT_POSTGRES_PASSWORD   Postgres password")
	fmt.Println("  DEBUG                      Enable debug logging")
	fmt.Println()
	fmt.Println("Configuration file: ~/.botgpt/config.yaml")
}
