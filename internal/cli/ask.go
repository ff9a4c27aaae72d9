package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ScienceLiveHub/science-live-pipeline/internal/model"
	"github.com/ScienceLiveHub/science-live-pipeline/internal/pipeline"
)

var (
	askEndpoint string
	askTimeout  time.Duration
	askJSON     bool
	noCache     bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a scientific question from nanopublications",
	Long: `Ask converts a natural language question into SPARQL, runs it
against the configured endpoints, and prints ranked findings with
confidence scores and follow-up suggestions.

Example:
  sciencelive ask "What papers cite AlexNet?"
  sciencelive ask "Who wrote ResNet50?" --endpoint nanopub-network
  sciencelive ask "What is CRISPR?" --llm ollama --llm-model llama3.1:8b --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askEndpoint, "endpoint", "", "endpoint name (default: all configured endpoints)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall question timeout")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable query result caching")

	// LLM flags
	askCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative generation")
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAsk(cmd *cobra.Command, args []string) error {
	questionText := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Processor.EnableCaching = !noCache
	cfg.Output.Verbose = verbose
	if askEndpoint != "" {
		if err := restrictEndpoint(cfg, askEndpoint); err != nil {
			return err
		}
	}
	if err := applyLLMFlags(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\n", questionText)
		fmt.Fprintf(os.Stderr, "Endpoints: %v\n", endpointNames(cfg))
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	result, err := p.Process(ctx, questionText)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

// printResult renders a result for the terminal
func printResult(result *model.Result) {
	fmt.Println(result.Summary)
	if len(result.DetailedResults) > 0 {
		fmt.Println()
		for _, line := range result.DetailedResults {
			fmt.Println(line)
		}
	}
	if result.ConfidenceNote != "" {
		fmt.Println()
		fmt.Println(result.ConfidenceNote)
	}
	if result.LLM != nil {
		fmt.Println()
		fmt.Printf("Narrative (%s/%s):\n%s\n", result.LLM.Provider, result.LLM.Model, result.LLM.Narrative)
	}
	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("You could also ask:")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	if verbose {
		fmt.Fprintln(os.Stderr)
		for _, d := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "! [%s] %s %s\n", d.Stage, d.Endpoint, d.Message)
		}
		s := result.Stats
		fmt.Fprintf(os.Stderr, "request %s: %d entities, %d statements, %d queries, %d bindings, %d findings in %v\n",
			s.RequestID, s.Entities, s.Statements, s.Queries, s.Bindings, s.Findings, s.Elapsed)
	}
}

// restrictEndpoint narrows the configuration to one named endpoint
func restrictEndpoint(cfg *model.Config, name string) error {
	for _, ep := range cfg.Endpoints {
		if ep.Name == name {
			ep.IsDefault = true
			cfg.Endpoints = []model.EndpointConfig{ep}
			return nil
		}
	}
	return fmt.Errorf("endpoint %q not configured (have: %s)", name, strings.Join(endpointNames(cfg), ", "))
}

func endpointNames(cfg *model.Config) []string {
	names := make([]string, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		names = append(names, ep.Name)
	}
	return names
}

// applyLLMFlags wires the LLM flags and API keys into the config
func applyLLMFlags(cfg *model.Config) error {
	if !llmEnabled {
		return nil
	}
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
