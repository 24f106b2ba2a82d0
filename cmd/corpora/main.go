// Package main is the corpora CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/inkwell-labs/corpora/internal/answer"
	"github.com/inkwell-labs/corpora/internal/config"
	"github.com/inkwell-labs/corpora/internal/embedding"
	"github.com/inkwell-labs/corpora/internal/ingest"
	"github.com/inkwell-labs/corpora/internal/models"
	"github.com/inkwell-labs/corpora/internal/retrieval"
	"github.com/inkwell-labs/corpora/internal/server"
	"github.com/inkwell-labs/corpora/internal/storage"
	"github.com/inkwell-labs/corpora/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/corpora/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "corpora server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; real deployments set the API key in the environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("corpora version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Engine,
		components.Pipeline,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word queries work
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	orgID := fs.String("org", "", "organization ID (required)")
	topK := fs.Int("top-k", 0, "max documents to use for the answer (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *orgID == "" || fs.NArg() < 1 {
		fmt.Println("Usage: corpora query --org <org-id> [flags] <question>")
		os.Exit(1)
	}
	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		fmt.Println("Usage: corpora query --org <org-id> [flags] <question>")
		os.Exit(1)
	}

	req := &models.QueryRequest{Query: queryStr, OrgID: *orgID, TopK: *topK}
	response, err := queryViaHTTP(*serverURL, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Println(response.Answer)
		if len(response.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range response.Sources {
				fmt.Printf("  - %s (%s)\n", src.Title, src.ID)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL string, req *models.QueryRequest) (*models.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents     int64                  `json:"documents"`
	Organizations int64                  `json:"organizations"`
	Config        map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:      %d\n", status.Documents)
		fmt.Printf("organizations:  %d\n", status.Organizations)
		if len(status.Config) > 0 {
			fmt.Println("\n# configuration")
			for _, key := range []string{"embedding_model", "chat_model", "top_k", "threshold", "database_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-16s%v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Provider
	Answerer answer.Provider
	Engine   *retrieval.Engine
	Pipeline *ingest.Pipeline
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	providerTimeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	apiKey := os.Getenv(cfg.Provider.APIKeyEnv)

	var embedder embedding.Provider
	var answerer answer.Provider
	if apiKey == "" {
		// Without an API key the server still runs for local development;
		// documents get deterministic mock embeddings and no answers.
		logger.Warn("API key not set, using mock embedding provider",
			zap.String("env", cfg.Provider.APIKeyEnv))
		embedder = embedding.NewMockProvider(cfg.Provider.EmbeddingDimensions)
	} else {
		embedClient, err := embedding.NewClient(embedding.Config{
			APIKey:     apiKey,
			BaseURL:    cfg.Provider.BaseURL,
			Model:      cfg.Provider.EmbeddingModel,
			Dimensions: cfg.Provider.EmbeddingDimensions,
			Timeout:    providerTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
		}
		embedder = embedClient

		answerClient, err := answer.NewClient(answer.Config{
			APIKey:      apiKey,
			BaseURL:     cfg.Provider.BaseURL,
			Model:       cfg.Provider.ChatModel,
			MaxTokens:   cfg.Provider.AnswerMaxTokens,
			Temperature: cfg.Provider.AnswerTemperature,
			Timeout:     providerTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize answer provider: %w", err)
		}
		answerer = answerClient
	}

	pipeline := ingest.NewPipeline(store, embedder, logger,
		ingest.WithEmbedTimeout(providerTimeout))
	engine := retrieval.NewEngine(store, embedder, answerer, &cfg.Retrieval, providerTimeout, logger)

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Answerer: answerer,
		Engine:   engine,
		Pipeline: pipeline,
	}, nil
}

func printUsage() {
	fmt.Println(`corpora - Organization-scoped document retrieval and question answering

Usage:
  corpora server [flags]                       Start the HTTP server
  corpora query --org <org-id> <question>      Ask a question against an organization
  corpora status [flags]                       Show document and organization counts
  corpora version                              Show version
  corpora help                                 Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/corpora/config.yaml)
  --debug            Enable debug logging

Query Flags:
  --server string    Server URL (default: http://localhost:8080)
  --org string       Organization ID (required)
  --top-k int        Max documents used for the answer (0 = server default)
  --output string    Output format: text or json (default: text)

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  corpora server
  corpora query --org 4f2c... "what is the remote work policy?"
  corpora query --org 4f2c... --output json "onboarding checklist"
  corpora status`)
}
