// Package main is the codectx CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/cli"
	"github.com/hyperjump/codectx/internal/config"
	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/indexer"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/provider"
	"github.com/hyperjump/codectx/internal/search"
	"github.com/hyperjump/codectx/internal/server"
	"github.com/hyperjump/codectx/internal/storage"
	"github.com/hyperjump/codectx/internal/vector"
	"github.com/hyperjump/codectx/pkg/utils"
)

var version = "dev"

// loadConfig resolves the config file. An explicit path must exist. Without one,
// config.yaml in the current directory is tried, then ~/.codectx/config.yaml, and
// finally the built-in defaults. Returns the config and the path that was loaded
// ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	for _, candidate := range configCandidates() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cfg, err := config.Load(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}
	return config.Default(), "", nil
}

func configCandidates() []string {
	var out []string
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".codectx", "config.yaml"))
	}
	return out
}

// errUsage reports that usage text has already been printed.
var errUsage = errors.New("invalid usage")

func main() {
	// .env is optional; it only supplies API keys and similar environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// run dispatches a subcommand. Every command returns here so deferred cleanup
// runs before the process exits.
func run(command string, args []string) error {
	switch command {
	case "server":
		return runServer(args)
	case "load":
		return runLoad(args)
	case "search":
		return runSearch(args)
	case "ask":
		return runAsk(args)
	case "clear":
		return runClear(args)
	case "status":
		return runStatus(args)
	case "models":
		return runModels(args)
	case "version", "--version", "-v":
		fmt.Printf("codectx version %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		return errUsage
	}
}

// commonFlags are shared by every subcommand that touches the store.
type commonFlags struct {
	configPath *string
	serverURL  *string
	output     *string
	debug      *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "config file path (default: ./config.yaml, then ~/.codectx/config.yaml)"),
		serverURL:  fs.String("server", "", "server URL; when set the command goes through the HTTP API instead of opening the store"),
		output:     fs.String("output", "text", "output format: text, compact or json"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// openLocal loads config, builds a CLI logger and initializes components.
// The caller owns the returned components and must Close them.
func openLocal(f commonFlags) (*config.Config, *Components, error) {
	cfg, _, err := loadConfig(*f.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || *f.debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return cfg, components, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	port := fs.Int("port", 0, "listen port (overrides config)")
	_ = fs.Parse(args)

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize components", zap.Error(err))
		return err
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Indexer, &cfg.Server, cfg.Embedding.Provider, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signalContext()
	defer stop()
	select {
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	f := addCommonFlags(fs)
	dir := fs.String("dir", "", "directory to walk for source files")
	_ = fs.Parse(reorderArgs(fs, args))
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return err
	}

	req := &models.LoadRequest{Directory: absPath(*dir)}
	for _, p := range fs.Args() {
		req.Paths = append(req.Paths, absPath(p))
	}
	if len(req.Paths) == 0 && req.Directory == "" {
		fmt.Println("Usage: codectx load [flags] <file-or-directory>... | --dir <directory>")
		return errUsage
	}

	var resp models.LoadResponse
	if *f.serverURL != "" {
		if err := postJSON(*f.serverURL+"/api/v1/chunks", req, &resp); err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
	} else {
		_, components, err := openLocal(f)
		if err != nil {
			return err
		}
		defer components.Close()
		ctx, cancel := signalContext()
		defer cancel()
		resp = *components.Indexer.Index(ctx, req)
		if err := components.Store.PersistErr(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: store could not be saved: %v\n", err)
		}
	}
	return cli.WriteLoadResponse(os.Stdout, &resp, format)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	f := addCommonFlags(fs)
	topK := fs.Int("top-k", 0, "number of results (default from config)")
	minScore := fs.Float64("min-score", 0, "drop results scoring below this cosine similarity")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: codectx search [flags] <query>\n\nQuery is all remaining arguments joined by spaces.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(reorderArgs(fs, args))
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return err
	}

	queryStr := joinArgs(fs.Args())
	if queryStr == "" {
		fs.Usage()
		return errUsage
	}
	query := &models.SearchQuery{Query: queryStr, TopK: *topK, MinScore: *minScore}

	var resp *models.SearchResponse
	if *f.serverURL != "" {
		resp = &models.SearchResponse{}
		if err := postJSON(*f.serverURL+"/api/v1/search", query, resp); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	} else {
		_, components, err := openLocal(f)
		if err != nil {
			return err
		}
		defer components.Close()
		ctx, cancel := signalContext()
		defer cancel()
		resp, err = components.Engine.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	}
	return cli.WriteSearchResults(os.Stdout, resp, format)
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	f := addCommonFlags(fs)
	topK := fs.Int("top-k", 0, "number of context files (default from config)")
	noContext := fs.Bool("no-context", false, "send the question without retrieved code")
	showPrompt := fs.Bool("show-prompt", false, "print the prompt sent to the provider to stderr")
	_ = fs.Parse(reorderArgs(fs, args))
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return err
	}

	question := joinArgs(fs.Args())
	if question == "" {
		fmt.Println("Usage: codectx ask [flags] <question>")
		return errUsage
	}
	req := &models.AskRequest{Question: question, TopK: *topK, NoContext: *noContext}

	var resp *models.AskResponse
	if *f.serverURL != "" {
		resp = &models.AskResponse{}
		if err := postJSON(*f.serverURL+"/api/v1/ask", req, resp); err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
	} else {
		_, components, err := openLocal(f)
		if err != nil {
			return err
		}
		defer components.Close()
		ctx, cancel := signalContext()
		defer cancel()
		resp, err = components.Engine.Ask(ctx, req)
		if errors.Is(err, search.ErrNoProvider) {
			return fmt.Errorf("ask failed: %w (set provider.kind in the config)", err)
		}
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		if *showPrompt {
			fmt.Fprintf(os.Stderr, "%s\n\n", resp.Prompt)
		}
	}
	return cli.WriteAskResponse(os.Stdout, resp, format)
}

func runClear(args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	f := addCommonFlags(fs)
	_ = fs.Parse(args)

	if *f.serverURL != "" {
		var out map[string]interface{}
		if err := doJSON(http.MethodDelete, *f.serverURL+"/api/v1/chunks", nil, &out); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}
		fmt.Printf("Cleared %v chunks\n", out["removed"])
		return nil
	}
	_, components, err := openLocal(f)
	if err != nil {
		return err
	}
	defer components.Close()
	removed := components.Store.Len()
	components.Store.Clear(context.Background())
	if err := components.Store.PersistErr(); err != nil {
		return fmt.Errorf("clear failed to save: %w", err)
	}
	fmt.Printf("Cleared %d chunks\n", removed)
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	f := addCommonFlags(fs)
	_ = fs.Parse(args)
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return err
	}

	var status *models.StatusResponse
	if *f.serverURL != "" {
		status = &models.StatusResponse{}
		if err := doJSON(http.MethodGet, *f.serverURL+"/api/v1/status", nil, status); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
	} else {
		cfg, components, err := openLocal(f)
		if err != nil {
			return err
		}
		defer components.Close()
		status = components.Store.Status()
		status.Embedder = cfg.Embedding.Provider
		if p := components.Engine.Provider(); p != nil {
			status.Provider = string(p.Kind()) + "/" + p.Model()
		}
	}
	return cli.WriteStatus(os.Stdout, status, format)
}

func runModels(args []string) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	f := addCommonFlags(fs)
	_ = fs.Parse(args)
	format, err := cli.ParseOutputFormat(*f.output)
	if err != nil {
		return err
	}

	var list []provider.Model
	if *f.serverURL != "" {
		var out struct {
			Models []provider.Model `json:"models"`
		}
		if err := doJSON(http.MethodGet, *f.serverURL+"/api/v1/models", nil, &out); err != nil {
			return fmt.Errorf("models failed: %w", err)
		}
		list = out.Models
	} else {
		_, components, err := openLocal(f)
		if err != nil {
			return err
		}
		defer components.Close()
		list, err = components.Engine.Models(context.Background())
		if err != nil {
			return fmt.Errorf("models failed: %w", err)
		}
	}
	return cli.WriteModels(os.Stdout, list, format)
}

// joinArgs joins positional args with spaces so multi-word queries work the same
// with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves flags (with their values) ahead of the positional arguments so
// that fs.Parse sees them all; the flag package stops at the first non-flag argument.
// Positionals keep their relative order. Everything after "--" stays positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positionals = append(positionals, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue(fs, name) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positionals...)
}

// takesValue reports whether the named flag consumes the following argument.
// Unknown flags are left for fs.Parse to reject.
func takesValue(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		return false
	}
	return true
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func postJSON(url string, in, out interface{}) error {
	return doJSON(http.MethodPost, url, in, out)
}

// doJSON sends in as the JSON body (when non-nil) and decodes a 200 response into out.
func doJSON(method, url string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds the wired services a command needs.
type Components struct {
	Blobs    storage.BlobStore
	Embedder embedding.Embedder
	Store    *vector.Store
	Engine   *search.Engine
	Indexer  *indexer.Indexer
}

// Close releases the embedder and blob backend.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Blobs != nil {
		_ = c.Blobs.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.New(embedding.Options{
		Provider:   cfg.Embedding.Provider,
		ModelPath:  cfg.Embedding.ModelPath,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
		CacheTTL:   cfg.Embedding.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	if cfg.Embedding.Provider == embedding.ProviderMock {
		logger.Warn("mock embedder active: vectors are hash-derived and rankings carry no meaning; set embedding.provider to onnx or openai")
	}

	blobs, err := storage.New(ctx, storage.Options{
		Backend:      cfg.Storage.Backend,
		Root:         cfg.Storage.Root,
		DatabasePath: cfg.Storage.DatabasePath,
		S3: storage.S3Options{
			Endpoint:        cfg.Storage.S3.Endpoint,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			Prefix:          cfg.Storage.S3.Prefix,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			UsePathStyle:    cfg.Storage.S3.UsePathStyle,
		},
	})
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	store, err := vector.NewStore(ctx, blobs, cfg.Storage.BlobName, embedder,
		vector.WithLogger(logger),
		vector.WithWarnSize(cfg.Storage.WarnSizeBytes),
	)
	if err != nil {
		_ = embedder.Close()
		_ = blobs.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Debug("vector store loaded",
		zap.String("location", store.Location()),
		zap.Int("chunks", store.Len()),
	)

	var client provider.Client
	if cfg.Provider.Kind != "" {
		kind, err := provider.ParseKind(cfg.Provider.Kind)
		if err != nil {
			_ = embedder.Close()
			_ = blobs.Close()
			return nil, err
		}
		client, err = provider.New(provider.Config{
			Kind:        kind,
			APIKey:      cfg.Provider.APIKey,
			BaseURL:     cfg.Provider.BaseURL,
			Model:       cfg.Provider.Model,
			Temperature: cfg.Provider.Temperature,
		})
		if err != nil {
			_ = embedder.Close()
			_ = blobs.Close()
			return nil, fmt.Errorf("failed to initialize provider: %w", err)
		}
	}

	loader := indexer.NewLoader(embedder,
		indexer.WithLogger(logger),
		indexer.WithMaxFileSize(cfg.Ingest.MaxFileBytes),
	)
	idx := indexer.NewIndexer(loader, store, cfg.Ingest.Extensions, indexer.WithIndexerLogger(logger))
	engine := search.NewEngine(store, client, &cfg.Search, search.WithLogger(logger))

	return &Components{
		Blobs:    blobs,
		Embedder: embedder,
		Store:    store,
		Engine:   engine,
		Indexer:  idx,
	}, nil
}

func printUsage() {
	fmt.Println(`codectx - local code-context retrieval

Usage:
  codectx server [flags]              Start the HTTP server
  codectx load [flags] <path>...      Embed files (directories are walked) and add them to the store
  codectx search [flags] <query>      Find the files most similar to the query
  codectx ask [flags] <question>      Ask the chat provider, with matching files as context
  codectx clear [flags]               Remove every chunk from the store
  codectx status [flags]              Show store, embedder and provider status
  codectx models [flags]              List the chat provider's models
  codectx version                     Show version
  codectx help                        Show this help

Common Flags:
  --config string    Config file path (default: ./config.yaml, then ~/.codectx/config.yaml)
  --server string    Server URL, e.g. http://localhost:8765. Empty opens the store directly.
  --output string    Output format: text, compact or json (default: text)
  --debug            Enable debug logging

Server Flags:
  --port int         Listen port (overrides config)

Load Flags:
  --dir string       Directory to walk for source files

Search Flags:
  --top-k int        Number of results (default from config)
  --min-score float  Drop results below this cosine similarity

Ask Flags:
  --top-k int        Number of context files
  --no-context       Send the question without retrieved code
  --show-prompt      Print the prompt to stderr

Examples:
  codectx load ./internal
  codectx search "open the database connection"
  codectx search --output json --top-k 5 retry backoff
  codectx ask "how is the store persisted?"
  codectx status --output json`)
}
