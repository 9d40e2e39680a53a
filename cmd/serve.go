package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/database/postgres"
	"github.com/stylemirror/stylemirror/internal/embedding"
	"github.com/stylemirror/stylemirror/internal/faces"
	"github.com/stylemirror/stylemirror/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the StyleMirror web server.
The web server provides a browser-based styling mirror: capture or upload
a photo, generate hairstyle, outfit, background and palette edits, and
request structured critiques. Look history requires DATABASE_URL.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (defaults to WEB_SESSION_SECRET)")
}

// buildCritic picks the critique backend. The image stylist doubles as the
// critic unless STYLIST_CRITIC selects OpenAI.
func buildCritic(cfg *config.Config, stylist ai.Stylist) (ai.Critic, error) {
	switch cfg.Critic {
	case "", "gemini":
		return stylist, nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required when STYLIST_CRITIC=openai")
		}
		return ai.NewOpenAICritic(cfg.OpenAI.Token), nil
	default:
		return nil, fmt.Errorf("unknown STYLIST_CRITIC value %q (want gemini or openai)", cfg.Critic)
	}
}

// initLookStorage connects to PostgreSQL and builds the look HNSW index.
// Returns nil repositories when DATABASE_URL is unset.
func initLookStorage(ctx context.Context, cfg *config.Config) (*postgres.LookRepository, *postgres.SessionRepository, error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, look history disabled")
		return nil, nil, nil
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	pool := postgres.GetGlobalPool()
	lookRepo := postgres.NewLookRepository(pool)

	fmt.Printf("Building in-memory HNSW index for look similarity...\n")
	if err := lookRepo.EnableHNSW(ctx); err != nil {
		fmt.Printf("Warning: failed to build look HNSW index: %v\n", err)
		fmt.Printf("Similar-look search will use PostgreSQL queries (slower)\n")
	} else {
		fmt.Printf("Look HNSW index built with %d looks (in-memory only)\n", lookRepo.IndexCount())
	}

	sessionRepo := postgres.NewSessionRepository(pool)
	fmt.Println("Session persistence enabled (PostgreSQL)")
	return lookRepo, sessionRepo, nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	sessionSecret := mustGetString(cmd, "session-secret")

	if sessionSecret == "" {
		sessionSecret = os.Getenv("WEB_SESSION_SECRET")
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host, sessionSecret
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	provider, err := ai.NewGeminiProvider(ctx, &cfg.Gemini)
	if err != nil {
		return fmt.Errorf("creating Gemini provider: %w", err)
	}
	fmt.Printf("Using %s for image generation\n", provider.Name())

	critic, err := buildCritic(cfg, provider)
	if err != nil {
		return err
	}
	fmt.Printf("Using %s for style critiques\n", critic.Name())

	deps := web.Deps{
		Stylist: provider,
		Critic:  critic,
	}

	if cfg.Detector.URL != "" {
		deps.Detector = faces.NewDetector(cfg.Detector.URL)
		fmt.Printf("Face detection enabled (%s)\n", cfg.Detector.URL)
	} else {
		fmt.Println("DETECTOR_URL not set, face gating disabled for live sessions")
	}

	if cfg.Embedding.URL != "" {
		deps.Embedder = embedding.NewClient(cfg.Embedding.URL)
		fmt.Printf("Look embeddings enabled (%s)\n", cfg.Embedding.URL)
	}

	lookRepo, sessionRepo, err := initLookStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if lookRepo != nil {
		deps.Looks = lookRepo
		deps.SessionRepo = sessionRepo
	}

	port, host, sessionSecret := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, sessionSecret, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting StyleMirror on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
