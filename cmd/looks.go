package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/database/postgres"
	"github.com/stylemirror/stylemirror/internal/embedding"
)

var looksCmd = &cobra.Command{
	Use:   "looks",
	Short: "Browse the saved look history",
	Long:  `Browse and search generated looks saved in PostgreSQL. Requires DATABASE_URL.`,
}

var looksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved looks, newest first",
	RunE:  runLooksList,
}

var looksSimilarCmd = &cobra.Command{
	Use:   "similar [look-id]",
	Short: "Find looks similar to a saved look, a local image or a text query",
	Long: `Find visually similar looks using cosine distance on embeddings.
Lower distance values indicate more similar looks.

Examples:
  # Similar to a saved look
  stylemirror looks similar 2f1c9a60-8d7e-4c11-9f0d-3a5b6c7d8e9f

  # Similar to a local image (requires EMBEDDING_URL)
  stylemirror looks similar --image outfit.jpg

  # Similar to a text description (requires EMBEDDING_URL)
  stylemirror looks similar --text "red leather jacket"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLooksSimilar,
}

func init() {
	rootCmd.AddCommand(looksCmd)
	looksCmd.AddCommand(looksListCmd)
	looksCmd.AddCommand(looksSimilarCmd)

	looksListCmd.Flags().Int("limit", constants.DefaultSearchLimit, "Maximum number of results")
	looksListCmd.Flags().Bool("json", false, "Output as JSON")

	looksSimilarCmd.Flags().String("image", "", "Find looks similar to this local image")
	looksSimilarCmd.Flags().String("text", "", "Find looks similar to this text description")
	looksSimilarCmd.Flags().Int("limit", constants.DefaultSearchLimit, "Maximum number of results")
	looksSimilarCmd.Flags().Bool("json", false, "Output as JSON")
}

// openLookRepository connects to PostgreSQL for the look subcommands.
func openLookRepository(cfg *config.Config) (*postgres.LookRepository, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return postgres.NewLookRepository(postgres.GetGlobalPool()), nil
}

func runLooksList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	repo, err := openLookRepository(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	looks, err := repo.List(ctx, mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("listing looks: %w", err)
	}

	if mustGetBool(cmd, "json") {
		type lookRow struct {
			ID        string    `json:"id"`
			SessionID string    `json:"session_id"`
			Kind      string    `json:"kind"`
			Prompt    string    `json:"prompt"`
			CreatedAt time.Time `json:"created_at"`
		}
		rows := make([]lookRow, len(looks))
		for i, look := range looks {
			rows[i] = lookRow{look.ID, look.SessionID, look.Kind, look.Prompt, look.CreatedAt}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCREATED\tPROMPT")
	for _, look := range looks {
		prompt := look.Prompt
		if len(prompt) > 60 {
			prompt = prompt[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", look.ID, look.Kind, look.CreatedAt.Format("2006-01-02 15:04"), prompt)
	}
	return w.Flush()
}

// resolveQueryEmbedding builds the query vector from a look id, a local
// image or a text description.
func resolveQueryEmbedding(ctx context.Context, cmd *cobra.Command, args []string, cfg *config.Config, repo *postgres.LookRepository) ([]float32, error) {
	imagePath := mustGetString(cmd, "image")
	text := mustGetString(cmd, "text")

	if len(args) == 1 {
		look, err := repo.Get(ctx, args[0])
		if err != nil {
			return nil, fmt.Errorf("loading look: %w", err)
		}
		if look == nil {
			return nil, fmt.Errorf("look %s not found", args[0])
		}
		if len(look.Embedding) == 0 {
			return nil, fmt.Errorf("look %s has no embedding", args[0])
		}
		return look.Embedding, nil
	}

	if imagePath == "" && text == "" {
		return nil, errors.New("provide a look id, --image or --text")
	}
	if cfg.Embedding.URL == "" {
		return nil, errors.New("EMBEDDING_URL environment variable is required for --image and --text queries")
	}
	client := embedding.NewClient(cfg.Embedding.URL)

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		return client.EmbedImage(ctx, data)
	}
	return client.EmbedText(ctx, text)
}

func runLooksSimilar(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	repo, err := openLookRepository(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	query, err := resolveQueryEmbedding(ctx, cmd, args, cfg, repo)
	if err != nil {
		return err
	}

	matches, err := repo.FindSimilar(ctx, query, mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("searching looks: %w", err)
	}

	if mustGetBool(cmd, "json") {
		type matchRow struct {
			ID       string  `json:"id"`
			Kind     string  `json:"kind"`
			Prompt   string  `json:"prompt"`
			Distance float64 `json:"distance"`
		}
		rows := make([]matchRow, len(matches))
		for i, m := range matches {
			rows[i] = matchRow{m.Look.ID, m.Look.Kind, m.Look.Prompt, m.Distance}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tDISTANCE\tPROMPT")
	for _, m := range matches {
		prompt := m.Look.Prompt
		if len(prompt) > 50 {
			prompt = prompt[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%s\n", m.Look.ID, m.Look.Kind, m.Distance, prompt)
	}
	return w.Flush()
}
