package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

var critiqueCmd = &cobra.Command{
	Use:   "critique [image-file]",
	Short: "Get a structured style critique for one image or a directory",
	Long: `Request a style critique from the configured critic model.

The critique is a structured review: a 0-100 score, a short headline,
the full review text and a list of improvement suggestions.

Examples:
  # Critique a single photo
  stylemirror critique photo.jpg

  # Critique every image in a directory
  stylemirror critique --dir ./photos

  # Output as JSON
  stylemirror critique --dir ./photos --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCritique,
}

func init() {
	rootCmd.AddCommand(critiqueCmd)

	critiqueCmd.Flags().String("dir", "", "Critique every image in this directory")
	critiqueCmd.Flags().Int("concurrency", constants.WorkerPoolSize, "Number of parallel critique requests")
	critiqueCmd.Flags().Bool("json", false, "Output as JSON")
}

// critiqueResult pairs a file with its critique or error for batch output.
type critiqueResult struct {
	File     string       `json:"file"`
	Critique *ai.Critique `json:"critique,omitempty"`
	Error    string       `json:"error,omitempty"`
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// critiqueFile reads, downscales and critiques a single image.
func critiqueFile(ctx context.Context, critic ai.Critic, path string) (*ai.Critique, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	data, mimeType, err := ai.PrepareForModel(raw, constants.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("preparing image: %w", err)
	}
	return critic.CritiqueStyle(ctx, data, mimeType, stylist.BuildCritiquePrompt())
}

func printCritique(c *ai.Critique) {
	fmt.Printf("Score: %d/100\n", c.Score)
	fmt.Printf("Title: %s\n\n", c.Title)
	fmt.Println(c.Critique)
	if len(c.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for i, s := range c.Suggestions {
			fmt.Printf("  %d. %s\n", i+1, s)
		}
	}
}

// runCritiqueBatch critiques every image in dir with a worker pool.
func runCritiqueBatch(ctx context.Context, critic ai.Critic, dir string, concurrency int, asJSON bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	fmt.Printf("Critiquing %d images...\n", len(files))
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Critiquing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := make([]critiqueResult, len(files))
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			critique, err := critiqueFile(ctx, critic, file)
			mu.Lock()
			results[i] = critiqueResult{File: file, Critique: critique}
			if err != nil {
				results[i].Error = err.Error()
			}
			mu.Unlock()
			bar.Add(1)
		}(i, file)
	}
	wg.Wait()
	fmt.Println()

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	// Best looks first, failures at the end.
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := -1, -1
		if results[i].Critique != nil {
			si = results[i].Critique.Score
		}
		if results[j].Critique != nil {
			sj = results[j].Critique.Score
		}
		return si > sj
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSCORE\tTITLE")
	for _, res := range results {
		if res.Error != "" {
			fmt.Fprintf(w, "%s\t-\t(%s)\n", filepath.Base(res.File), res.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", filepath.Base(res.File), res.Critique.Score, res.Critique.Title)
	}
	return w.Flush()
}

// buildStandaloneCritic builds the critic for CLI use, outside the server.
func buildStandaloneCritic(ctx context.Context, cfg *config.Config) (ai.Critic, error) {
	if cfg.Critic == "openai" {
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required when STYLIST_CRITIC=openai")
		}
		return ai.NewOpenAICritic(cfg.OpenAI.Token), nil
	}
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	return ai.NewGeminiProvider(ctx, &cfg.Gemini)
}

func runCritique(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dir := mustGetString(cmd, "dir")

	if dir == "" && len(args) == 0 {
		return errors.New("provide an image file or --dir")
	}

	ctx := context.Background()
	critic, err := buildStandaloneCritic(ctx, cfg)
	if err != nil {
		return err
	}

	if dir != "" {
		return runCritiqueBatch(ctx, critic, dir, mustGetInt(cmd, "concurrency"), mustGetBool(cmd, "json"))
	}

	critique, err := critiqueFile(ctx, critic, args[0])
	if err != nil {
		return err
	}
	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(critique)
	}
	printCritique(critique)
	return nil
}
