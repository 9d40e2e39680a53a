package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stylemirror/stylemirror/internal/ai"
	"github.com/stylemirror/stylemirror/internal/config"
	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/stylist"
)

var editCmd = &cobra.Command{
	Use:   "edit [image-file]",
	Short: "Run a single styling edit on an image file",
	Long: `Run one generation operation on a local image and write the result.

The operation kinds match the web API: hair, outfit, background, recolor.
Background changes take a free-text destination, recolor takes a palette
name from the catalog, hair and outfit optionally take an aesthetic.

Examples:
  # New hairstyle
  stylemirror edit photo.jpg --kind hair --output styled.png

  # Send the person somewhere else
  stylemirror edit photo.jpg --kind background --destination "a beach at sunset"

  # Recolor with a catalog palette
  stylemirror edit photo.jpg --kind recolor --palette "earth tones"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("kind", "", "Operation kind: hair, outfit, background, recolor")
	editCmd.Flags().String("destination", "", "Scene description for background changes")
	editCmd.Flags().String("aesthetic", "", "Aesthetic name from the catalog (hair and outfit)")
	editCmd.Flags().String("palette", "", "Palette name from the catalog (recolor)")
	editCmd.Flags().String("output", "styled.png", "Output file path")
	_ = editCmd.MarkFlagRequired("kind")
}

// resolveEditParams maps flag values onto generation parameters, resolving
// catalog names to descriptors the same way the web API does.
func resolveEditParams(cmd *cobra.Command, cfg *config.Config) (stylist.Params, error) {
	params := stylist.Params{
		Destination: mustGetString(cmd, "destination"),
	}

	if name := mustGetString(cmd, "aesthetic"); name != "" {
		found := false
		for _, a := range cfg.Styles.Aesthetics {
			if a.Name == name {
				params.Aesthetic = a.Descriptor
				found = true
				break
			}
		}
		if !found {
			return stylist.Params{}, fmt.Errorf("unknown aesthetic %q", name)
		}
	}

	if name := mustGetString(cmd, "palette"); name != "" {
		palette := cfg.Styles.FindPalette(name)
		if palette == nil {
			return stylist.Params{}, fmt.Errorf("unknown palette %q", name)
		}
		params.PaletteName = palette.Name
		params.PaletteDescriptor = palette.Descriptor
	}

	return params, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}

	kind := stylist.OperationKind(mustGetString(cmd, "kind"))
	if !stylist.ValidKind(kind) || kind == stylist.OpRefine {
		return fmt.Errorf("unknown operation kind %q", kind)
	}

	params, err := resolveEditParams(cmd, cfg)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	data, mimeType, err := ai.PrepareForModel(raw, constants.MaxImageSize)
	if err != nil {
		return fmt.Errorf("preparing image: %w", err)
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, &cfg.Gemini)
	if err != nil {
		return fmt.Errorf("creating Gemini provider: %w", err)
	}

	session := stylist.NewSession(false)
	session.SetSource(stylist.Image{Data: data, MimeType: mimeType})

	orchestrator := stylist.NewOrchestrator(provider, nil, nil)
	fmt.Printf("Generating %s edit...\n", kind)
	outcome, err := orchestrator.Generate(ctx, session, kind, params)
	if err != nil {
		return err
	}
	if !outcome.Applied {
		return errors.New("generation failed, see log output above")
	}

	result, ok := session.Current()
	if !ok {
		return errors.New("generation produced no image")
	}

	output := mustGetString(cmd, "output")
	if err := os.WriteFile(output, result.Data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	fmt.Printf("Wrote %s (%s, %d bytes)\n", output, result.MimeType, len(result.Data))
	if usage := provider.GetUsage(); usage != nil {
		fmt.Printf("Tokens: %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
	}
	return nil
}
