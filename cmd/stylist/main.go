package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dripmateapi/config"
	"dripmateapi/llm"
	"dripmateapi/logging"
	"dripmateapi/services"
	"dripmateapi/stylist"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	providerName string
	modelName    string
	logLevel     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "stylist",
		Short:        "Run DripMate outfit suggestions against a configured LLM provider",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "ollama, gemini or groq (defaults to DEFAULT_LLM)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "model override")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*llm.Registry, *zap.Logger, error) {
	cfg := config.LoadEnv()
	logger, err := logging.NewLogger(logLevel, "")
	if err != nil {
		return nil, nil, err
	}
	return llm.NewRegistry(ctx, cfg.LLM, logger), logger, nil
}

func resolve(registry *llm.Registry) (llm.Provider, error) {
	var kind llm.ProviderKind
	if providerName != "" {
		parsed, err := llm.ParseProviderKind(providerName)
		if err != nil {
			return nil, err
		}
		kind = parsed
	}
	return registry.Resolve(kind)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func suggestCmd() *cobra.Command {
	var (
		vibe     string
		gender   string
		ageGroup string
		skinTone string
		ideas    int
		details  string
		layering string
		schema   string
	)

	cmd := &cobra.Command{
		Use:   "suggest [item]",
		Short: "Suggest outfits built around one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ideas < 1 || ideas > 3 {
				return fmt.Errorf("--ideas must be between 1 and 3")
			}
			ctx := cmd.Context()
			registry, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer logger.Sync()
			provider, err := resolve(registry)
			if err != nil {
				return err
			}

			result := stylist.NewSuggester(provider, logger).Suggest(ctx, stylist.SuggestionRequest{
				Item:     args[0],
				Vibe:     vibe,
				Gender:   gender,
				AgeGroup: ageGroup,
				SkinTone: skinTone,
				NumIdeas: ideas,
				Details:  details,
				Layering: stylist.ParseLayering(layering),
				Schema:   stylist.ParseSchema(schema),
				Model:    modelName,
			})
			if result.Failed() {
				return result.Failure
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&vibe, "vibe", "casual", "desired vibe")
	cmd.Flags().StringVar(&gender, "gender", "", "gender")
	cmd.Flags().StringVar(&ageGroup, "age-group", "", "age group")
	cmd.Flags().StringVar(&skinTone, "skin-tone", "", "skin tone")
	cmd.Flags().IntVar(&ideas, "ideas", 1, "number of outfit ideas (1-3)")
	cmd.Flags().StringVar(&details, "details", "", "additional details")
	cmd.Flags().StringVar(&layering, "layering", "auto", "suggest, forbid or auto")
	cmd.Flags().StringVar(&schema, "schema", "typed", "typed or classic")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var (
		prompt     string
		detectOnly bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Describe a clothing photo and suggest outfits around it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, ok := services.MediaTypeForExtension(filepath.Ext(args[0]))
			if !ok {
				return fmt.Errorf("unsupported image type %q", filepath.Ext(args[0]))
			}
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}

			ctx := cmd.Context()
			registry, logger, err := setup(ctx)
			if err != nil {
				return err
			}
			defer logger.Sync()
			provider, err := resolve(registry)
			if err != nil {
				return err
			}

			analyzer := stylist.NewVisionAnalyzer(provider, logger)
			img := llm.Image{Path: args[0], MIMEType: mediaType}
			if detectOnly {
				return printJSON(analyzer.Analyze(ctx, img, modelName))
			}

			result := analyzer.OutfitsFromImage(ctx, stylist.ImageRequest{Image: img, Prompt: prompt, Model: modelName})
			if result.Failed() {
				printJSON(result.DetectedItem)
				return result.Failure
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "extra instructions for the outfit phase")
	cmd.Flags().BoolVar(&detectOnly, "detect-only", false, "only describe the item")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, logger, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()
			return printJSON(map[string]interface{}{
				"default_provider": registry.Default(),
				"providers":        registry.Describe(),
			})
		},
	}
}
