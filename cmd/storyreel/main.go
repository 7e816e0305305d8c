// Command storyreel turns raw text into a narrated slideshow video.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storyreel/analyze"
	"storyreel/config"
	"storyreel/llm"
	"storyreel/pipeline"
	"storyreel/publish"
	"storyreel/render"
	"storyreel/script"
	"storyreel/speech"
	"storyreel/storage"
	"storyreel/types"
	"storyreel/videostore"
	"storyreel/visuals"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "storyreel",
		Short:         "Generate narrated slideshow videos from raw text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults apply when omitted)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newGenerateCmd(&configPath, &verbose))
	root.AddCommand(newVideosCmd(&configPath, &verbose))
	return root
}

func newGenerateCmd(configPath *string, verbose *bool) *cobra.Command {
	var (
		text   string
		file   string
		aspect string
		owner  string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline for one text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			raw := text
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read input file: %w", err)
				}
				raw = string(data)
			}

			if err := cfg.Credentials.Validate(); err != nil {
				return err
			}

			orch, store, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}

			res, err := orch.Run(cmd.Context(), types.GenerationRequest{
				RawText:     raw,
				AspectRatio: types.AspectRatio(aspect),
				OwnerID:     owner,
			})
			if err != nil {
				return err
			}

			if cfg.Publish.Enabled {
				pub, err := publish.New(cfg.Publish, cfg.Credentials, store, logger)
				if err != nil {
					return err
				}
				if _, _, err := pub.Run(cmd.Context(), res.Video, title, res.Script); err != nil {
					return err
				}
			}

			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "raw text to narrate")
	cmd.Flags().StringVar(&file, "file", "", "read the raw text from a file instead")
	cmd.Flags().StringVar(&aspect, "aspect", string(types.AspectLandscape), "aspect ratio: 16:9, 9:16, or 1:1")
	cmd.Flags().StringVar(&owner, "owner", "", "owner id recorded with the video")
	cmd.Flags().StringVar(&title, "title", "Generated story", "title used when publishing is enabled")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	return cmd
}

func newVideosCmd(configPath *string, verbose *bool) *cobra.Command {
	videos := &cobra.Command{
		Use:   "videos",
		Short: "Inspect generated videos",
	}

	var owner string
	list := &cobra.Command{
		Use:   "list",
		Short: "List generated videos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath, *verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := videostore.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			records, err := store.ListVideos(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	list.Flags().StringVar(&owner, "owner", "", "restrict to one owner id")

	videos.AddCommand(list)
	return videos
}

// setup loads .env, the config file, and the logger shared by every command.
func setup(configPath string, verbose bool) (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		cfg = config.Default()
	}
	cfg.Credentials = config.LoadCredentials()

	logger, err := newLogger(verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildPipeline wires every stage implementation into one orchestrator.
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Orchestrator, *storage.Client, error) {
	creds := cfg.Credentials
	store := storage.New(creds.SupabaseURL, creds.SupabaseKey, cfg.Storage.Bucket, logger)

	completer := llm.New(llm.Config{
		APIKey:        creds.OpenAIKey,
		Model:         cfg.Generation.Model,
		Temperature:   cfg.Generation.Temperature,
		MaxTokens:     cfg.Generation.MaxTokens,
		Timeout:       cfg.CallTimeout(),
		RetryAttempts: cfg.Generation.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Generation.RetryDelaySec * float64(time.Second)),
	}, logger)

	synth, err := speech.NewSynthesizer(cfg.Speech, creds.ElevenLabsKey, creds.ElevenLabsVoice, store, logger)
	if err != nil {
		return nil, nil, err
	}

	videos, err := videostore.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	deps := pipeline.Deps{
		Styler:      analyze.NewStyler(completer, logger),
		Elements:    analyze.NewExtractor(completer, analyze.UUIDGenerator{}, logger),
		Script:      script.New(completer, logger),
		Synthesizer: synth,
		Transcriber: speech.NewTranscriber(creds.OpenAIKey, cfg.Speech.WhisperModel, logger),
		Planner:     visuals.NewPlanner(completer, logger),
		Images:      visuals.NewGenerator(creds.StabilityKey, store, logger),
		Assembler:   render.New(cfg.Video, cfg.ConvertTimeout(), store, logger),
		Videos:      videos,
	}
	return pipeline.New(cfg, deps, logger), store, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
