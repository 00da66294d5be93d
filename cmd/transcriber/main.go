package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tweet-scraper/pkg/config"
	"tweet-scraper/pkg/transcriber"
)

func printSummary(title string, sum transcriber.Summary) {
	color.New(color.Bold).Println("\n" + title)
	color.Green("  Successful: %d", sum.Successful)
	fmt.Printf("  Skipped:    %d\n", sum.Skipped)
	if sum.Failed > 0 {
		color.Red("  Failed:     %d", sum.Failed)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "transcriber",
		Short:         "Extract audio from downloaded videos and transcribe it",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file")

	root.AddCommand(newExtractAudioCmd(&configPath))
	root.AddCommand(newTranscribeCmd(&configPath))
	return root
}

func newExtractAudioCmd(configPath *string) *cobra.Command {
	var (
		outputDir   string
		noSkip      bool
		cleanAudio  bool
		trimSilence bool
	)

	cmd := &cobra.Command{
		Use:   "extract-audio <video-file-or-dir>",
		Short: "Extract voice WAV files from downloaded videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("clean-audio") {
				cfg.Transcription.CleanAudio = cleanAudio
			}
			if cmd.Flags().Changed("trim-silence") {
				cfg.Transcription.TrimSilence = trimSilence
			}

			ffmpeg, err := transcriber.NewFFmpeg()
			if err != nil {
				return err
			}

			svc := transcriber.NewService(ffmpeg, nil, transcriber.Options{
				CleanAudio:   cfg.Transcription.CleanAudio,
				TrimSilence:  cfg.Transcription.TrimSilence,
				SkipExisting: !noSkip,
			})

			sum, err := svc.ExtractAudio(context.Background(), args[0], outputDir)
			if err != nil {
				return err
			}
			printSummary("Audio extraction complete", sum)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to each video's directory)")
	cmd.Flags().BoolVar(&noSkip, "no-skip", false, "Re-extract even when the voice file already exists")
	cmd.Flags().BoolVar(&cleanAudio, "clean-audio", true, "Apply noise reduction and loudness normalization")
	cmd.Flags().BoolVar(&trimSilence, "trim-silence", true, "Strip leading and trailing silence")
	return cmd
}

func newTranscribeCmd(configPath *string) *cobra.Command {
	var (
		updateJSON  bool
		outputDir   string
		noSkip      bool
		model       string
		prompt      string
		temperature float64
		language    string
		timestamps  bool
		noClean     bool
		noTrim      bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file-or-dir>",
		Short: "Transcribe voice files and save subtitles or update sidecars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Transcription.APIKey == "" {
				return errors.New("transcription api key not configured (set OPENAI_API_KEY)")
			}

			opts := transcriber.Options{
				Model:        cfg.Transcription.Model,
				Prompt:       cfg.Transcription.Prompt,
				Temperature:  cfg.Transcription.Temperature,
				Language:     cfg.Transcription.Language,
				CleanAudio:   cfg.Transcription.CleanAudio && !noClean,
				TrimSilence:  cfg.Transcription.TrimSilence && !noTrim,
				SkipExisting: !noSkip,
				Timestamps:   timestamps,
			}
			if model != "" {
				opts.Model = model
			}
			if prompt != "" {
				opts.Prompt = prompt
			}
			if cmd.Flags().Changed("temperature") {
				opts.Temperature = &temperature
			}
			if language != "" {
				opts.Language = language
			}

			ffmpeg, err := transcriber.NewFFmpeg()
			if err != nil {
				return err
			}
			client := transcriber.NewOpenAIClient(cfg.Transcription.APIKey)

			svc := transcriber.NewService(ffmpeg, client, opts)
			sum, err := svc.TranscribeAll(context.Background(), args[0], outputDir, updateJSON)
			if err != nil {
				return err
			}
			printSummary("Transcription complete", sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&updateJSON, "update-json", false, "Merge transcripts into the matching tweet sidecars")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for subtitle files (defaults to each audio file's directory)")
	cmd.Flags().BoolVar(&noSkip, "no-skip", false, "Re-transcribe even when a transcript already exists")
	cmd.Flags().StringVar(&model, "model", "", "Transcription model (default "+transcriber.DefaultModel+")")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Context prompt passed to the transcription model")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().StringVar(&language, "language", "", "Spoken language hint (ISO 639-1)")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Request segment-level timestamps")
	cmd.Flags().BoolVar(&noClean, "no-clean-audio", false, "Skip noise reduction before upload")
	cmd.Flags().BoolVar(&noTrim, "no-trim-silence", false, "Skip silence trimming before upload")
	return cmd
}
