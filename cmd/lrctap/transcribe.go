package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"mkowalczyk.dev/lrctap/internal/config"
	"mkowalczyk.dev/lrctap/internal/lrc"
	"mkowalczyk.dev/lrctap/internal/transcribe"
)

var (
	// flags for transcribe
	transcribeForce    bool
	transcribeModel    string
	transcribeLanguage string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>...",
	Short: "draft lyrics from the audio itself",
	Long: `send audio files to a whisper-compatible transcription backend and write
the result as a draft .lrc file next to each one.

the segment timing from the model is rough, so the draft is meant as a
starting point for the editor, not a finished sync. existing .lrc files
are left alone unless --force is given.

the backend needs an api key in LRCTAP_TRANSCRIBE_KEY or OPENAI_API_KEY.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		key := config.TranscribeKey()
		if key == "" {
			return errors.New("no api key: set LRCTAP_TRANSCRIBE_KEY or OPENAI_API_KEY")
		}

		model := cfg.Transcribe.Model
		if transcribeModel != "" {
			model = transcribeModel
		}
		language := cfg.Transcribe.Language
		if transcribeLanguage != "" {
			language = transcribeLanguage
		}

		backend := transcribe.NewOpenAIBackend(cfg.Transcribe.BaseURL, key, model, language)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		written, skipped := 0, 0
		for _, audioPath := range args {
			if err := ctx.Err(); err != nil {
				return err
			}

			target := lrc.PathForAudio(audioPath)
			if _, err := os.Stat(target); err == nil && !transcribeForce {
				fmt.Printf("skipping %s: %s exists (use --force to overwrite)\n",
					filepath.Base(audioPath), filepath.Base(target))
				skipped++
				continue
			}

			fmt.Printf("transcribing %s...\n", filepath.Base(audioPath))

			transcript, err := backend.Transcribe(ctx, audioPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", filepath.Base(audioPath), err)
				continue
			}

			draft := transcribe.DraftLRC(transcript)
			if draft == "" {
				fmt.Fprintf(os.Stderr, "warning: %s: backend returned no segments\n", filepath.Base(audioPath))
				continue
			}

			if err := os.WriteFile(target, []byte(draft), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not write %s: %v\n", target, err)
				continue
			}

			doc, _ := lrc.Load(target)
			fmt.Printf("wrote %s (%d lines)\n", target, doc.Len())
			written++
		}

		if written == 0 {
			if skipped == len(args) {
				return nil
			}
			return fmt.Errorf("no drafts written")
		}

		fmt.Printf("\ntranscribed %d of %d file(s); open the editor to fix the timing\n", written, len(args))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().BoolVar(&transcribeForce, "force", false, "overwrite an existing .lrc file")
	transcribeCmd.Flags().StringVar(&transcribeModel, "model", "", "transcription model to request")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "hint the spoken language (iso-639-1)")
}
