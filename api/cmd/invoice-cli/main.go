package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"invoice-extractor/api/internal/config"
	"invoice-extractor/api/internal/extract"
	"invoice-extractor/api/internal/gemini"
	"invoice-extractor/api/internal/local"
)

// errReported marks a failure the session already printed.
var errReported = errors.New("extraction failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		output     string
		model      string
		listModels bool
	)
	cmd := &cobra.Command{
		Use:   "invoice-cli [image]",
		Short: "Extract invoice data from an image as JSON",
		Long: "Sends an invoice image to Gemini and prints the extracted JSON.\n" +
			"Without an image argument the paths are asked for interactively.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			key := config.APIKey()
			if key == "" {
				return errors.New("GOOGLE_API_KEY environment variable not set")
			}
			if model == "" {
				model = os.Getenv("GEMINI_MODEL")
			}
			engine := gemini.New(key, gemini.DefaultModelConfig(model))
			sess := local.NewSession(extract.New(engine, nil), cmd.OutOrStdout())
			sess.Output = output
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if listModels {
				if err := sess.ListModels(ctx, engine); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error listing models: %v\n", err)
				}
			}

			if len(args) == 1 {
				if _, err := sess.Run(ctx, args[0], output); err != nil {
					return fmt.Errorf("%w: %w", errReported, err)
				}
				return nil
			}

			p, err := local.NewReadlinePrompter()
			if err != nil {
				return err
			}
			defer p.Close()
			if _, err := sess.Interactive(ctx, p); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, readline.ErrInterrupt) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "save the JSON to this file")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Gemini model (default $GEMINI_MODEL or "+gemini.DefaultModel+")")
	cmd.Flags().BoolVar(&listModels, "list-models", false, "print models that support generateContent first")
	return cmd
}
