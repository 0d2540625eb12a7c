package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aircargo-labs/awb-extractor/internal/config"
	"github.com/aircargo-labs/awb-extractor/internal/export"
	"github.com/aircargo-labs/awb-extractor/internal/extract"
	"github.com/aircargo-labs/awb-extractor/internal/rasterize"
	"github.com/aircargo-labs/awb-extractor/internal/render"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var (
		provider string
		model    string
		output   string
		showRaw  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <waybill.pdf>",
		Short: "Extract waybill data from a PDF on disk",
		Long: `Runs the extraction pipeline once against a local PDF and prints the
rendered waybill form. With --output the pretty-printed JSON record is also
written to a file named after the extracted waybill number.`,
		Example: `  # Extract and print
  awb-extractor extract shipment.pdf

  # Extract and save the JSON record next to the PDF
  awb-extractor extract shipment.pdf --output .`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if provider == "" {
				provider = cfg.Inference.Provider
			}
			if model == "" {
				model = cfg.Inference.Model
				if model == "" {
					model = config.DefaultModel(provider)
				}
			}

			pdf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ras := rasterize.New(rasterize.Config{
				Pdftoppm: cfg.Rasterize.Pdftoppm,
				DPI:      cfg.Rasterize.DPI,
				MaxWidth: cfg.Rasterize.MaxWidth,
			}, slog.Default())
			service := extract.NewService(ras, cfg.Inference.Temperature, slog.Default())

			ctx := cmd.Context()
			if cfg.Server.RequestTimeoutS > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Server.RequestTimeoutS)*time.Second)
				defer cancel()
			}

			result, err := service.Run(ctx, extract.Request{
				PDF:        pdf,
				Filename:   args[0],
				Credential: cfg.Credential(provider),
				Provider:   provider,
				Model:      model,
				ShowRaw:    showRaw,
				Export:     output != "",
			})
			if err != nil {
				// Surface the raw model text for manual inspection when the
				// reply could not be parsed.
				var runErr *extract.RunError
				if errors.As(err, &runErr) && runErr.RawText != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "--- raw model response ---")
					fmt.Fprintln(cmd.ErrOrStderr(), runErr.RawText)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), render.Build(result.Record).PlainText())
			fmt.Fprintf(cmd.OutOrStdout(), "Processing time: %.2fs\n", result.Elapsed.Seconds())

			if showRaw {
				data, err := result.Record.MarshalIndent()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "--- raw decoded record ---")
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}

			if output != "" {
				data, err := export.JSON(result.Record)
				if err != nil {
					return err
				}
				path := filepath.Join(output, export.Filename(result.Record, export.FormatJSON))
				if err := os.WriteFile(path, data, 0644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				slog.Info("export written", "path", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Inference provider: gemini, openai, or ollama")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider default when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory to write the JSON export into")
	cmd.Flags().BoolVar(&showRaw, "show-raw", false, "Print the raw decoded record after the form")

	return cmd
}
