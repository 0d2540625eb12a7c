package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awb-extractor",
		Short: "Air Waybill data extraction tool powered by vision LLMs",
		Long: `awb-extractor reads an Air Waybill PDF, rasterizes its first page, and asks
a vision-capable LLM (Gemini, OpenAI, or Ollama) to extract the document's
fields as structured data.

Run 'serve' for the single-page web interface, or 'extract' for a one-shot
run against a local file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExtractCmd())

	return cmd
}
