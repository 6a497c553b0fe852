package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/caption"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
)

// captionCmd represents the caption command.
var captionCmd = &cobra.Command{
	Use:   "caption",
	Short: "Caption crop images with an Ollama vision model",
	Long: `Send every instance's crop image to an Ollama-compatible vision model
and record the answer on the instance. Missing crops, model errors and
empty answers degrade to sentinel captions; the batch never aborts on a
single image.

The artifact is updated in place unless --output names a different path.

Examples:
  pdfcad caption --shapes shapes.json --crops-dir crops
  pdfcad caption --shapes shapes.json --model llava --url http://localhost:11434`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		shapesPath, _ := cmd.Flags().GetString("shapes")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = shapesPath
		}
		cropsDir := cfg.Caption.CropsDir
		if cmd.Flags().Changed("crops-dir") {
			cropsDir, _ = cmd.Flags().GetString("crops-dir")
		}
		url := cfg.Caption.URL
		if cmd.Flags().Changed("url") {
			url, _ = cmd.Flags().GetString("url")
		}
		model := cfg.Caption.Model
		if cmd.Flags().Changed("model") {
			model, _ = cmd.Flags().GetString("model")
		}
		prompt := cfg.Caption.Prompt
		if cmd.Flags().Changed("prompt") {
			prompt, _ = cmd.Flags().GetString("prompt")
		}

		artifact, err := pipeline.LoadArtifact(shapesPath)
		if err != nil {
			return fmt.Errorf("failed to load artifact: %w", err)
		}

		captioner := caption.NewOllamaCaptioner(url, model)
		if prompt != "" {
			captioner = captioner.WithPrompt(prompt)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := caption.NewRunner(captioner, cropsDir, nil)
		stats, err := runner.Run(ctx, artifact)
		if err != nil {
			return fmt.Errorf("captioning aborted: %w", err)
		}

		if err := pipeline.WriteArtifact(output, artifact); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Captioned %d of %d instances (%d missing crops, %d model errors)\n",
			stats.Captioned, stats.Instances, stats.Missing, stats.Errors)
		fmt.Fprintf(cmd.OutOrStdout(), "Artifact written to %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captionCmd)
	captionCmd.Flags().StringP("shapes", "s", "shapes.json", "artifact path from analyze")
	captionCmd.Flags().StringP("output", "o", "", "output artifact path (default: overwrite --shapes)")
	captionCmd.Flags().String("crops-dir", "crops", "directory with crop PNGs from the crop command")
	captionCmd.Flags().String("url", "http://localhost:11434", "Ollama base URL")
	captionCmd.Flags().String("model", "bakllava", "vision model name")
	captionCmd.Flags().String("prompt", "", "override the caption prompt")
}
