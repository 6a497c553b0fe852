package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [pdf-file]",
	Short: "Extract and deduplicate vector shapes from a PDF",
	Long: `Scan every page of a PDF for q/cm wrapped vector fragments, count
identical bodies across the whole document, keep the ones that repeat and
record every placed occurrence with its transform and local bounding box.

The result is written as a JSON artifact consumed by the markers, crop,
caption and visualize commands.

Examples:
  pdfcad analyze drawing.pdf
  pdfcad analyze drawing.pdf --output shapes.json
  pdfcad analyze drawing.pdf --palette-seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		output := cfg.Analyze.Output
		if cmd.Flags().Changed("output") {
			output, _ = cmd.Flags().GetString("output")
		}
		paletteSeed := cfg.Analyze.PaletteSeed
		if cmd.Flags().Changed("palette-seed") {
			paletteSeed, _ = cmd.Flags().GetInt64("palette-seed")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		doc, err := document.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open PDF: %w", err)
		}

		palette := shapes.NewDistinctPalette()
		if paletteSeed != 0 {
			palette = palette.WithSeed(paletteSeed)
		}

		var progress pipeline.ProgressCallback
		if !quiet {
			progress = pipeline.NewConsoleProgressCallback(cmd.OutOrStdout(), "Analyzing pages")
		}

		p := pipeline.New(pipeline.Options{Palette: palette, Progress: progress})
		artifact, stats, err := p.Analyze(doc)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if err := pipeline.WriteArtifact(output, artifact); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Analyzed %d pages: %d unique shapes, %d instances (%d fragments, %d without geometry)\n",
			stats.Pages, stats.UniqueShapes, stats.Instances, stats.Fragments, stats.SkippedNoGeometry)
		fmt.Fprintf(cmd.OutOrStdout(), "Artifact written to %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("output", "o", "shapes.json", "output artifact path")
	analyzeCmd.Flags().Int64("palette-seed", 0, "fix the shape color permutation (0 = random)")
	analyzeCmd.Flags().Bool("quiet", false, "suppress the progress display")
}
