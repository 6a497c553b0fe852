package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/markers"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
)

// markersCmd represents the markers command.
var markersCmd = &cobra.Command{
	Use:   "markers [pdf-file]",
	Short: "Match shape instances against nearby annotation text",
	Long: `Extract the positioned text blocks of every page and match each shape
instance against the nearest block. Instances with readable text within the
distance threshold are flagged as annotation markers; their definitions get
a semantic label.

The artifact is updated in place unless --output names a different path.

Examples:
  pdfcad markers drawing.pdf --shapes shapes.json
  pdfcad markers drawing.pdf --shapes shapes.json --threshold 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		shapesPath, _ := cmd.Flags().GetString("shapes")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = shapesPath
		}
		threshold := cfg.Markers.Threshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetFloat64("threshold")
		}

		doc, err := document.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open PDF: %w", err)
		}

		artifact, err := pipeline.LoadArtifact(shapesPath)
		if err != nil {
			return fmt.Errorf("failed to load artifact: %w", err)
		}

		detector := markers.NewDetector(threshold, nil)
		stats, err := detector.Detect(doc, artifact)
		if err != nil {
			return fmt.Errorf("marker detection failed: %w", err)
		}

		if err := pipeline.WriteArtifact(output, artifact); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Matched %d of %d instances against %d text blocks\n",
			stats.Markers, stats.Instances, stats.TextBlocks)
		fmt.Fprintf(cmd.OutOrStdout(), "Artifact written to %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)
	markersCmd.Flags().StringP("shapes", "s", "shapes.json", "artifact path from analyze")
	markersCmd.Flags().StringP("output", "o", "", "output artifact path (default: overwrite --shapes)")
	markersCmd.Flags().Float64("threshold", markers.DefaultThreshold,
		"maximum center-to-text distance in page units")
}
