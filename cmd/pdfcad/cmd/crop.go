package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
	"github.com/wan-andrea/recover-pdfCAD/internal/render"
	"github.com/wan-andrea/recover-pdfCAD/internal/viewport"
)

// cropCmd represents the crop command.
var cropCmd = &cobra.Command{
	Use:   "crop [pdf-file]",
	Short: "Cut per-instance crop images from rendered pages",
	Long: `Map every shape instance through its transform, the page base
transform and the viewport mapping, then crop the pre-rendered page image
to the resulting rectangle and save it as a PNG.

Page images must exist as page_<n>.png in --images-dir; rendering them is
outside the scope of this tool (any PDF rasterizer at the matching DPI
works).

Examples:
  pdfcad crop drawing.pdf --shapes shapes.json --images-dir pages
  pdfcad crop drawing.pdf --shapes shapes.json --images-dir pages --dpi 300`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		shapesPath, _ := cmd.Flags().GetString("shapes")
		imagesDir := cfg.Crop.ImagesDir
		if cmd.Flags().Changed("images-dir") {
			imagesDir, _ = cmd.Flags().GetString("images-dir")
		}
		outputDir := cfg.Crop.OutputDir
		if cmd.Flags().Changed("output-dir") {
			outputDir, _ = cmd.Flags().GetString("output-dir")
		}
		padding := cfg.Crop.Padding
		if cmd.Flags().Changed("padding") {
			padding, _ = cmd.Flags().GetFloat64("padding")
		}
		dpi := cfg.Crop.DPI
		if cmd.Flags().Changed("dpi") {
			dpi, _ = cmd.Flags().GetFloat64("dpi")
		}
		policyName := cfg.Crop.RotationPolicy
		if cmd.Flags().Changed("rotation-policy") {
			policyName, _ = cmd.Flags().GetString("rotation-policy")
		}

		policy := viewport.RotationNormalize
		switch policyName {
		case "normalize":
		case "corners":
			policy = viewport.RotationApplyToCorners
		default:
			return fmt.Errorf("invalid rotation policy: %s (must be normalize or corners)", policyName)
		}

		doc, err := document.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open PDF: %w", err)
		}

		artifact, err := pipeline.LoadArtifact(shapesPath)
		if err != nil {
			return fmt.Errorf("failed to load artifact: %w", err)
		}

		cropper := render.NewCropper(render.Options{
			OutputDir: outputDir,
			Padding:   padding,
			DPI:       dpi,
			Policy:    policy,
		})
		stats, err := cropper.Run(doc, artifact, render.DirectoryImages{Dir: imagesDir})
		if err != nil {
			return fmt.Errorf("crop failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Cropped %d of %d instances (%d skipped) into %s\n",
			stats.Cropped, stats.Instances, stats.Skipped, outputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cropCmd)
	cropCmd.Flags().StringP("shapes", "s", "shapes.json", "artifact path from analyze")
	cropCmd.Flags().String("images-dir", "pages", "directory with rendered page_<n>.png images")
	cropCmd.Flags().String("output-dir", "crops", "directory receiving the crop PNGs")
	cropCmd.Flags().Float64("padding", render.DefaultPadding, "crop margin in page units")
	cropCmd.Flags().Float64("dpi", render.DefaultDPI, "DPI the page images were rendered at")
	cropCmd.Flags().String("rotation-policy", "normalize",
		"page rotation handling: normalize or corners")
}
