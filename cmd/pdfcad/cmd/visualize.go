package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
	"github.com/wan-andrea/recover-pdfCAD/internal/visualize"
)

// visualizeCmd represents the visualize command.
var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Emit overlay drawing commands for groups and markers",
	Long: `Build PDF content-stream overlays that outline shape groups (from a
groups JSON file) and marker verdicts (red for markers, blue otherwise).

The overlays are written per page as page_<n>_groups.txt and
page_<n>_markers.txt; appending them to a page's content stream draws the
boxes on top of the original drawing.

Examples:
  pdfcad visualize --shapes shapes.json --groups groups.json
  pdfcad visualize --shapes shapes.json --markers --output-dir overlays`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shapesPath, _ := cmd.Flags().GetString("shapes")
		groupsPath, _ := cmd.Flags().GetString("groups")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		withMarkers, _ := cmd.Flags().GetBool("markers")

		if groupsPath == "" && !withMarkers {
			return fmt.Errorf("nothing to draw: pass --groups and/or --markers")
		}

		artifact, err := pipeline.LoadArtifact(shapesPath)
		if err != nil {
			return fmt.Errorf("failed to load artifact: %w", err)
		}

		if err := os.MkdirAll(outputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}

		written := 0
		if groupsPath != "" {
			groups, err := visualize.LoadGroups(groupsPath)
			if err != nil {
				return fmt.Errorf("failed to load groups: %w", err)
			}
			overlays := visualize.GroupOverlays(groups, artifact, visualize.NewGroupPalette())
			n, err := writeOverlays(outputDir, "groups", overlays)
			if err != nil {
				return err
			}
			written += n
		}

		if withMarkers {
			overlays := visualize.MarkerOverlays(artifact)
			n, err := writeOverlays(outputDir, "markers", overlays)
			if err != nil {
				return err
			}
			written += n
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d overlay files to %s\n", written, outputDir)
		return nil
	},
}

// writeOverlays writes one overlay stream file per page.
func writeOverlays(dir, kind string, overlays map[int]string) (int, error) {
	written := 0
	for page, stream := range overlays {
		if stream == "" {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("page_%d_%s.txt", page, kind))
		if err := os.WriteFile(path, []byte(stream), 0o600); err != nil {
			return written, fmt.Errorf("failed to write overlay %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func init() {
	rootCmd.AddCommand(visualizeCmd)
	visualizeCmd.Flags().StringP("shapes", "s", "shapes.json", "artifact path from analyze")
	visualizeCmd.Flags().StringP("groups", "g", "", "groups JSON file (group_instances)")
	visualizeCmd.Flags().Bool("markers", false, "also emit marker verdict overlays")
	visualizeCmd.Flags().String("output-dir", "overlays", "directory receiving the overlay files")
}
