package cli

import (
	"github.com/mobile-next/qrscan/commands"
	"github.com/mobile-next/qrscan/screen"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Screen capture commands",
	Long:  `Capture every display or a logical region of the desktop as PNG or JPEG.`,
}

var captureAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Capture every display",
	Long:  `Captures every display at its physical resolution. Frames are written into the --output directory, or printed inline as data URLs when no directory is given.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupService()
		if err != nil {
			return err
		}

		return report(svc.CaptureAllCommand(cmd.Context(), captureRequest()))
	},
}

var captureRegionCmd = &cobra.Command{
	Use:   "region",
	Short: "Capture a logical region of the desktop",
	Long:  `Captures the display under the region's top-left corner and crops it to the region, mapping logical coordinates to physical pixels.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupService()
		if err != nil {
			return err
		}

		req := commands.CaptureRegionRequest{
			CaptureRequest: captureRequest(),
			Region:         regionFromFlags(),
		}
		return report(svc.CaptureRegionCommand(cmd.Context(), req))
	},
}

func captureRequest() commands.CaptureRequest {
	return commands.CaptureRequest{
		Format:     captureFormat,
		Quality:    captureQuality,
		OutputPath: captureOutputPath,
	}
}

func regionFromFlags() screen.LogicalRegion {
	return screen.LogicalRegion{X: regionX, Y: regionY, Width: regionWidth, Height: regionHeight}
}

func addRegionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&regionX, "x", 0, "left edge of the region in logical desktop coordinates")
	cmd.Flags().IntVar(&regionY, "y", 0, "top edge of the region in logical desktop coordinates")
	cmd.Flags().IntVar(&regionWidth, "width", 0, "width of the region in logical pixels")
	cmd.Flags().IntVar(&regionHeight, "height", 0, "height of the region in logical pixels")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.AddCommand(captureAllCmd)
	captureCmd.AddCommand(captureRegionCmd)

	for _, cmd := range []*cobra.Command{captureAllCmd, captureRegionCmd} {
		cmd.Flags().StringVarP(&captureFormat, "format", "f", "png", "Output format (png or jpeg)")
		cmd.Flags().IntVarP(&captureQuality, "quality", "q", 90, "JPEG quality (1-100, only applies if format is jpeg)")
	}

	captureAllCmd.Flags().StringVarP(&captureOutputPath, "output", "o", "", "Directory to write one file per display into")
	captureRegionCmd.Flags().StringVarP(&captureOutputPath, "output", "o", "", "Output file path for the region (e.g., region.png)")
	addRegionFlags(captureRegionCmd)
}
