package cli

import (
	"github.com/mobile-next/qrscan/commands"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Decode QR codes on screen",
	Long:  `Capture the screen and decode every QR code found.`,
}

var scanFullCmd = &cobra.Command{
	Use:   "full",
	Short: "Scan every display",
	Long:  `Captures every display and decodes the QR codes on each. Codes are deduplicated per display.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupService()
		if err != nil {
			return err
		}

		return report(svc.ScanFullCommand(cmd.Context()))
	},
}

var scanRegionCmd = &cobra.Command{
	Use:   "region",
	Short: "Scan a logical region of the desktop",
	Long:  `Captures a logical region of the desktop and decodes the QR codes in it.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupService()
		if err != nil {
			return err
		}

		return report(svc.ScanRegionCommand(cmd.Context(), commands.ScanRegionRequest{Region: regionFromFlags()}))
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.AddCommand(scanFullCmd)
	scanCmd.AddCommand(scanRegionCmd)

	addRegionFlags(scanRegionCmd)
}
