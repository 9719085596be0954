package cli

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/mobile-next/qrscan/commands"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode the QR codes in an image file",
	Long:  `Decodes every QR code in a PNG or JPEG file. Use '-' to read the image from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		svc, err := setupService()
		if err != nil {
			return err
		}

		req := commands.DecodeRequest{Image: base64.StdEncoding.EncodeToString(data)}
		return report(svc.DecodeCommand(cmd.Context(), req))
	},
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
