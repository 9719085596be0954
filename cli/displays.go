package cli

import (
	"github.com/spf13/cobra"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List attached displays",
	Long:  `Lists every display of the virtual desktop with its logical origin, logical size and scale factor.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setupService()
		if err != nil {
			return err
		}

		return report(svc.DisplaysCommand())
	},
}

func init() {
	rootCmd.AddCommand(displaysCmd)
}
