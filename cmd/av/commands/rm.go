package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [path]",
	Short: "Remove an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := AV.FS.Remove(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("rm failed: %w", err)
		}
		fmt.Printf("🗑️  Removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
