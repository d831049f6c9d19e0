package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch [path]",
	Short: "Atomically publish an empty artifact",
	Long:  `Publish a zero-length artifact at [path]. Marker-style workflows use this to announce that a step completed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := AV.Target(args[0]).Touch(cmd.Context()); err != nil {
			return fmt.Errorf("touch failed: %w", err)
		}
		fmt.Printf("✅ Touched %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(touchCmd)
}
