package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists [path]",
	Short: "Test whether an artifact exists",
	Long: `Exit 0 if the artifact at [path] exists, exit 1 if not.
This is the readiness check downstream pipeline stages rely on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := AV.Target(args[0]).Exists(cmd.Context())
		if err != nil {
			return fmt.Errorf("exists check failed: %w", err)
		}
		if !ok {
			fmt.Printf("❌ %s does not exist\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("✅ %s exists\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd)
}
