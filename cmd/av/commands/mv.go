package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mvNoReplace bool

var mvCmd = &cobra.Command{
	Use:   "mv [src] [dst]",
	Short: "Move an artifact",
	Long: `Move the artifact at [src] to [dst]. By default the move is
unconditional: an existing [dst] is replaced. With --no-replace the move
fails if [dst] already exists (non-clobbering publish).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]

		var err error
		if mvNoReplace {
			err = AV.FS.RenameNoReplace(cmd.Context(), src, dst)
		} else {
			err = AV.FS.Move(cmd.Context(), src, dst)
		}
		if err != nil {
			return fmt.Errorf("mv failed: %w", err)
		}

		fmt.Printf("✅ Moved %s -> %s\n", src, dst)
		return nil
	},
}

func init() {
	mvCmd.Flags().BoolVar(&mvNoReplace, "no-replace", false, "fail if destination already exists")
	rootCmd.AddCommand(mvCmd)
}
