package commands

import (
	"fmt"
	"io"
	"os"

	"atomvault/pkg/format"

	"github.com/spf13/cobra"
)

var catFormat string

var catCmd = &cobra.Command{
	Use:   "cat [path]",
	Short: "Read an artifact to stdout",
	Long:  `Open the artifact at [path], decode it through the selected transform chain and stream it to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format.ByName(catFormat)
		if err != nil {
			return err
		}

		t := AV.Target(args[0], f)

		r, err := t.OpenRead(cmd.Context())
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		defer r.Close()

		// writer 设成 os.Stdout: 文本直接显示，二进制可以 > file.bin 重定向
		if _, err := io.Copy(os.Stdout, r); err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		return nil
	},
}

func init() {
	catCmd.Flags().StringVar(&catFormat, "format", "none", "transform chain: none|utf8|gzip|zstd|lz4")
	rootCmd.AddCommand(catCmd)
}
