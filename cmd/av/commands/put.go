package commands

import (
	"fmt"
	"io"
	"os"

	"atomvault/pkg/format"

	"github.com/spf13/cobra"
)

var putFormat string

var putCmd = &cobra.Command{
	Use:   "put [path]",
	Short: "Atomically write stdin to an artifact",
	Long: `Stream stdin into the target at [path] through the atomic write
protocol: bytes are staged in a provisional file and published with a
single rename on success. If the write fails halfway, the target is
left exactly as it was.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format.ByName(putFormat)
		if err != nil {
			return err
		}

		t := AV.Target(args[0], f)

		w, err := t.OpenWrite(cmd.Context())
		if err != nil {
			return fmt.Errorf("open for write: %w", err)
		}
		// 任何异常退出路径都只丢弃，绝不提交
		defer w.Discard()

		if _, err := io.Copy(w, os.Stdin); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}

		fmt.Printf("✅ Published %s\n", args[0])
		return nil
	},
}

func init() {
	putCmd.Flags().StringVar(&putFormat, "format", "none", "transform chain: none|utf8|gzip|zstd|lz4")
	rootCmd.AddCommand(putCmd)
}
