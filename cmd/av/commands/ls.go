package commands

import (
	"fmt"

	"atomvault/pkg/ignore"

	"github.com/spf13/cobra"
)

var lsAll bool

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List artifacts under a directory/prefix",
	Long: `List committed artifacts under [path]. Provisional (uncommitted)
files never show up. Names matching .avignore rules are hidden unless
--all is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := AV.FS.Listdir(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ls failed: %w", err)
		}

		var matcher *ignore.Matcher
		if !lsAll {
			matcher, err = ignore.NewMatcher(args[0])
			if err != nil {
				return fmt.Errorf("load ignore rules: %w", err)
			}
		}

		for _, name := range names {
			if matcher != nil && matcher.Matches(name) {
				continue
			}
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsAll, "all", false, "include names matching ignore rules")
	rootCmd.AddCommand(lsCmd)
}
