package session

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:     "find <name>...",
	Short:   "按名字查找DIE位置",
	Aliases: []string{"f"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupNames,
	},
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := CurrentSession.Current()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range args {
			found, err := im.Lookup(name)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintf(out, "%s: not found\n", name)
				continue
			}
			for _, e := range found {
				fmt.Fprintf(out, "%s: die %#x, cu %#x, global %#x\n",
					e.Name(), e.DieOffset(), e.CUOffset(), e.GlobalDieOffset())
			}
		}
		return nil
	},
}

func init() {
	sessionRootCmd.AddCommand(findCmd)
}
