package session

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open <prog>",
	Short:   "打开可执行程序",
	Long:    `打开可执行程序，并将其设为当前程序`,
	Aliases: []string{"o"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupImages,
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		im, err := CurrentSession.Open(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "image[%d] %s opened\n", im.ID, im.Path)
		return nil
	},
}

func init() {
	sessionRootCmd.AddCommand(openCmd)
}
