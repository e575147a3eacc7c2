package session

import (
	"fmt"

	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:     "images",
	Short:   "列出所有打开的程序",
	Long:    "列出所有打开的程序，*标记当前程序",
	Aliases: []string{"ims"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupImages,
	},
	Run: func(cmd *cobra.Command, args []string) {
		cur, _ := CurrentSession.Current()
		for _, im := range CurrentSession.Images() {
			mark := " "
			if im == cur {
				mark = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s image[%d] %s\n", mark, im.ID, im.Path)
		}
	},
}

func init() {
	sessionRootCmd.AddCommand(imagesCmd)
}
