package session

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var closeallCmd = &cobra.Command{
	Use:   "closeall",
	Short: "关闭所有的程序",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupImages,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := CurrentSession.CloseAll(); err != nil {
			return errors.Wrap(err, "close images")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "all images closed")
		return nil
	},
}

func init() {
	sessionRootCmd.AddCommand(closeallCmd)
}
