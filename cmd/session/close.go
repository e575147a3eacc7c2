package session

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "关闭指定编号的程序",
	Long:  `关闭指定编号的程序，未指定编号时关闭当前程序`,
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupImages,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// flags survive between commands of one session
		defer cmd.Flags().Set("n", "0")

		id, err := cmd.Flags().GetUint64("n")
		if err != nil {
			return err
		}

		if id == 0 {
			cur, err := CurrentSession.Current()
			if err != nil {
				return err
			}
			id = cur.ID
		}

		if err := CurrentSession.Close(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "image[%d] closed\n", id)
		return nil
	},
}

func init() {
	sessionRootCmd.AddCommand(closeCmd)

	closeCmd.Flags().Uint64P("n", "n", 0, "程序编号")
}
