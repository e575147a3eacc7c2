package session

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <image no.>",
	Short: "切换当前程序",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupImages,
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid image no. %s", args[0])
		}
		return CurrentSession.Use(id)
	},
}

func init() {
	sessionRootCmd.AddCommand(useCmd)
}
