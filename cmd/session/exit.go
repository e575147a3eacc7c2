package session

import (
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

var exitCmd = &cobra.Command{
	Use:     "exit",
	Short:   "结束会话",
	Aliases: []string{"quit", "q"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupOthers,
	},
	Run: func(cmd *cobra.Command, args []string) {
		CurrentSession.Stop()
	},
}

func init() {
	sessionRootCmd.AddCommand(exitCmd)
}

// Cleanup 清理会话，关闭所有打开的程序
func Cleanup() {
	if CurrentSession == nil {
		return
	}
	if err := CurrentSession.CloseAll(); err != nil {
		level.Warn(CurrentSession.cfg.Logger).Log("msg", "close images", "err", err)
	}
}
