/*
Copyright © 2020 hit.zhangjie@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/pubnames/cmd/session"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell [prog...]",
	Short: "交互式查看名字表",
	Long:  `交互式查看名字表，启动时打开参数中列出的可执行程序`,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := byteOrder()
		if err != nil {
			return err
		}

		session.CurrentSession = session.NewSession(session.Config{
			Order:  order,
			Logger: newLogger(),
			Syntax: viper.GetString("disass.syntax"),
			Max:    viper.GetUint64("disass.max"),
		})

		for _, prog := range args {
			im, err := session.CurrentSession.Open(prog)
			if err != nil {
				session.Cleanup()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image[%d] %s opened\n", im.ID, im.Path)
		}
		return nil
	},
	PostRun: func(cmd *cobra.Command, args []string) {
		// after session finished, close every image opened in it
		session.CurrentSession.AtExit(session.Cleanup).Start()
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
