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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/pubnames/pkg/symbol"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <prog> <name>...",
	Short: "按名字查找DIE位置",
	Long:  `按名字查找DIE位置，同时搜索.debug_pubnames和.debug_pubtypes`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := byteOrder()
		if err != nil {
			return err
		}

		bi, err := symbol.Analyze(args[0], order, newLogger())
		if err != nil {
			return err
		}
		defer bi.Close()

		missing := 0
		out := cmd.OutOrStdout()
		for _, name := range args[1:] {
			found, err := bi.Lookup(name)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintf(out, "%s: not found\n", name)
				missing++
				continue
			}
			for _, e := range found {
				fmt.Fprintf(out, "%s: die %#x, cu %#x, global %#x\n",
					e.Name(), e.DieOffset(), e.CUOffset(), e.GlobalDieOffset())
			}
		}

		if missing != 0 {
			return errors.New("some names not found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
