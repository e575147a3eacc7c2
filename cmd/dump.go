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
	"io"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
	"github.com/hitzhangjie/pubnames/pkg/symbol"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <prog>",
	Short: "列出可执行程序的名字表",
	Long: `列出可执行程序.debug_pubnames和.debug_pubtypes中的所有名字。

每个名字输出DIE偏移量（相对于编译单元）、编译单元在.debug_info中的偏移量，
以及DIE在.debug_info中的绝对偏移量。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			kind, _  = cmd.Flags().GetString("kind")
			units, _ = cmd.Flags().GetBool("units")
		)

		sections, err := parseKind(kind)
		if err != nil {
			return err
		}

		order, err := byteOrder()
		if err != nil {
			return err
		}

		bi, err := symbol.Analyze(args[0], order, newLogger())
		if err != nil {
			return err
		}
		defer bi.Close()

		out := cmd.OutOrStdout()
		if units {
			return dumpUnits(out, bi)
		}
		for _, sec := range sections {
			fmt.Fprintf(out, ".debug_%s:\n", sec)
			if err := bi.Dump(out, sec); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func parseKind(kind string) ([]pubnames.Section, error) {
	switch kind {
	case "names":
		return []pubnames.Section{pubnames.PubNames}, nil
	case "types":
		return []pubnames.Section{pubnames.PubTypes}, nil
	case "all":
		return []pubnames.Section{pubnames.PubNames, pubnames.PubTypes}, nil
	}
	return nil, fmt.Errorf("invalid kind %q, must be names, types or all", kind)
}

func dumpUnits(w io.Writer, bi *symbol.BinaryInfo) error {
	cus, err := bi.CompileUnits()
	if err != nil {
		return err
	}
	for _, cu := range cus {
		fmt.Fprintf(w, "compile unit %#x [len %#x] %s: %d names, %d types\n",
			cu.Offset, cu.Length, cu.Name(), len(cu.Names), len(cu.Types))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringP("kind", "k", "all", "名字表类型，支持：names, types, all")
	dumpCmd.Flags().BoolP("units", "u", false, "按编译单元汇总")
}
