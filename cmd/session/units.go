package session

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unitsCmd = &cobra.Command{
	Use:     "units",
	Short:   "按编译单元汇总名字",
	Aliases: []string{"cus"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupNames,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		defer cmd.Flags().Set("verbose", "false")

		im, err := CurrentSession.Current()
		if err != nil {
			return err
		}

		cus, err := im.CompileUnits()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, cu := range cus {
			fmt.Fprintf(out, "compile unit %#x [len %#x] %s: %d names, %d types\n",
				cu.Offset, cu.Length, cu.Name(), len(cu.Names), len(cu.Types))
			if !verbose {
				continue
			}
			for _, e := range cu.Names {
				fmt.Fprintf(out, "\tname %-32s die %#x\n", e.Name(), e.DieOffset())
			}
			for _, e := range cu.Types {
				fmt.Fprintf(out, "\ttype %-32s die %#x\n", e.Name(), e.DieOffset())
			}
		}
		return nil
	},
}

func init() {
	sessionRootCmd.AddCommand(unitsCmd)

	unitsCmd.Flags().BoolP("verbose", "v", false, "列出每个编译单元的名字")
}
