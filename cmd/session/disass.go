package session

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var disassCmd = &cobra.Command{
	Use:   "disass <function>",
	Short: "反汇编函数的机器指令",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupCode,
	},
	Aliases: []string{"dis", "disassemble"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			max    = CurrentSession.cfg.Max
			syntax = CurrentSession.cfg.Syntax
		)
		if cmd.Flags().Changed("max") {
			max, _ = cmd.Flags().GetUint64("max")
		}
		if cmd.Flags().Changed("syntax") {
			syntax, _ = cmd.Flags().GetString("syntax")
		}
		defer cmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue)
			f.Changed = false
		})

		im, err := CurrentSession.Current()
		if err != nil {
			return err
		}

		// 只在.debug_pubnames中查找，函数不会出现在.debug_pubtypes
		found, err := im.PubNames.Lookup(args[0])
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("function %s not found in .debug_pubnames", args[0])
		}

		fn, err := im.Function(found[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%#x, %#x):\n", fn.Name(), fn.LowPC(), fn.HighPC())
		return im.Disassemble(cmd.OutOrStdout(), fn, max, syntax)
	},
}

func init() {
	sessionRootCmd.AddCommand(disassCmd)

	disassCmd.Flags().Uint64P("max", "n", 10, "反汇编指令数量")
	disassCmd.Flags().StringP("syntax", "s", "gnu", "反汇编指令语法，支持：go, gnu, intel")
}
