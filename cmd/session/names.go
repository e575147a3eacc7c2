package session

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hitzhangjie/pubnames/pkg/dwarf/pubnames"
)

var namesCmd = &cobra.Command{
	Use:     "names",
	Short:   "列出.debug_pubnames中的名字",
	Aliases: []string{"n"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupNames,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpSection(cmd, pubnames.PubNames)
	},
}

var typesCmd = &cobra.Command{
	Use:     "types",
	Short:   "列出.debug_pubtypes中的名字",
	Aliases: []string{"t"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupNames,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpSection(cmd, pubnames.PubTypes)
	},
}

func dumpSection(cmd *cobra.Command, sec pubnames.Section) error {
	im, err := CurrentSession.Current()
	if err != nil {
		return err
	}
	if err := im.Dump(cmd.OutOrStdout(), sec); err != nil {
		return errors.Wrapf(err, "image[%d]", im.ID)
	}
	return nil
}

func init() {
	sessionRootCmd.AddCommand(namesCmd)
	sessionRootCmd.AddCommand(typesCmd)
}
