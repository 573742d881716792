package demo

import (
	"github.com/spf13/cobra"
)

func NewDemoCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "demo",
		Aliases: []string{"d"},
		Short:   "Interactive playground over an in-memory chat client",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return demoCmd(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
