package main

import (
	"github.com/spf13/cobra"

	"junkfactory/pkg/config"
)

// app carries state shared by all subcommands.
type app struct {
	version string
	cfg     config.Config
}

func newRootCommand(version string) *cobra.Command {
	a := &app{version: version, cfg: config.Default()}

	root := &cobra.Command{
		Use:           "junkfactory",
		Short:         "Create zero-filled files of an exact size",
		Long:          "junkfactory creates files of an exact size, preallocating them when the\nfilesystem allows it and streaming zeros otherwise.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.ApplyLogging(); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.newMakeCommand(),
		a.newServeCommand(),
		a.newSubmitCommand(),
		a.newCheckCommand(),
		a.newVolumeCommand(),
		a.newVersionCommand(),
	)
	return root
}
