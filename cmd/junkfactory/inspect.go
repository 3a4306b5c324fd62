package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"junkfactory/pkg/guard"
	"junkfactory/pkg/space"
)

func (a *app) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Tell whether files may be created in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.Check(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: allowed\n", args[0])
			return nil
		},
	}
}

func (a *app) newVolumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <path>",
		Short: "Show free space of the volume holding a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := space.New().Usage(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "volume:    %s\navailable: %s\nused:      %s\ntotal:     %s\n",
				usage.Volume,
				humanize.IBytes(usage.SpaceAvailable),
				humanize.IBytes(usage.SpaceUsed),
				humanize.IBytes(usage.TotalSpace),
			)
			return nil
		},
	}
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.version)
			return nil
		},
	}
}
