package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"junkfactory/pkg/client"
	"junkfactory/pkg/models"
)

func (a *app) newClient() *client.Client {
	return client.New(a.cfg.ServerURL, a.cfg.RetryMax, a.cfg.RetryWaitMin, a.cfg.RetryWaitMax, a.cfg.RequestTimeout)
}

func (a *app) newSubmitCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create a zero-filled file through a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			api := a.newClient()

			check, err := api.CheckPath(ctx, flags.directory)
			if err != nil {
				return err
			}
			if !check.Allowed {
				return fmt.Errorf("%w: %s", models.ErrPathRejected, check.Reason)
			}

			id, err := api.Submit(ctx, models.SubmitRequest{
				Directory: check.Path,
				Filename:  flags.filename,
				Size:      flags.size,
				Unit:      flags.unit,
				UseSparse: flags.sparse,
			})
			if err != nil {
				return err
			}

			render := newRenderer(cmd.OutOrStdout(), flags.quiet)
			outcome, err := follow(ctx, clockwork.NewRealClock(), a.cfg.PollInterval, id, api.Poll, render)
			if err != nil {
				return err
			}
			if outcome.Succeeded() && outcome.Target != nil && !flags.quiet {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Target.Path)
			}
			return outcome.Err()
		},
	}
	flags.bind(cmd)
	return cmd
}
