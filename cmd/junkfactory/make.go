package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/models"
	"junkfactory/pkg/zerofill"
)

// requestFlags are shared by make and submit.
type requestFlags struct {
	directory string
	filename  string
	size      float64
	unit      string
	sparse    bool
	quiet     bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.directory, "dir", "d", ".", "target directory")
	flags.StringVarP(&f.filename, "name", "n", "junk.bin", "file name, a numeric suffix is added when taken")
	flags.Float64VarP(&f.size, "size", "s", 1, "file size in --unit")
	flags.StringVarP(&f.unit, "unit", "u", string(models.UnitMB), "size unit: B, KB, MB or GB")
	flags.BoolVar(&f.sparse, "sparse", true, "try sparse preallocation before streaming zeros")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "print the final status only")
}

func (a *app) newMakeCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Create a zero-filled file locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unit, err := models.ParseUnit(flags.unit)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			clock := clockwork.NewRealClock()
			writerOpts := append(a.cfg.WriterOptions(), zerofill.WithClock(clock))
			eng := engine.New(
				engine.WithFs(fs),
				engine.WithClock(clock),
				engine.WithWriter(zerofill.New(fs, writerOpts...)),
			)

			if _, err := eng.AcceptDirectory(flags.directory); err != nil {
				return err
			}

			id, err := eng.Submit(flags.directory, flags.filename, flags.size, unit, flags.sparse)
			if err != nil {
				return err
			}

			poll := localPoll(eng)
			render := newRenderer(cmd.OutOrStdout(), flags.quiet)
			outcome, err := follow(cmd.Context(), clock, a.cfg.PollInterval, id, poll, render)
			eng.Wait()
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

func localPoll(eng *engine.Engine) pollFunc {
	return func(context.Context) ([]models.ProgressEvent, error) {
		return eng.PollProgress(), nil
	}
}
