package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/history"
	"junkfactory/pkg/log"
	"junkfactory/pkg/server"
	"junkfactory/pkg/space"
	"junkfactory/pkg/zerofill"
)

func (a *app) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control surface",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			journal, err := history.NewMemoryStore()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := journal.Close(); closeErr != nil {
					log.Warn().Err(closeErr).Msg("Failed to close history journal")
				}
			}()

			fs := afero.NewOsFs()
			oracle := space.New()
			eng := engine.New(
				engine.WithFs(fs),
				engine.WithSpaceChecker(oracle),
				engine.WithWriter(zerofill.New(fs, a.cfg.WriterOptions()...)),
				engine.WithRecorder(journal),
			)

			srv := server.New(eng, journal, oracle, a.version)
			srv.SetHistoryLimit(a.cfg.HistoryLimit)
			return srv.Start(a.cfg.Listen)
		},
	}
}
