// Package space answers whether the volume holding a path can take a file
// of a given size.
package space

import (
	"github.com/dustin/go-humanize"

	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
)

// QueryFunc reads the usage of the volume mounted at or containing volume.
type QueryFunc func(volume string) (*models.DiskUsage, error)

// Oracle queries free space. The zero value is not usable, use New.
type Oracle struct {
	query   QueryFunc
	resolve func(path string) string
}

// New creates an Oracle backed by the host's filesystem statistics.
func New() *Oracle {
	return &Oracle{
		query:   queryVolume,
		resolve: resolveVolume,
	}
}

// NewWithQuery creates an Oracle with a custom volume query.
func NewWithQuery(query QueryFunc) *Oracle {
	return &Oracle{
		query:   query,
		resolve: resolveVolume,
	}
}

// Usage returns disk space information for the volume holding path.
func (o *Oracle) Usage(path string) (*models.DiskUsage, error) {
	volume := o.resolve(path)

	usage, err := o.query(volume)
	if err != nil {
		return nil, err
	}
	usage.Path = path
	usage.Volume = volume

	log.Debug().
		Str("path", path).
		Str("volume", volume).
		Uint64("available", usage.SpaceAvailable).
		Uint64("total", usage.TotalSpace).
		Msg("Volume stats")

	return usage, nil
}

// HasEnoughSpace reports whether at least required bytes are available to the
// current user on the volume holding path. Query failures count as "no".
func (o *Oracle) HasEnoughSpace(path string, required int64) bool {
	usage, err := o.Usage(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to query free space")
		return false
	}

	if required < 0 {
		required = 0
	}
	if usage.SpaceAvailable < uint64(required) {
		log.Info().
			Str("path", path).
			Str("required", humanize.IBytes(uint64(required))).
			Str("available", humanize.IBytes(usage.SpaceAvailable)).
			Msg("Not enough free space")
		return false
	}
	return true
}
