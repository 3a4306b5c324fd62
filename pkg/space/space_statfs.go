//go:build linux || darwin || freebsd

package space

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"junkfactory/pkg/models"
)

// resolveVolume returns the nearest existing ancestor of path, so that a
// directory which does not exist yet is measured on the volume it will live on.
// Falls back to path itself.
func resolveVolume(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	for dir := abs; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return path
}

func queryVolume(volume string) (*models.DiskUsage, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(volume, &stat); err != nil {
		return nil, err
	}

	bsize := uint64(stat.Bsize) //nolint:gosec // block size is never negative
	total := uint64(stat.Blocks) * bsize
	free := uint64(stat.Bfree) * bsize //nolint:unconvert,gosec // field types differ per platform

	return &models.DiskUsage{
		SpaceUsed:      total - free,
		SpaceAvailable: uint64(stat.Bavail) * bsize, //nolint:unconvert,gosec // field types differ per platform
		TotalSpace:     total,
	}, nil
}
