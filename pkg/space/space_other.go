//go:build !linux && !darwin && !freebsd && !windows

package space

import (
	"errors"

	"junkfactory/pkg/models"
)

var errUnsupported = errors.New("free space query is not supported on this platform")

func resolveVolume(path string) string {
	return path
}

func queryVolume(string) (*models.DiskUsage, error) {
	return nil, errUnsupported
}
