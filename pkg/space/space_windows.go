//go:build windows

package space

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"

	"junkfactory/pkg/models"
)

// resolveVolume returns the drive root holding path, or path itself.
func resolveVolume(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if volume := filepath.VolumeName(abs); volume != "" {
		return volume + `\`
	}
	return path
}

func queryVolume(volume string) (*models.DiskUsage, error) {
	pathPtr, err := windows.UTF16PtrFromString(volume)
	if err != nil {
		return nil, fmt.Errorf("failed to convert path to UTF-16: %w", err)
	}

	var available, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &available, &total, &free); err != nil {
		return nil, fmt.Errorf("GetDiskFreeSpaceEx failed: %w", err)
	}

	return &models.DiskUsage{
		SpaceUsed:      total - free,
		SpaceAvailable: available,
		TotalSpace:     total,
	}, nil
}
