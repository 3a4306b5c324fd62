//go:build windows

package sparse

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	method = "FSCTL_SET_SPARSE"

	fsctlSetSparse = 0x000900c4
)

// fileEndOfFileInfo mirrors FILE_END_OF_FILE_INFO.
type fileEndOfFileInfo struct {
	EndOfFile int64
}

// allocate creates the file, flags it sparse and sets its end of file to size
// in a single 64-bit call.
func allocate(path string, size int64) error {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("failed to convert path to UTF-16: %w", err)
	}

	handle, err := windows.CreateFile(name, windows.GENERIC_WRITE, 0, nil,
		windows.CREATE_ALWAYS, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return fmt.Errorf("CreateFile %s: %w", path, err)
	}
	defer windows.CloseHandle(handle) //nolint:errcheck // nothing was written through the handle

	var returned uint32
	if err := windows.DeviceIoControl(handle, fsctlSetSparse, nil, 0, nil, 0, &returned, nil); err != nil {
		return fmt.Errorf("FSCTL_SET_SPARSE: %w", err)
	}

	info := fileEndOfFileInfo{EndOfFile: size}
	if err := windows.SetFileInformationByHandle(handle, windows.FileEndOfFileInfo,
		(*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info))); err != nil {
		return fmt.Errorf("set end of file to %d: %w", size, err)
	}
	return nil
}
