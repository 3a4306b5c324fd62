//go:build freebsd && (amd64 || arm64 || riscv64)

package sparse

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const method = "posix_fallocate"

// allocate reserves the blocks with posix_fallocate(2), which also extends
// the file size. The system call returns the error number instead of setting it.
func allocate(path string, size int64) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	r0, _, errno := unix.Syscall(unix.SYS_POSIX_FALLOCATE, file.Fd(), 0, uintptr(size))
	switch {
	case errno != 0:
		err = fmt.Errorf("posix_fallocate %d bytes: %w", size, errno)
	case r0 != 0:
		err = fmt.Errorf("posix_fallocate %d bytes: %w", size, unix.Errno(r0))
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", path, closeErr)
	}
	return err
}
