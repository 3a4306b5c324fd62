//go:build darwin

package sparse

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const method = "F_PREALLOCATE"

func allocate(path string, size int64) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	err = preallocate(file, size, func(contiguous bool) error {
		store := unix.Fstore_t{
			Flags:   unix.F_ALLOCATEALL,
			Posmode: unix.F_PEOFPOSMODE,
			Offset:  0,
			Length:  size,
		}
		if contiguous {
			store.Flags = unix.F_ALLOCATECONTIG
		}
		return unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &store)
	})

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", path, closeErr)
	}
	return err
}
