package sparse

import (
	"fmt"
	"os"

	"junkfactory/pkg/log"
)

// preallocRequest asks the filesystem to reserve the blocks of a file, either
// as one contiguous run or anywhere it can find them.
type preallocRequest func(contiguous bool) error

// preallocate tries a contiguous reservation, retries once without the
// contiguity requirement, and on success sets the logical size to exactly size.
// On failure the file is left in place for the caller's fallback path.
func preallocate(file *os.File, size int64, request preallocRequest) error {
	if err := request(true); err != nil {
		log.Debug().Err(err).Str("path", file.Name()).Msg("Contiguous preallocation refused, retrying")

		if err := request(false); err != nil {
			return fmt.Errorf("preallocate %d bytes: %w", size, err)
		}
	}

	if err := file.Truncate(size); err != nil {
		return fmt.Errorf("truncate to %d bytes: %w", size, err)
	}
	return nil
}
