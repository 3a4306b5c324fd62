//go:build windows

package sparse

import (
	"os"
	"path/filepath"
)

// TestPlatformAllocateLowWordAllOnes tests sizes whose low 32 bits are all set
func (s *SparseTestSuite) TestPlatformAllocateLowWordAllOnes() {
	sizes := []int64{1<<32 - 1, 1<<33 - 1}

	for _, size := range sizes {
		path := filepath.Join(s.tempDir, "ones.bin")
		s.Require().True(Default().Allocate(path, size), "size %d", size)

		info, err := os.Stat(path)
		s.Require().NoError(err)
		s.Equal(size, info.Size())
		s.Require().NoError(os.Remove(path))
	}
}
