// Package sparse creates files of a given size without writing their content,
// using whatever the host filesystem offers for that.
//
// Exactly one platform variant is compiled in. Every failure is reported as
// a plain false: the caller is expected to fall back to writing zeros.
package sparse

import (
	"errors"
	"os"
	"time"

	"junkfactory/pkg/log"
)

const filePerm = 0o640

// ErrUnsupported is returned by platforms without a preallocation primitive.
var ErrUnsupported = errors.New("sparse allocation is not supported on this platform")

// Allocator attempts the fast path. Allocate returns true only if path exists
// afterwards with an apparent size of at least size bytes.
type Allocator interface {
	Allocate(path string, size int64) bool
}

// AllocatorFunc adapts a function to Allocator.
type AllocatorFunc func(path string, size int64) bool

// Allocate calls f.
func (f AllocatorFunc) Allocate(path string, size int64) bool {
	return f(path, size)
}

// Platform is the host allocator.
type Platform struct{}

// Default returns the allocator for the running platform.
func Default() Platform {
	return Platform{}
}

// Method names the primitive used on this platform.
func (Platform) Method() string {
	return method
}

// Allocate creates path with the requested apparent size using the platform primitive.
// A file left behind by a failed attempt is not removed.
func (Platform) Allocate(path string, size int64) bool {
	start := time.Now()

	if err := allocate(path, size); err != nil {
		log.Info().Err(err).Str("path", path).Str("method", method).Msg("Sparse allocation unavailable")
		return false
	}

	if !HasApparentSize(path, size) {
		log.Warn().Str("path", path).Int64("size", size).Str("method", method).
			Msg("Sparse allocation returned a short file")
		return false
	}

	log.Debug().Str("path", path).Int64("size", size).Str("method", method).
		Dur("elapsed", time.Since(start)).Msg("Sparse allocation done")
	return true
}

// HasApparentSize reports whether path exists with a logical size of at least size.
func HasApparentSize(path string, size int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() >= size
}
