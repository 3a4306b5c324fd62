// Package naming picks a filename that does not collide with an existing entry.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"junkfactory/pkg/log"
)

// Resolver probes a directory for free names. It is not a lock: two resolvers
// racing on the same directory may return the same name.
type Resolver struct {
	fs afero.Fs
}

// New creates a Resolver over fs.
func New(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs}
}

// Resolve returns desired if directory/desired is unused, otherwise the first
// free name of stem+"1"+ext, stem+"2"+ext, and so on.
func (r *Resolver) Resolve(directory, desired string) string {
	if !r.exists(filepath.Join(directory, desired)) {
		return desired
	}

	stem, ext := SplitExt(desired)
	for index := uint64(1); ; index++ {
		candidate := stem + strconv.FormatUint(index, 10) + ext
		if !r.exists(filepath.Join(directory, candidate)) {
			log.Info().Str("desired", desired).Str("resolved", candidate).Msg("Filename taken, using suffix")
			return candidate
		}
	}
}

// exists treats any stat failure as "free": if the entry cannot be inspected,
// creating it will surface the real error later.
func (r *Resolver) exists(path string) bool {
	_, err := r.fs.Stat(path)
	return err == nil
}

// SplitExt splits name into stem and extension. Leading dots belong to the
// stem, so ".bashrc" has no extension and "archive.tar.gz" splits at ".gz".
func SplitExt(name string) (string, string) {
	body := strings.TrimLeft(name, ".")
	idx := strings.LastIndex(body, ".")
	if idx < 0 {
		return name, ""
	}
	cut := len(name) - len(body) + idx
	return name[:cut], name[cut:]
}
