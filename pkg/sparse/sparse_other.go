//go:build !linux && !darwin && !windows && !(freebsd && (amd64 || arm64 || riscv64))

package sparse

const method = "none"

func allocate(string, int64) error {
	return ErrUnsupported
}
