package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/c2h5oh/datasize"
)

// Unit is the size unit a request was entered in. It is informational only:
// the request size is always normalized to bytes.
type Unit string

const (
	UnitB  Unit = "B"
	UnitKB Unit = "KB"
	UnitMB Unit = "MB"
	UnitGB Unit = "GB"
)

// Units lists the accepted units in ascending order.
var Units = []Unit{UnitB, UnitKB, UnitMB, UnitGB}

// Multiplier returns the byte multiplier of the unit (powers of 1024).
func (u Unit) Multiplier() (datasize.ByteSize, bool) {
	switch u {
	case UnitB:
		return datasize.B, true
	case UnitKB:
		return datasize.KB, true
	case UnitMB:
		return datasize.MB, true
	case UnitGB:
		return datasize.GB, true
	}
	return 0, false
}

// ParseUnit parses a unit name case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := u.Multiplier(); !ok {
		return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidRequest, s)
	}
	return u, nil
}

// ToBytes converts size expressed in unit into a whole byte count, flooring
// any fractional byte.
func ToBytes(size float64, unit Unit) (int64, error) {
	mult, ok := unit.Multiplier()
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidRequest, unit)
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return 0, fmt.Errorf("%w: size must be a positive number", ErrInvalidRequest)
	}

	total := math.Floor(size * float64(mult))
	if total < 1 {
		return 0, fmt.Errorf("%w: size rounds down to zero bytes", ErrInvalidRequest)
	}
	if total >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: size too large", ErrInvalidRequest)
	}
	return int64(total), nil
}

// AllocationRequest is one request to materialize a zero-filled file.
// Size is always in bytes.
type AllocationRequest struct {
	ID        string `json:"id"`
	Directory string `json:"directory"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	Unit      Unit   `json:"unit"`
	UseSparse bool   `json:"use_sparse"`
}

// NewAllocationRequest validates the user supplied values and builds a request.
func NewAllocationRequest(id, directory, filename string, size float64, unit Unit, useSparse bool) (AllocationRequest, error) {
	directory = strings.TrimSpace(directory)
	if directory == "" {
		return AllocationRequest{}, fmt.Errorf("%w: directory is required", ErrInvalidRequest)
	}

	filename = strings.TrimSpace(filename)
	if err := validateFilename(filename); err != nil {
		return AllocationRequest{}, err
	}

	bytes, err := ToBytes(size, unit)
	if err != nil {
		return AllocationRequest{}, err
	}

	return AllocationRequest{
		ID:        id,
		Directory: directory,
		Filename:  filename,
		Size:      bytes,
		Unit:      unit,
		UseSparse: useSparse,
	}, nil
}

func validateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: filename is required", ErrInvalidRequest)
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid filename %q", ErrInvalidRequest, name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("%w: filename %q must not contain path separators", ErrInvalidRequest, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: filename contains a NUL byte", ErrInvalidRequest)
	}
	return nil
}

// ResolvedTarget is the collision free destination produced by the naming resolver.
type ResolvedTarget struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}
