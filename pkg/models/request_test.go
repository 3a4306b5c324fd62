package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// RequestTestSuite tests request construction and unit conversion
type RequestTestSuite struct {
	suite.Suite
}

// TestToBytes tests the unit conversion table
func (s *RequestTestSuite) TestToBytes() {
	tests := []struct {
		name     string
		size     float64
		unit     Unit
		expected int64
	}{
		{name: "bytes", size: 1, unit: UnitB, expected: 1},
		{name: "kilobytes", size: 1, unit: UnitKB, expected: 1024},
		{name: "megabytes", size: 1, unit: UnitMB, expected: 1048576},
		{name: "two gigabytes", size: 2, unit: UnitGB, expected: 2147483648},
		{name: "fractional kilobytes", size: 1.5, unit: UnitKB, expected: 1536},
		{name: "floored fraction", size: 1.9999, unit: UnitB, expected: 1},
		{name: "fractional megabytes floored", size: 0.3, unit: UnitMB, expected: 314572},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := ToBytes(tt.size, tt.unit)
			s.Require().NoError(err)
			s.Equal(tt.expected, result)
		})
	}
}

// TestToBytesInvalid tests sizes that cannot produce a file
func (s *RequestTestSuite) TestToBytesInvalid() {
	tests := []struct {
		name string
		size float64
		unit Unit
	}{
		{name: "zero", size: 0, unit: UnitMB},
		{name: "negative", size: -1, unit: UnitMB},
		{name: "not a number", size: math.NaN(), unit: UnitMB},
		{name: "infinite", size: math.Inf(1), unit: UnitB},
		{name: "below one byte", size: 0.5, unit: UnitB},
		{name: "overflow", size: 1e10, unit: UnitGB},
		{name: "unknown unit", size: 1, unit: Unit("TB")},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := ToBytes(tt.size, tt.unit)
			s.ErrorIs(err, ErrInvalidRequest)
		})
	}
}

// TestParseUnit tests unit parsing
func (s *RequestTestSuite) TestParseUnit() {
	unit, err := ParseUnit(" mb ")
	s.Require().NoError(err)
	s.Equal(UnitMB, unit)

	for _, u := range Units {
		parsed, err := ParseUnit(string(u))
		s.Require().NoError(err)
		s.Equal(u, parsed)
	}

	_, err = ParseUnit("PB")
	s.ErrorIs(err, ErrInvalidRequest)
}

// TestNewAllocationRequest tests a valid request
func (s *RequestTestSuite) TestNewAllocationRequest() {
	req, err := NewAllocationRequest("id-1", " /tmp/out ", " junk.bin ", 2, UnitGB, true)
	s.Require().NoError(err)
	s.Equal("id-1", req.ID)
	s.Equal("/tmp/out", req.Directory)
	s.Equal("junk.bin", req.Filename)
	s.Equal(int64(2147483648), req.Size)
	s.Equal(UnitGB, req.Unit)
	s.True(req.UseSparse)
}

// TestNewAllocationRequestInvalid tests rejected user input
func (s *RequestTestSuite) TestNewAllocationRequestInvalid() {
	tests := []struct {
		name      string
		directory string
		filename  string
		size      float64
	}{
		{name: "empty directory", directory: "  ", filename: "junk.bin", size: 1},
		{name: "empty filename", directory: "/tmp", filename: "", size: 1},
		{name: "dot filename", directory: "/tmp", filename: "..", size: 1},
		{name: "nested filename", directory: "/tmp", filename: "a/junk.bin", size: 1},
		{name: "backslash filename", directory: "/tmp", filename: `a\junk.bin`, size: 1},
		{name: "nul filename", directory: "/tmp", filename: "junk\x00.bin", size: 1},
		{name: "zero size", directory: "/tmp", filename: "junk.bin", size: 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := NewAllocationRequest("id", tt.directory, tt.filename, tt.size, UnitMB, false)
			s.ErrorIs(err, ErrInvalidRequest)
		})
	}
}

// TestOutcomeErr tests mapping outcomes onto sentinel errors
func (s *RequestTestSuite) TestOutcomeErr() {
	s.NoError(Success(MethodSparse, 10, time.Second).Err())
	s.True(Success(MethodStreamed, 10, time.Second).Succeeded())

	s.ErrorIs(PathRejected("protected").Err(), ErrPathRejected)
	s.Contains(PathRejected("protected").Err().Error(), "protected")
	s.ErrorIs(InsufficientSpace().Err(), ErrInsufficientSpace)

	failure := IOFailure(errors.New("disk on fire"))
	s.ErrorIs(failure.Err(), ErrIOFailure)
	s.Equal("disk on fire", failure.Message)
	s.False(failure.Succeeded())
}

// TestProgressEventFlags tests the terminal and ETA helpers
func (s *RequestTestSuite) TestProgressEventFlags() {
	ev := ProgressEvent{Percent: 10, ETA: ETAUnknown}
	s.False(ev.Terminal())
	s.False(ev.ETAKnown())

	outcome := InsufficientSpace()
	ev = ProgressEvent{ETA: time.Second, Outcome: &outcome}
	s.True(ev.Terminal())
	s.True(ev.ETAKnown())
}

// TestStatusFor tests the status line of every outcome kind
func (s *RequestTestSuite) TestStatusFor() {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"streamed", Success(MethodStreamed, 100<<20, 2*time.Second), "done (junk1.bin) avg: 50.00MB/s elapsed: 2.00s"},
		{"sparse", Success(MethodSparse, 1<<30, 0), "done (junk1.bin) sparse elapsed: 0.00s"},
		{"space", InsufficientSpace(), "insufficient space, generation cancelled"},
		{"rejected", PathRejected("protected directory"), "path rejected: protected directory"},
		{"io", IOFailure(errors.New("disk on fire")), "error: disk on fire"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, StatusFor(tt.outcome, "junk1.bin"))
		})
	}
}

// TestFormatRemaining tests ETA rendering
func (s *RequestTestSuite) TestFormatRemaining() {
	s.Equal("01:23", FormatRemaining(83*time.Second))
	s.Equal("00:00", FormatRemaining(0))
	s.Equal("61:01", FormatRemaining(time.Hour+61*time.Second))
	s.Equal("--:--", FormatRemaining(ETAUnknown))
	s.Equal("generating… 42% speed: 12.34MB/s remaining: 01:23",
		ProgressStatus(42, 12.34*(1<<20), 83*time.Second))
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestTestSuite))
}
