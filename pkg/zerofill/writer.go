// Package zerofill materializes a file by streaming zero bytes into it,
// reporting progress as it goes.
package zerofill

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
)

const (
	// DefaultChunkSize is the logical step between progress checks.
	DefaultChunkSize = 1 << 20
	// DefaultBurstSize bounds the buffer handed to a single Write call.
	DefaultBurstSize = 64 << 10
	// MaxBurstSize caps the write buffer whatever the chunk size.
	MaxBurstSize = 1 << 20

	filePerm = 0o640
)

// Sink receives progress events in emission order.
type Sink func(models.ProgressEvent)

// Result describes a completed fill.
type Result struct {
	BytesWritten int64
	Elapsed      time.Duration
	Throughput   float64 // average bytes per second
}

// Writer streams zeros into files.
type Writer struct {
	fs        afero.Fs
	clock     clockwork.Clock
	chunkSize int64
	burstSize int
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock replaces the wall clock used for throughput and ETA.
func WithClock(clock clockwork.Clock) Option {
	return func(w *Writer) {
		w.clock = clock
	}
}

// WithChunkSize sets the logical step. Non-positive values keep the default.
func WithChunkSize(size int64) Option {
	return func(w *Writer) {
		if size > 0 {
			w.chunkSize = size
		}
	}
}

// WithBurstSize sets the physical write size. Non-positive values keep the
// default, larger ones are clamped to the chunk size and MaxBurstSize.
func WithBurstSize(size int) Option {
	return func(w *Writer) {
		if size > 0 {
			w.burstSize = size
		}
	}
}

// New creates a Writer on fs.
func New(fs afero.Fs, opts ...Option) *Writer {
	w := &Writer{
		fs:        fs,
		clock:     clockwork.NewRealClock(),
		chunkSize: DefaultChunkSize,
		burstSize: DefaultBurstSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.burstSize = int(min(int64(w.burstSize), w.chunkSize, MaxBurstSize))
	return w
}

// Write replaces whatever is at path with size zero bytes.
//
// An event is sent to sink every time the integer percentage changes, and a
// final 100% event carrying the average throughput once the file is closed.
// Percentages are strictly increasing, 100 is only ever sent once.
func (w *Writer) Write(path string, size int64, sink Sink) (Result, error) {
	if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("path", path).Msg("Failed to remove previous file, ignoring")
	}

	file, err := w.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if file != nil {
			_ = file.Close()
		}
	}()

	burst := make([]byte, w.burstSize)
	start := w.clock.Now()
	written := int64(0)
	lastPercent := -1

	for written < size {
		step := min(w.chunkSize, size-written)
		if err := writeZeros(file, burst, step); err != nil {
			return Result{BytesWritten: written, Elapsed: w.clock.Since(start)}, fmt.Errorf("write %s: %w", path, err)
		}
		written += step

		percent := percentOf(written, size)
		if percent == lastPercent || percent >= 100 {
			continue
		}
		lastPercent = percent
		sink(progressEvent(percent, written, size, w.clock.Since(start)))
	}

	closeErr := file.Close()
	file = nil
	if closeErr != nil {
		return Result{BytesWritten: written, Elapsed: w.clock.Since(start)}, fmt.Errorf("close %s: %w", path, closeErr)
	}

	elapsed := w.clock.Since(start)
	result := Result{
		BytesWritten: written,
		Elapsed:      elapsed,
		Throughput:   throughput(written, elapsed),
	}
	sink(models.ProgressEvent{
		Percent:      100,
		BytesWritten: written,
		TotalBytes:   size,
		Throughput:   result.Throughput,
		ETA:          0,
		Status:       models.StatusFor(models.Success(models.MethodStreamed, written, elapsed), filepath.Base(path)),
	})

	log.Debug().Str("path", path).Int64("bytes", written).Dur("elapsed", elapsed).Msg("Zero fill finished")
	return result, nil
}

// writeZeros writes n zero bytes in bursts of at most len(burst).
func writeZeros(file afero.File, burst []byte, n int64) error {
	for n > 0 {
		part := min(int64(len(burst)), n)
		if _, err := file.Write(burst[:part]); err != nil {
			return err
		}
		n -= part
	}
	return nil
}

func percentOf(written, total int64) int {
	if total <= 0 {
		return 100
	}
	return int(float64(written) / float64(total) * 100)
}

func throughput(written int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(written) / elapsed.Seconds()
}

func progressEvent(percent int, written, total int64, elapsed time.Duration) models.ProgressEvent {
	speed := throughput(written, elapsed)
	eta := models.ETAUnknown
	if speed > 0 {
		eta = time.Duration(float64(total-written) / speed * float64(time.Second))
	}

	return models.ProgressEvent{
		Percent:      percent,
		BytesWritten: written,
		TotalBytes:   total,
		Throughput:   speed,
		ETA:          eta,
		Status:       models.ProgressStatus(percent, speed, eta),
	}
}
