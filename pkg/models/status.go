package models

import (
	"fmt"
	"time"
)

const bytesPerMB = 1 << 20

// ProgressStatus is the status line of an in-flight streamed write.
func ProgressStatus(percent int, throughput float64, eta time.Duration) string {
	return fmt.Sprintf("generating… %d%% speed: %.2fMB/s remaining: %s",
		percent, throughput/bytesPerMB, FormatRemaining(eta))
}

// StatusFor is the status line reported together with an outcome.
func StatusFor(outcome Outcome, filename string) string {
	switch outcome.Kind {
	case OutcomeSuccess:
		if outcome.Method == MethodSparse {
			return fmt.Sprintf("done (%s) sparse elapsed: %.2fs", filename, outcome.Elapsed.Seconds())
		}
		return fmt.Sprintf("done (%s) avg: %.2fMB/s elapsed: %.2fs",
			filename, averageMBps(outcome.BytesWritten, outcome.Elapsed), outcome.Elapsed.Seconds())
	case OutcomeInsufficientSpace:
		return "insufficient space, generation cancelled"
	case OutcomePathRejected:
		return "path rejected: " + outcome.Reason
	case OutcomeIOFailure:
		return "error: " + outcome.Message
	}
	return string(outcome.Kind)
}

// FormatRemaining renders an ETA as mm:ss, or --:-- when unknown.
func FormatRemaining(eta time.Duration) string {
	if eta == ETAUnknown || eta < 0 {
		return "--:--"
	}
	total := int64(eta.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func averageMBps(written int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(written) / elapsed.Seconds() / bytesPerMB
}
