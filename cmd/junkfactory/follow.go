package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/schollz/progressbar/v3"

	"junkfactory/pkg/models"
)

// pollFunc drains pending progress events.
type pollFunc func(ctx context.Context) ([]models.ProgressEvent, error)

// follow polls every interval until the terminal event of request id arrives
// and returns its outcome. Events of other requests are skipped.
func follow(ctx context.Context, clock clockwork.Clock, interval time.Duration, id string,
	poll pollFunc, render *renderer,
) (models.Outcome, error) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		events, err := poll(ctx)
		if err != nil {
			return models.Outcome{}, err
		}
		for _, event := range events {
			if event.RequestID != id {
				continue
			}
			render.handle(event)
			if event.Terminal() {
				return *event.Outcome, nil
			}
		}

		select {
		case <-ctx.Done():
			return models.Outcome{}, ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// renderer draws progress events on a terminal progress bar.
type renderer struct {
	out   io.Writer
	quiet bool
	bar   *progressbar.ProgressBar
}

func newRenderer(out io.Writer, quiet bool) *renderer {
	return &renderer{out: out, quiet: quiet}
}

func (r *renderer) handle(event models.ProgressEvent) {
	if r.quiet {
		if event.Terminal() {
			fmt.Fprintln(r.out, event.Status)
		}
		return
	}

	if r.bar == nil {
		r.bar = progressbar.NewOptions64(event.TotalBytes,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(0),
			progressbar.OptionClearOnFinish(),
		)
	}

	if !event.Terminal() {
		r.bar.Describe(event.Status)
		_ = r.bar.Set64(event.BytesWritten)
		return
	}

	if event.Outcome.Succeeded() {
		_ = r.bar.Set64(event.TotalBytes)
	}
	_ = r.bar.Finish()
	fmt.Fprintln(r.out, event.Status)
}
