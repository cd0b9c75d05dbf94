// Package pipeline runs the per-frame path: assemble each plate region,
// vote for a stable reading, and submit stable readings for validation and
// storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"plate-stabilizer/internal/capture"
	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/recognition"
	"plate-stabilizer/internal/stability"
)

var ErrAlreadyRunning = errors.New("worker is already running")

// PlateSubmitter validates and stores stable readings.
type PlateSubmitter interface {
	Known(text string) bool
	Submit(ctx context.Context, text string) (plate.Outcome, error)
}

// Worker processes frames one at a time. Stop and ApplySettings take effect
// at the next frame boundary, never in the middle of a frame.
type Worker struct {
	submitter PlateSubmitter
	sink      Sink
	log       zerolog.Logger

	// owned by the Run goroutine
	current      Settings
	voter        *stability.Voter
	lastRejected string
	read         int64

	requested atomic.Pointer[Settings]
	processed atomic.Int64
	stop      atomic.Bool
	running   atomic.Bool
}

func NewWorker(settings Settings, submitter PlateSubmitter, sink Sink, log zerolog.Logger) (*Worker, error) {
	s, err := settings.Normalize()
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = discard{}
	}
	w := &Worker{
		submitter: submitter,
		sink:      sink,
		log:       log,
		current:   s,
		voter:     stability.NewVoter(s.StabilityThreshold, s.HistorySize),
	}
	w.requested.Store(&s)
	return w, nil
}

// ApplySettings schedules new settings for the next frame boundary.
func (w *Worker) ApplySettings(settings Settings) error {
	s, err := settings.Normalize()
	if err != nil {
		return err
	}
	w.requested.Store(&s)
	return nil
}

// Settings returns the most recently applied or requested settings.
func (w *Worker) Settings() Settings {
	return *w.requested.Load()
}

// Stop asks the worker to exit after the frame in progress.
func (w *Worker) Stop() {
	w.stop.Store(true)
}

func (w *Worker) Running() bool {
	return w.running.Load()
}

// Processed returns the number of frames that went through the pipeline.
func (w *Worker) Processed() int64 {
	return w.processed.Load()
}

// Run reads frames from src until it is exhausted, Stop is called or ctx is
// done, then closes src. Skipped frames never enter the pipeline.
func (w *Worker) Run(ctx context.Context, src capture.Source) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer w.running.Store(false)
	defer func() {
		if err := src.Close(); err != nil {
			w.log.Warn().Err(err).Msg("failed to close capture source")
		}
	}()

	// Each run starts without history from the previous one.
	w.stop.Store(false)
	w.read = 0
	w.voter.Reset()
	w.lastRejected = ""

	w.log.Info().
		Int("stability_threshold", w.current.StabilityThreshold).
		Int("frame_skip", w.current.FrameSkip).
		Msg("frame worker started")

	for {
		if w.stop.Load() {
			w.log.Info().Int64("processed", w.processed.Load()).Msg("frame worker stopped")
			return nil
		}
		if ctx.Err() != nil {
			w.log.Info().Int64("processed", w.processed.Load()).Msg("frame worker cancelled")
			return nil
		}
		w.applyRequested()

		frame, err := src.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				w.log.Info().Int64("processed", w.processed.Load()).Msg("capture source exhausted")
				return nil
			}
			if ctx.Err() != nil {
				continue
			}
			return fmt.Errorf("read frame: %w", err)
		}

		w.read++
		if w.read%int64(w.current.FrameSkip) != 0 {
			framesTotal.WithLabelValues("skipped").Inc()
			continue
		}

		// A frame is always finished, even if ctx is cancelled meanwhile.
		w.processFrame(context.WithoutCancel(ctx), frame)
	}
}

func (w *Worker) applyRequested() {
	next := *w.requested.Load()
	if next == w.current {
		return
	}
	w.voter.Resize(next.StabilityThreshold, next.HistorySize)
	w.current = next
	w.log.Info().
		Int("stability_threshold", next.StabilityThreshold).
		Int("history_size", next.HistorySize).
		Int("min_detection_length", next.MinDetectionLength).
		Int("frame_skip", next.FrameSkip).
		Msg("pipeline settings applied")
}

func (w *Worker) processFrame(ctx context.Context, frame plate.Frame) {
	start := time.Now()
	defer func() {
		frameDuration.Observe(time.Since(start).Seconds())
	}()
	framesTotal.WithLabelValues("processed").Inc()
	w.processed.Add(1)

	regions := recognition.AssembleRegions(frame.Regions, w.current.MinDetectionLength)

	detection := plate.NewEvent(plate.EventDetection, frame.Index, "")
	detection.Regions = regions
	if len(regions) > 0 {
		detection.Text = regions[0].Text
	}
	w.sink.Publish(detection)

	// Frames without a reading leave the window untouched.
	if len(regions) == 0 {
		return
	}

	candidate, ok := w.voter.Observe(regions[0].Text)
	if !ok {
		return
	}
	stableTotal.Inc()
	w.sink.Publish(plate.NewEvent(plate.EventStable, frame.Index, candidate))

	if w.submitter.Known(candidate) {
		return
	}

	outcome, err := w.submitter.Submit(ctx, candidate)
	if err != nil {
		w.log.Warn().Err(err).Str("plate", candidate).Int64("frame", frame.Index).Msg("failed to submit stable plate")
		return
	}
	submissionsTotal.WithLabelValues(string(outcome)).Inc()

	if outcome == plate.OutcomeRejected {
		if candidate == w.lastRejected {
			return
		}
		w.lastRejected = candidate
	} else {
		w.lastRejected = ""
	}
	w.sink.Publish(plate.NewEvent(plate.EventTypeFor(outcome), frame.Index, candidate))
}
