package capture

import (
	"context"
	"io"
	"sync"

	"plate-stabilizer/internal/domain/plate"
)

// HandoffSource passes frames pushed by the ingest endpoint straight to a
// waiting worker. Nothing is queued: a frame offered while the worker is busy
// is dropped.
type HandoffSource struct {
	frames chan plate.Frame
	done   chan struct{}
	once   sync.Once
}

func NewHandoffSource() *HandoffSource {
	return &HandoffSource{
		frames: make(chan plate.Frame),
		done:   make(chan struct{}),
	}
}

// Offer hands f to the worker if it is currently waiting for a frame.
func (h *HandoffSource) Offer(f plate.Frame) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.frames <- f:
		return true
	default:
		return false
	}
}

func (h *HandoffSource) Read(ctx context.Context) (plate.Frame, error) {
	select {
	case f := <-h.frames:
		return f, nil
	case <-h.done:
		return plate.Frame{}, io.EOF
	case <-ctx.Done():
		return plate.Frame{}, ctx.Err()
	}
}

func (h *HandoffSource) Close() error {
	h.once.Do(func() { close(h.done) })
	return nil
}
