package pipeline

import "plate-stabilizer/internal/domain/plate"

// Sink receives worker events. Publish is called on the worker goroutine and
// must not block.
type Sink interface {
	Publish(plate.Event)
}

type SinkFunc func(plate.Event)

func (f SinkFunc) Publish(e plate.Event) { f(e) }

// Fanout delivers each event to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(e plate.Event) {
	for _, s := range f {
		s.Publish(e)
	}
}

type discard struct{}

func (discard) Publish(plate.Event) {}
