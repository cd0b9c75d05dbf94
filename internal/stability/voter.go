// Package stability smooths frame-to-frame recognition noise by waiting for
// the same reading to repeat across a trailing window.
package stability

// Voter declares a text stable once the last threshold observations are all
// identical. It keeps no memory of earlier declarations, so a plate that stays
// in view is reported on every frame.
//
// A Voter is not safe for concurrent use; it belongs to the frame worker.
type Voter struct {
	window    *Window
	threshold int
}

// NewVoter builds a voter. The window capacity is raised to the threshold
// when smaller.
func NewVoter(threshold, capacity int) *Voter {
	if threshold < 1 {
		threshold = 1
	}
	if capacity < threshold {
		capacity = threshold
	}
	return &Voter{
		window:    NewWindow(capacity),
		threshold: threshold,
	}
}

// Observe records one frame's text and returns the stable candidate, if any.
func (v *Voter) Observe(text string) (string, bool) {
	v.window.Add(text)

	recent := v.window.Last(v.threshold)
	if recent == nil {
		return "", false
	}

	counts := make(map[string]int, len(recent))
	best, bestCount := "", 0
	for _, r := range recent {
		counts[r]++
		if counts[r] > bestCount {
			best, bestCount = r, counts[r]
		}
	}

	if bestCount >= v.threshold {
		return best, true
	}
	return "", false
}

func (v *Voter) Threshold() int {
	return v.threshold
}

func (v *Voter) Capacity() int {
	return v.window.Capacity()
}

// Resize changes the threshold and capacity, keeping the most recent history
// that still fits.
func (v *Voter) Resize(threshold, capacity int) {
	if threshold < 1 {
		threshold = 1
	}
	if capacity < threshold {
		capacity = threshold
	}
	if threshold == v.threshold && capacity == v.window.Capacity() {
		return
	}

	history := v.window.All()
	if len(history) > capacity {
		history = history[len(history)-capacity:]
	}
	w := NewWindow(capacity)
	for _, h := range history {
		w.Add(h)
	}
	v.window = w
	v.threshold = threshold
}

func (v *Voter) Reset() {
	v.window.Clear()
}
