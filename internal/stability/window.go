package stability

// Window is a fixed-capacity ring of the most recent assembled texts.
type Window struct {
	entries  []string
	capacity int
	head     int // next write position
	size     int
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		entries:  make([]string, capacity),
		capacity: capacity,
	}
}

// Add stores text, overwriting the oldest entry when full.
func (w *Window) Add(text string) {
	w.entries[w.head] = text
	w.head = (w.head + 1) % w.capacity
	if w.size < w.capacity {
		w.size++
	}
}

// Last returns the n most recent entries, oldest first. It returns nil when
// fewer than n entries are held.
func (w *Window) Last(n int) []string {
	if n < 1 || n > w.size {
		return nil
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		idx := (w.head - n + i + w.capacity) % w.capacity
		out[i] = w.entries[idx]
	}
	return out
}

func (w *Window) All() []string {
	return w.Last(w.size)
}

func (w *Window) Len() int {
	return w.size
}

func (w *Window) Capacity() int {
	return w.capacity
}

func (w *Window) Clear() {
	for i := range w.entries {
		w.entries[i] = ""
	}
	w.head = 0
	w.size = 0
}
