package board

// History is a fixed-capacity ring of Results. Appending to a full ring
// evicts the oldest entry, so memory stays bounded no matter how long a
// run lasts.
//
// A History is not safe for concurrent use. The scheduler is its only
// writer and mutates it strictly between round barriers; readers (the
// renderer, the end-of-run summary) run in the same goroutine.
type History struct {
	results  []Result
	count    int
	position int
}

// NewHistory creates a History holding at most capacity results.
func NewHistory(capacity int) History {
	if capacity < 1 {
		capacity = 1
	}
	return History{results: make([]Result, capacity)}
}

// Append stores a result at the tail, evicting the oldest entry once the
// ring is full.
func (h *History) Append(r Result) {
	h.results[h.position] = r
	h.position = (h.position + 1) % cap(h.results)

	if h.count < cap(h.results) {
		h.count++
	}
}

// Len is the number of retained results, at most Cap.
func (h *History) Len() int { return h.count }

// Cap is the fixed capacity.
func (h *History) Cap() int { return cap(h.results) }

// At returns the i-th retained result; index 0 is the oldest, Len()-1 the
// newest. i must be in [0, Len()).
func (h *History) At(i int) Result {
	start := (h.position - h.count + cap(h.results)) % cap(h.results)
	return h.results[(start+i)%cap(h.results)]
}

// Last returns the most recently appended result, if any.
func (h *History) Last() (Result, bool) {
	if h.count == 0 {
		return Result{}, false
	}
	return h.At(h.count - 1), true
}
