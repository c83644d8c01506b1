package probe

import "time"

// request is one in-flight echo request awaiting its reply.
type request struct {
	tStart time.Time
	tStop  time.Time
	result error
	done   chan struct{}
}

func newRequest() *request {
	return &request{done: make(chan struct{})}
}

// handleReply finishes the request. A non-nil err records the failure
// reason; tRecv is the receive timestamp of a successful reply.
func (req *request) handleReply(err error, tRecv *time.Time) {
	req.result = err
	if tRecv != nil {
		req.tStop = *tRecv
	}
	close(req.done)
}

func (req *request) roundTripTime() (time.Duration, error) {
	if req.result != nil {
		return 0, req.result
	}
	return req.tStop.Sub(req.tStart), nil
}
