package scanner

import (
	"sync/atomic"
)

// Stream buffer sizes. Emission never blocks the pipeline: a host that
// stops draining a stream loses events rather than stalling the scan.
const (
	progressBuffer = 256
	logBuffer      = 256
)

// Run is the handle for one scan in flight. All communication is outbound:
// the host receives progress, log lines and the final result, and may
// request a cooperative stop. After Done is closed the handle is inert.
type Run struct {
	progress chan Progress
	logs     chan string
	done     chan struct{}

	stop   atomic.Bool
	result *ScanResult // set before done is closed
}

func newRun() *Run {
	return &Run{
		progress: make(chan Progress, progressBuffer),
		logs:     make(chan string, logBuffer),
		done:     make(chan struct{}),
	}
}

// Progress returns the ordered progress stream. The channel is closed when
// the run finishes.
func (r *Run) Progress() <-chan Progress {
	return r.progress
}

// Logs returns the diagnostic stream. Non-fatal per-file errors surface
// here, not as run failures. The channel is closed when the run finishes.
func (r *Run) Logs() <-chan string {
	return r.logs
}

// Done is closed once the final result is available.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Result returns the final ScanResult, or nil while the run is still
// active. A cancelled run still yields a valid partial result.
func (r *Run) Result() *ScanResult {
	select {
	case <-r.done:
		return r.result
	default:
		return nil
	}
}

// Stop requests a cooperative stop. The flag is polled at file boundaries;
// the file being processed when the flag is observed completes normally.
func (r *Run) Stop() {
	r.stop.Store(true)
}

// Stopped reports whether a stop has been requested.
func (r *Run) Stopped() bool {
	return r.stop.Load()
}

// emitProgress delivers a progress event without ever blocking the
// pipeline. Events are only sent from the run goroutine, in file order.
func (r *Run) emitProgress(p Progress) {
	select {
	case r.progress <- p:
	default:
	}
}

// emitLog delivers a log line without ever blocking the pipeline.
func (r *Run) emitLog(line string) {
	select {
	case r.logs <- line:
	default:
	}
}

// finish publishes the result and closes all streams, exactly once.
func (r *Run) finish(result *ScanResult) {
	r.result = result
	close(r.progress)
	close(r.logs)
	close(r.done)
}
