package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting. It is passed to the
// components that report failures; there is no process-wide instance.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

// Capture is one error recorded by Recorder.
type Capture struct {
	Err  error
	Tags map[string]string
}

// Recorder keeps captured errors in memory, for tests and for printing a
// failure digest at the end of a batch.
type Recorder struct {
	mu       sync.Mutex
	captured []Capture
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captured = append(r.captured, Capture{Err: err, Tags: tags})
}

func (r *Recorder) Flush(time.Duration) {}

// Captures returns a copy of the recorded errors.
func (r *Recorder) Captures() []Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Capture(nil), r.captured...)
}
