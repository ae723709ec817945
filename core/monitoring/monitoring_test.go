package monitoring

import (
	"errors"
	"testing"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	r.CaptureException(nil, nil)
	r.CaptureException(errors.New("boom"), map[string]string{"station_id": "4"})
	got := r.Captures()
	if len(got) != 1 || got[0].Tags["station_id"] != "4" {
		t.Fatalf("unexpected captures %+v", got)
	}
	var m Monitor = NopMonitor{}
	m.CaptureException(errors.New("ignored"), nil)
	m.Flush(0)
}
