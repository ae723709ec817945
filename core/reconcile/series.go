package reconcile

import "time"

// series holds one value per bucket of a contiguous bucket range. Buckets are
// laid out on the wall clock of loc: start is a wall-clock time carried in
// UTC so that stepping is unaffected by daylight saving transitions.
type series struct {
	start time.Time
	step  time.Duration
	loc   *time.Location
	vals  []int
}

func newSeries(from, to time.Time, step time.Duration, loc *time.Location) series {
	n := int(to.Sub(from)/step) + 1
	if n < 0 {
		n = 0
	}
	return series{start: from, step: step, loc: loc, vals: make([]int, n)}
}

// wall returns the wall-clock reading of t in loc, expressed in UTC.
func wall(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// bucket returns the wall-clock start of the interval containing t. Steps
// that divide a day align on local midnight.
func bucket(t time.Time, step time.Duration, loc *time.Location) time.Time {
	return wall(t, loc).Truncate(step)
}

// BucketStart returns the instant at which the interval containing t starts
// on the wall clock of loc.
func BucketStart(t time.Time, step time.Duration, loc *time.Location) time.Time {
	b := bucket(t, step, loc)
	return time.Date(b.Year(), b.Month(), b.Day(), b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), loc)
}

// add sums v into the bucket containing t. Values outside the range are ignored.
func (s series) add(t time.Time, v int) {
	b := bucket(t, s.step, s.loc)
	if b.Before(s.start) {
		return
	}
	i := int(b.Sub(s.start) / s.step)
	if i >= len(s.vals) {
		return
	}
	s.vals[i] += v
}

// at returns the instant bucket i starts at. ok is false when the bucket's
// wall-clock start is skipped by a daylight saving transition.
func (s series) at(i int) (t time.Time, ok bool) {
	w := s.start.Add(time.Duration(i) * s.step)
	t = time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), s.loc)
	return t, wall(t, s.loc).Equal(w)
}

func (s series) len() int { return len(s.vals) }

// like returns an empty series over the same buckets.
func (s series) like() series {
	return series{start: s.start, step: s.step, loc: s.loc, vals: make([]int, len(s.vals))}
}
