package engine

import (
	"strconv"
	"time"
)

// IDSource hands out item ids that never repeat within a session.
type IDSource interface {
	Next() string
}

// ClockIDs issues millisecond timestamps, bumping by one when the clock has not
// advanced (or went backwards) since the last id.
type ClockIDs struct {
	Now  func() time.Time
	last int64
}

func NewClockIDs() *ClockIDs { return &ClockIDs{Now: time.Now} }

func (c *ClockIDs) Next() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	v := now().UnixMilli()
	if v <= c.last {
		v = c.last + 1
	}
	c.last = v
	return strconv.FormatInt(v, 10)
}

// SequenceIDs issues Prefix+1, Prefix+2, ... and is handy for deterministic runs.
type SequenceIDs struct {
	Prefix string
	n      int
}

func (s *SequenceIDs) Next() string {
	s.n++
	return s.Prefix + strconv.Itoa(s.n)
}
