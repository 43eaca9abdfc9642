package search

import "time"

// Clock is the time source for deadlines. It is read once per visited
// position.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// StepClock advances by a fixed step every time it is read.
type StepClock struct {
	now   time.Time
	step  time.Duration
	reads int
}

func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, step: step}
}

func (c *StepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	c.reads++
	return t
}

// Reads is how many times the clock has been read.
func (c *StepClock) Reads() int {
	return c.reads
}
