package search

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// Task is a unit of cooperative work. Step does a bounded amount of work and
// reports whether the task is finished.
type Task interface {
	Step() (bool, error)
}

// Scheduler runs tasks round-robin, one Step at a time, on the calling
// goroutine.
type Scheduler struct {
	tasks []Task
}

func (s *Scheduler) Add(t Task) {
	s.tasks = append(s.tasks, t)
}

// Pending is the number of unfinished tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Run steps every task in turn until all are finished. A task that fails is
// dropped; the errors are joined.
func (s *Scheduler) Run() error {
	var errs []error
	turns := 0
	for len(s.tasks) > 0 {
		remaining := s.tasks[:0]
		for _, t := range s.tasks {
			done, err := t.Step()
			turns++
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !done {
				remaining = append(remaining, t)
			}
		}
		s.tasks = remaining
	}
	log.Debug().Int("turns", turns).Int("errors", len(errs)).Msg("scheduler-idle")
	return errors.Join(errs...)
}
