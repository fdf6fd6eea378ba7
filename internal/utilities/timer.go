package utilities

import (
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

type timer struct {
	start   time.Time
	elapsed time.Duration
	stopped bool
}

type timers struct {
	sync.RWMutex
	timers map[string][]*timer
}

// Timers tracks the elapsed time of named groups (e.g. one per endpoint)
type Timers interface {
	Start(group string) int
	Stop(group string, index int) time.Duration
	ReadAll() *data.Timers
	Clear()
}

func NewTimers() Timers {
	return &timers{
		timers: make(map[string][]*timer),
	}
}

func (t *timers) Clear() {
	t.Lock()
	defer t.Unlock()

	t.timers = make(map[string][]*timer)
}

func (t *timers) Start(group string) int {
	t.Lock()
	defer t.Unlock()

	if _, found := t.timers[group]; !found {
		t.timers[group] = make([]*timer, 0, 100)
	}
	t.timers[group] = append(t.timers[group], &timer{start: time.Now()})
	return len(t.timers[group]) - 1
}

// Stop returns -1 if the timer doesn't exist (e.g. the group was
// cleared while it was running)
func (t *timers) Stop(group string, index int) time.Duration {
	t.Lock()
	defer t.Unlock()

	timers, found := t.timers[group]
	if !found || index < 0 || index >= len(timers) {
		return -1
	}
	timers[index].elapsed = time.Since(timers[index].start)
	timers[index].stopped = true
	return timers[index].elapsed
}

func (t *timers) ReadAll() *data.Timers {
	t.RLock()
	defer t.RUnlock()

	totals, averages := make(map[string]int64), make(map[string]int64)
	for group, timers := range t.timers {
		var total time.Duration
		var stopped int64

		for _, timer := range timers {
			if !timer.stopped {
				continue
			}
			total += timer.elapsed
			stopped++
		}
		totals[group] = int64(total)
		if stopped > 0 {
			averages[group] = int64(total) / stopped
		}
	}
	return &data.Timers{
		Totals:   totals,
		Averages: averages,
	}
}
