package scheduler

import (
	"time"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// entry is one pending callback: a recurring alarm occurrence or a
// one-shot (snooze) trigger.
type entry struct {
	id      string
	fireAt  time.Time
	alarm   models.Alarm
	oneShot bool
	index   int
}

// entryHeap orders entries by fire time; ties broken by id for
// deterministic pops.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].id < h[j].id
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
