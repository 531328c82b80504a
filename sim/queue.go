package sim

// ScheduledEvent wraps an event in the priority queue with its dispatch time
// and a monotonic sequence number. Entries are immutable once pushed;
// cancellation is a staleness check in the event's Execute, never queue
// surgery.
type ScheduledEvent struct {
	At    float64
	Seq   int64
	Event Event
}

// EventQueue implements heap.Interface ordered by (At, Seq): non-decreasing
// scheduled time, FIFO among equal times.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []*ScheduledEvent

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].At != eq[j].At {
		return eq[i].At < eq[j].At
	}
	return eq[i].Seq < eq[j].Seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(*ScheduledEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}

// PeekTime returns the scheduled time of the minimum entry.
func (eq EventQueue) PeekTime() (float64, bool) {
	if len(eq) == 0 {
		return 0, false
	}
	return eq[0].At, true
}
