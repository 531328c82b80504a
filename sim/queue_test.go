package sim

import (
	"container/heap"
	"testing"
)

type nopEvent struct{ id string }

func (ev *nopEvent) Kind() EventKind        { return KindMovementTick }
func (ev *nopEvent) Execute(e *Engine) error { return nil }

func TestEventQueue_PopsInTimeOrder(t *testing.T) {
	// GIVEN events pushed out of time order
	eq := make(EventQueue, 0)
	heap.Push(&eq, &ScheduledEvent{At: 30, Seq: 1, Event: &nopEvent{"c"}})
	heap.Push(&eq, &ScheduledEvent{At: 10, Seq: 2, Event: &nopEvent{"a"}})
	heap.Push(&eq, &ScheduledEvent{At: 20, Seq: 3, Event: &nopEvent{"b"}})

	// WHEN all events are popped
	var times []float64
	for eq.Len() > 0 {
		item := heap.Pop(&eq).(*ScheduledEvent)
		times = append(times, item.At)
	}

	// THEN they come out in non-decreasing time order
	want := []float64{10, 20, 30}
	for i, at := range times {
		if at != want[i] {
			t.Errorf("pop %d: got t=%f, want t=%f", i, at, want[i])
		}
	}
}

func TestEventQueue_EqualTimesAreFIFO(t *testing.T) {
	// GIVEN three events at the same timestamp with increasing sequence numbers
	eq := make(EventQueue, 0)
	heap.Push(&eq, &ScheduledEvent{At: 5, Seq: 1, Event: &nopEvent{"first"}})
	heap.Push(&eq, &ScheduledEvent{At: 5, Seq: 2, Event: &nopEvent{"second"}})
	heap.Push(&eq, &ScheduledEvent{At: 5, Seq: 3, Event: &nopEvent{"third"}})

	// WHEN popped
	var order []string
	for eq.Len() > 0 {
		item := heap.Pop(&eq).(*ScheduledEvent)
		order = append(order, item.Event.(*nopEvent).id)
	}

	// THEN scheduling order is preserved
	want := []string{"first", "second", "third"}
	for i, id := range order {
		if id != want[i] {
			t.Errorf("pop %d: got %q, want %q", i, id, want[i])
		}
	}
}

func TestEventQueue_PeekTime(t *testing.T) {
	eq := make(EventQueue, 0)
	if _, ok := eq.PeekTime(); ok {
		t.Error("PeekTime on empty queue: got ok=true, want false")
	}

	heap.Push(&eq, &ScheduledEvent{At: 42, Seq: 1, Event: &nopEvent{"x"}})
	heap.Push(&eq, &ScheduledEvent{At: 7, Seq: 2, Event: &nopEvent{"y"}})

	at, ok := eq.PeekTime()
	if !ok || at != 7 {
		t.Errorf("PeekTime: got (%f, %v), want (7, true)", at, ok)
	}
	if eq.Len() != 2 {
		t.Errorf("PeekTime modified queue length: got %d, want 2", eq.Len())
	}
}
