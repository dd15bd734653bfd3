package interaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/galaxyfield/aimcore/collision"
)

// Transition describes one change of a category's machine.
type Transition struct {
	Session    uuid.UUID
	Category   collision.Category
	From       Phase
	To         Phase
	PreviousID string
	ID         string
	Event      Event
	At         time.Time
}

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s(%s) -> %s(%s) on %s", t.Category, t.From, t.PreviousID, t.To, t.ID, t.Event)
}

// Observer receives transitions as they happen.
type Observer interface {
	OnTransition(Transition)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(Transition)

// OnTransition calls f.
func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}

// Recorder is an Observer that keeps every transition it sees.
type Recorder struct {
	Transitions []Transition
}

// OnTransition appends t.
func (r *Recorder) OnTransition(t Transition) {
	r.Transitions = append(r.Transitions, t)
}

// Reset forgets every recorded transition.
func (r *Recorder) Reset() {
	r.Transitions = nil
}
