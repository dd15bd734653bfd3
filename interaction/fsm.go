// Package interaction holds the hover/active state machines driven by containment query results
// and activation input, plus the throttle that limits how often detection runs.
package interaction

import (
	"fmt"

	"github.com/galaxyfield/aimcore/collision"
)

// Phase is the state of one category's machine.
type Phase uint8

// Machine phases. Selection machines (nodes, interactive elements) skip Hovered.
const (
	Idle Phase = iota
	Hovered
	Active
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Hovered:
		return "hovered"
	case Active:
		return "active"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Event drives a machine from one phase to another.
type Event uint8

// Machine events.
const (
	// EventHit is a query result containing the aim point. It carries the hit id.
	EventHit Event = iota
	// EventMiss is a query result containing nothing.
	EventMiss
	// EventActivate is an activation input edge.
	EventActivate
	// EventDeactivate is a deactivation input edge.
	EventDeactivate
	// EventOutOfRange fires when the camera moved too far from the active region.
	EventOutOfRange
	// EventReset tears the machine down, e.g. when interaction is suppressed.
	EventReset
)

var eventNames = map[Event]string{
	EventHit:        "hit",
	EventMiss:       "miss",
	EventActivate:   "activate",
	EventDeactivate: "deactivate",
	EventOutOfRange: "out_of_range",
	EventReset:      "reset",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

type transitionKey struct {
	from  Phase
	event Event
}

type transitionTable map[transitionKey]Phase

// clusterTable: Idle -> Hovered -> Active. A hit while hovered re-targets the hover (A to B).
// Hits and misses are ignored while active.
var clusterTable = transitionTable{
	{Idle, EventHit}:          Hovered,
	{Hovered, EventHit}:       Hovered,
	{Hovered, EventMiss}:      Idle,
	{Hovered, EventActivate}:  Active,
	{Hovered, EventReset}:     Idle,
	{Active, EventDeactivate}: Idle,
	{Active, EventOutOfRange}: Idle,
	{Active, EventReset}:      Idle,
}

// selectionTable: a hit selects directly, a miss clears.
var selectionTable = transitionTable{
	{Idle, EventHit}:          Active,
	{Active, EventHit}:        Active,
	{Active, EventMiss}:       Idle,
	{Active, EventDeactivate}: Idle,
	{Active, EventReset}:      Idle,
}

// Machine is the finite state machine of one category. It holds a single selected id, so at most
// one entity per category is hovered or active.
type Machine struct {
	category collision.Category
	table    transitionTable
	phase    Phase
	id       string
}

// NewMachine returns an idle machine for c. Clusters get the hover/active table, nodes and
// interactive elements the selection table.
func NewMachine(c collision.Category) *Machine {
	table := selectionTable
	if c == collision.Clusters {
		table = clusterTable
	}
	return &Machine{category: c, table: table}
}

// Category returns the category this machine tracks.
func (m *Machine) Category() collision.Category {
	return m.category
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// ID returns the id of the hovered or active entity, empty while idle.
func (m *Machine) ID() string {
	return m.id
}

// Fire applies ev. id is the hit id for EventHit and ignored otherwise. The returned transition
// is only meaningful when the bool is true, which happens when the phase or the id changed.
func (m *Machine) Fire(ev Event, id string) (Transition, bool) {
	next, ok := m.table[transitionKey{m.phase, ev}]
	if !ok {
		return Transition{}, false
	}
	nextID := m.id
	switch {
	case next == Idle:
		nextID = ""
	case ev == EventHit:
		if id == "" {
			return Transition{}, false
		}
		nextID = id
	}
	if next == m.phase && nextID == m.id {
		return Transition{}, false
	}
	tr := Transition{
		Category:   m.category,
		From:       m.phase,
		To:         next,
		PreviousID: m.id,
		ID:         nextID,
		Event:      ev,
	}
	m.phase, m.id = next, nextID
	return tr, true
}

// Observe feeds a query result into the machine: a hit with its id or a miss.
func (m *Machine) Observe(id string, hit bool) (Transition, bool) {
	if hit {
		return m.Fire(EventHit, id)
	}
	return m.Fire(EventMiss, "")
}
