package domain

// Topology is the room/map collaborator consumed by the simulation core.
// It owns adjacency and room occupancy; the core never inspects map data
// structures directly.
type Topology interface {
	Contains(room string) bool
	AreConnected(a, b string) bool
	ConnectedRooms(room string) []string
	RoomNames() []string

	// Occupancy bookkeeping. The core keeps these in sync with agent
	// state so reports and kills can find co-located agents and corpses.
	Place(agentID, room string)
	Relocate(agentID, from, to string)
	MarkDead(agentID, room string)
	Remove(agentID, room string)
	AgentsAt(room string) []string
	DeadAgentsAt(room string) []string
}

// EventSink receives every dispatched event, in dispatch order. Sinks are
// write-only diagnostics; the core never reads them back.
type EventSink interface {
	Record(ev *Event) error
}
