// Package rooms implements the topology collaborator: named rooms with
// bidirectional connections and per-room occupancy tracking.
package rooms

import "sort"

type room struct {
	connections map[string]bool
	occupants   map[string]bool
	corpses     map[string]bool
}

func newRoom() *room {
	return &room{
		connections: make(map[string]bool),
		occupants:   make(map[string]bool),
		corpses:     make(map[string]bool),
	}
}

// Map is a fixed set of rooms. Connections are always bidirectional: a
// one-way edge in the input is mirrored at construction.
type Map struct {
	rooms map[string]*room
	names []string
}

// New builds a map from explicit adjacency. Every room named as a
// connection target must also appear as a key or it is ignored.
func New(connections map[string][]string) *Map {
	m := &Map{rooms: make(map[string]*room)}
	for name := range connections {
		m.rooms[name] = newRoom()
		m.names = append(m.names, name)
	}
	sort.Strings(m.names)
	for name, targets := range connections {
		for _, target := range targets {
			if _, ok := m.rooms[target]; !ok {
				continue
			}
			m.rooms[name].connections[target] = true
			m.rooms[target].connections[name] = true
		}
	}
	return m
}

// Default wires rooms the way the shipped layouts do: two rooms become a
// pair, four rooms a double ring, anything longer a simple ring. A single
// room has no edges.
func Default(names []string) *Map {
	connections := make(map[string][]string, len(names))
	for _, name := range names {
		connections[name] = nil
	}
	switch {
	case len(names) == 2:
		connections[names[0]] = []string{names[1]}
	case len(names) == 4:
		a, b, c, d := names[0], names[1], names[2], names[3]
		connections[a] = []string{b, c}
		connections[d] = []string{b, c}
	case len(names) >= 3:
		for i := 0; i < len(names); i++ {
			connections[names[i]] = append(connections[names[i]], names[(i+1)%len(names)])
		}
	}
	return New(connections)
}

func (m *Map) Contains(name string) bool {
	_, ok := m.rooms[name]
	return ok
}

func (m *Map) AreConnected(a, b string) bool {
	r, ok := m.rooms[a]
	return ok && r.connections[b]
}

func (m *Map) ConnectedRooms(name string) []string {
	r, ok := m.rooms[name]
	if !ok {
		return nil
	}
	return sortedKeys(r.connections)
}

func (m *Map) RoomNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// AddRoom inserts a disconnected room, e.g. a neutral meeting location.
// Adding an existing room is a no-op.
func (m *Map) AddRoom(name string) {
	if _, ok := m.rooms[name]; ok {
		return
	}
	m.rooms[name] = newRoom()
	m.names = append(m.names, name)
	sort.Strings(m.names)
}

func (m *Map) Place(agentID, name string) {
	if r, ok := m.rooms[name]; ok {
		r.occupants[agentID] = true
	}
}

func (m *Map) Relocate(agentID, from, to string) {
	if r, ok := m.rooms[from]; ok {
		delete(r.occupants, agentID)
	}
	m.Place(agentID, to)
}

// MarkDead turns a living occupant into a corpse in place.
func (m *Map) MarkDead(agentID, name string) {
	r, ok := m.rooms[name]
	if !ok {
		return
	}
	delete(r.occupants, agentID)
	r.corpses[agentID] = true
}

// Remove drops an agent from a room entirely, alive or dead.
func (m *Map) Remove(agentID, name string) {
	r, ok := m.rooms[name]
	if !ok {
		return
	}
	delete(r.occupants, agentID)
	delete(r.corpses, agentID)
}

func (m *Map) AgentsAt(name string) []string {
	r, ok := m.rooms[name]
	if !ok {
		return nil
	}
	return sortedKeys(r.occupants)
}

func (m *Map) DeadAgentsAt(name string) []string {
	r, ok := m.rooms[name]
	if !ok {
		return nil
	}
	return sortedKeys(r.corpses)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
