package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_BidirectionalFixup(t *testing.T) {
	m := New(map[string][]string{
		"Engine":  {"Storage"},
		"Storage": nil,
	})

	assert.True(t, m.AreConnected("Engine", "Storage"))
	assert.True(t, m.AreConnected("Storage", "Engine"), "one-way edges must be mirrored")
	assert.False(t, m.AreConnected("Engine", "Reactor"))
}

func TestDefault_FourRoomDoubleRing(t *testing.T) {
	m := Default([]string{"A", "B", "C", "D"})

	assert.ElementsMatch(t, []string{"B", "C"}, m.ConnectedRooms("A"))
	assert.ElementsMatch(t, []string{"A", "D"}, m.ConnectedRooms("B"))
	assert.ElementsMatch(t, []string{"A", "D"}, m.ConnectedRooms("C"))
	assert.ElementsMatch(t, []string{"B", "C"}, m.ConnectedRooms("D"))
}

func TestDefault_Ring(t *testing.T) {
	m := Default([]string{"A", "B", "C", "D", "E"})

	assert.ElementsMatch(t, []string{"B", "E"}, m.ConnectedRooms("A"))
	assert.ElementsMatch(t, []string{"A", "C"}, m.ConnectedRooms("B"))
	assert.ElementsMatch(t, []string{"D", "A"}, m.ConnectedRooms("E"))
}

func TestOccupancy(t *testing.T) {
	m := Default([]string{"A", "B"})
	m.Place("npc1", "A")
	m.Place("npc2", "A")

	assert.Equal(t, []string{"npc1", "npc2"}, m.AgentsAt("A"))

	m.Relocate("npc1", "A", "B")
	assert.Equal(t, []string{"npc2"}, m.AgentsAt("A"))
	assert.Equal(t, []string{"npc1"}, m.AgentsAt("B"))

	m.MarkDead("npc2", "A")
	assert.Empty(t, m.AgentsAt("A"))
	assert.Equal(t, []string{"npc2"}, m.DeadAgentsAt("A"))

	m.Remove("npc2", "A")
	assert.Empty(t, m.DeadAgentsAt("A"))
}

func TestAddRoom_Disconnected(t *testing.T) {
	m := Default([]string{"A", "B"})
	m.AddRoom("Assembly")

	assert.True(t, m.Contains("Assembly"))
	assert.Empty(t, m.ConnectedRooms("Assembly"))
	assert.Equal(t, []string{"A", "Assembly", "B"}, m.RoomNames())
}
