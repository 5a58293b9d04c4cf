package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewMemoryItem_ObservationIsFact(t *testing.T) {
	ev := &Event{ID: uuid.New(), Action: ActionKill, Actor: "npc1"}

	item := NewMemoryItem(ev, SourceObservation, "ignored")

	assert.Equal(t, CertaintyFact, item.Certainty)
	assert.Empty(t, item.SourceID, "observations carry no relayer")
	assert.Same(t, ev, item.Event, "events are shared by reference, not copied")
}

func TestNewMemoryItem_HearsayIsUncertain(t *testing.T) {
	ev := &Event{ID: uuid.New(), Action: ActionSay, Actor: "npc1"}

	item := NewMemoryItem(ev, SourceHearsay, "npc1")

	assert.Equal(t, CertaintyUncertain, item.Certainty)
	assert.Equal(t, "npc1", item.SourceID)
}

func TestBeliefState_AdjustSus(t *testing.T) {
	b := NewBeliefState()
	b.Sus["npc1"] = 0.1

	b.AdjustSus("npc1", 0.2)
	assert.InDelta(t, 0.3, b.Sus["npc1"], 1e-9)

	// Clamped at zero.
	b.AdjustSus("npc1", -1.0)
	assert.Zero(t, b.Sus["npc1"])

	// Untracked ids are ignored.
	b.AdjustSus("ghost", 0.5)
	_, tracked := b.Sus["ghost"]
	assert.False(t, tracked)
}

func TestWorldState_Clone(t *testing.T) {
	ws := WorldState{"npc1": RoleBad, "npc2": RoleGood}
	clone := ws.Clone()
	clone["npc1"] = RoleGood

	assert.Equal(t, RoleBad, ws["npc1"], "clone must not alias the original")
}
