package service

import (
	"testing"

	"airlock/internal/domain"
	"airlock/internal/rooms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestWorld builds a player-only world on the default four-room layout
// so NPC policy never interferes with scripted assertions.
func newTestWorld(t *testing.T, roster []RosterEntry, cfg Config) *World {
	t.Helper()
	w, err := NewWorld(roster, rooms.Default([]string{"A", "B", "C", "D"}), 1, cfg, zap.NewNop())
	require.NoError(t, err)
	return w
}

func entry(id string, role domain.Role, location string) RosterEntry {
	return RosterEntry{ID: id, Role: role, Kind: domain.KindPlayer, Location: location}
}

func TestInitializeBeliefs_Cardinality(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
		entry("g3", domain.RoleGood, "A"),
		entry("g4", domain.RoleGood, "A"),
	}, Config{})

	// One bad among five: good agents cannot rule out any of the other
	// four, C(4, 1) = 4 worlds each.
	for _, id := range []string{"g1", "g2", "g3", "g4"} {
		assert.Len(t, w.AgentByID(id).Belief.Worlds, 4, id)
	}
	// The bad agent knows the full assignment.
	require.Len(t, w.AgentByID("b1").Belief.Worlds, 1)
	assert.Equal(t, domain.RoleBad, w.AgentByID("b1").Belief.Worlds[0]["b1"])
}

func TestInitializeBeliefs_TwoBad(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("b2", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
		entry("g3", domain.RoleGood, "A"),
	}, Config{})

	// C(4, 2) = 6 hypotheses for each good agent.
	assert.Len(t, w.AgentByID("g1").Belief.Worlds, 6)

	// Every good agent's world assigns itself good.
	for _, ws := range w.AgentByID("g1").Belief.Worlds {
		assert.Equal(t, domain.RoleGood, ws["g1"])
	}

	// Both conspirators share the singleton ground truth.
	for _, id := range []string{"b1", "b2"} {
		require.Len(t, w.AgentByID(id).Belief.Worlds, 1)
		ws := w.AgentByID(id).Belief.Worlds[0]
		assert.Equal(t, domain.RoleBad, ws["b1"])
		assert.Equal(t, domain.RoleBad, ws["b2"])
	}
}

func TestWitnessedKill_CollapsesWitnessWorlds(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
	}, Config{})

	require.Len(t, w.AgentByID("g1").Belief.Worlds, 2)

	ev, err := w.Apply("b1", ActionRequest{Action: domain.ActionKill, Target: "g2"})
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityWitnessed, ev.Visibility)
	assert.Equal(t, []string{"g1"}, ev.Witnesses)

	// Only worlds where the killer is bad survive.
	b := w.AgentByID("g1").Belief
	require.Len(t, b.Worlds, 1)
	assert.Equal(t, domain.RoleBad, b.Worlds[0]["b1"])
}

func TestUnwitnessedKill_LeavesOthersUntouched(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "B"),
	}, Config{})

	_, err := w.Apply("b1", ActionRequest{Action: domain.ActionKill, Target: "g1"})
	require.NoError(t, err)

	// g2 was elsewhere and learns nothing.
	assert.Len(t, w.AgentByID("g2").Belief.Worlds, 2)
	assert.Empty(t, w.AgentByID("g2").Belief.Memory)
}

func TestEliminationRefusedWhenItWouldEmpty(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
	}, Config{})

	// Force g1 into a state where the only hypothesis contradicts the
	// upcoming observation.
	g1 := w.AgentByID("g1")
	g1.Belief.Worlds = []domain.WorldState{
		{"b1": domain.RoleGood, "g1": domain.RoleGood, "g2": domain.RoleBad},
	}

	_, err := w.Apply("b1", ActionRequest{Action: domain.ActionKill, Target: "g2"})
	require.NoError(t, err)

	// The contradictory elimination is refused and the prior set kept.
	require.Len(t, g1.Belief.Worlds, 1)
	assert.Equal(t, domain.RoleBad, g1.Belief.Worlds[0]["g2"])
}

func TestAccusationRaisesSuspicion(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
	}, Config{})

	_, err := w.Apply("b1", ActionRequest{
		Action:    domain.ActionSay,
		Predicate: "role",
		Subject:   "g2",
		Value:     "bad",
	})
	require.NoError(t, err)

	// Hearers track the accusation; the subject ignores claims about
	// itself; the speaker observed its own statement, so no hearsay.
	assert.InDelta(t, AccusationSusDelta, w.AgentByID("g1").Belief.Sus["g2"], 1e-9)
	assert.Zero(t, w.AgentByID("g2").Belief.Sus["g2"])
	assert.Zero(t, w.AgentByID("b1").Belief.Sus["g2"])
}

func TestNonRoleStatement_NoSuspicion(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
	}, Config{})

	_, err := w.Apply("b1", ActionRequest{
		Action:    domain.ActionSay,
		Predicate: "location",
		Subject:   "b1",
		Value:     "A",
	})
	require.NoError(t, err)

	for _, sus := range w.AgentByID("g1").Belief.Sus {
		assert.Zero(t, sus)
	}
}

func TestSaboWitness_IsFactNotSuspicion(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
	}, Config{})

	_, err := w.Apply("b1", ActionRequest{Action: domain.ActionSabo})
	require.NoError(t, err)

	// A witnessed sabo is an observation. The hearsay suspicion bump only
	// applies when the sabotage is relayed.
	g1 := w.AgentByID("g1")
	require.Len(t, g1.Belief.Memory, 1)
	assert.Equal(t, domain.CertaintyFact, g1.Belief.Memory[0].Certainty)
	assert.Zero(t, g1.Belief.Sus["b1"])
}

func TestSaboHearsay_RaisesSuspicion(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
	}, Config{})

	// Deliver a relayed sabo directly: g1 hears about it from b1.
	ev := w.newEvent(domain.ActionSabo, "b1", "B", nil, domain.VisibilityPublic, nil)
	w.deliver("g1", ev, domain.SourceHearsay, "b1")

	assert.InDelta(t, SaboHearsaySusDelta, w.AgentByID("g1").Belief.Sus["b1"], 1e-9)
}

func TestVoteResult_SelfEjectedGoodNarrowsOnVoters(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
		entry("g3", domain.RoleGood, "A"),
		entry("g4", domain.RoleGood, "A"),
	}, Config{StatementSlice: 1, VotingWindow: 2, ResolutionDelay: 1})

	_, err := w.Apply("g2", ActionRequest{Action: domain.ActionReport})
	require.NoError(t, err)
	w.AdvanceTime(5) // everyone's statement slot elapses
	require.Equal(t, string(PhaseVoting), w.Phase())

	require.NoError(t, w.CastVote("g2", "g1"))
	require.NoError(t, w.CastVote("g3", "g1"))
	w.AdvanceTime(2)
	w.AdvanceTime(1)

	g1 := w.AgentByID("g1")
	require.False(t, g1.Alive())
	require.False(t, w.GameOver())

	// g1 narrows on its voters in order: the first narrowing (g2 bad)
	// lands, the second (g3 bad) would empty a one-bad space and is
	// refused.
	require.Len(t, g1.Belief.Worlds, 1)
	assert.Equal(t, domain.RoleBad, g1.Belief.Worlds[0]["g2"])

	// Bystanders infer the ejected agent was good because the game went
	// on: C(4,1) = 4 drops to 3.
	assert.Len(t, w.AgentByID("g4").Belief.Worlds, 3)
	for _, ws := range w.AgentByID("g4").Belief.Worlds {
		assert.Equal(t, domain.RoleGood, ws["g1"])
	}
}

func TestVoteResult_DeliveredToEjectedAgent(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
		entry("g3", domain.RoleGood, "A"),
	}, Config{StatementSlice: 1, VotingWindow: 1, ResolutionDelay: 1})

	_, err := w.Apply("g2", ActionRequest{Action: domain.ActionReport})
	require.NoError(t, err)
	w.AdvanceTime(4)
	require.NoError(t, w.CastVote("g2", "g1"))
	require.NoError(t, w.CastVote("g3", "g1"))
	w.AdvanceTime(1)
	w.AdvanceTime(1)

	g1 := w.AgentByID("g1")
	require.False(t, g1.Alive())

	last := g1.Belief.Memory[len(g1.Belief.Memory)-1]
	assert.Equal(t, domain.ActionVoteResult, last.Event.Action)
	// The tally is announced to everyone at once, the ejected included,
	// so every recipient holds it as fact.
	assert.Equal(t, domain.CertaintyFact, last.Certainty)
	assert.Equal(t, "g1", last.Event.VotedOutID)
	assert.Equal(t, map[string]string{"g2": "g1", "g3": "g1"}, last.Event.Ballots)
}

func TestEliminateAllDeadBadWorlds(t *testing.T) {
	w := newTestWorld(t, []RosterEntry{
		entry("b1", domain.RoleBad, "A"),
		entry("g1", domain.RoleGood, "A"),
		entry("g2", domain.RoleGood, "A"),
		entry("g3", domain.RoleGood, "A"),
	}, Config{})

	g1 := w.AgentByID("g1")
	require.Len(t, g1.Belief.Worlds, 3)

	w.beliefs.EliminateAllDeadBadWorlds(w.AliveAgents(), []string{"g2"})

	// The world in which g2 (now known dead) was the bad one is gone.
	require.Len(t, g1.Belief.Worlds, 2)
	for _, ws := range g1.Belief.Worlds {
		assert.NotEqual(t, domain.RoleBad, ws["g2"])
	}
}

func TestCombinations(t *testing.T) {
	out := combinations([]string{"a", "b", "c", "d"}, 2)
	assert.Len(t, out, 6)

	assert.Len(t, combinations([]string{"a", "b"}, 0), 1)
	assert.Nil(t, combinations([]string{"a"}, 2))
}
