package domain

// WorldState is one possible world: a total assignment of a role to every
// agent id that existed when beliefs were initialized. It is a hypothesis
// the owning agent has not yet ruled out.
type WorldState map[string]Role

func (ws WorldState) Clone() WorldState {
	out := make(WorldState, len(ws))
	for id, role := range ws {
		out[id] = role
	}
	return out
}

// BeliefState is the epistemic state owned by exactly one agent. Worlds
// shrink under hard evidence, Sus accumulates under hearsay, Memory keeps
// the chronological record of everything the agent perceived or was told.
type BeliefState struct {
	Worlds []WorldState
	Memory []MemoryItem
	Sus    map[string]float64
}

func NewBeliefState() *BeliefState {
	return &BeliefState{Sus: make(map[string]float64)}
}

// BadWorldCount returns how many retained worlds assign RoleBad to the
// given agent. The policy layer uses it to rank suspects and to vote.
func (b *BeliefState) BadWorldCount(agentID string) int {
	count := 0
	for _, ws := range b.Worlds {
		if ws[agentID] == RoleBad {
			count++
		}
	}
	return count
}

// AdjustSus shifts the suspicion score for a tracked agent and clamps it
// at zero. Untracked ids are ignored.
func (b *BeliefState) AdjustSus(agentID string, delta float64) {
	current, ok := b.Sus[agentID]
	if !ok {
		return
	}
	current += delta
	if current < 0 {
		current = 0
	}
	b.Sus[agentID] = current
}
