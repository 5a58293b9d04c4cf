// Package policy holds the scripted NPC decision heuristics. Every
// function is pure over the world view plus an injected random source, so
// a fixed seed replays the exact same decision sequence.
package policy

import (
	"math/rand"

	"airlock/internal/domain"
)

// WorldView is the read-only slice of the world the heuristics consume.
// *service.World satisfies it.
type WorldView interface {
	Agents() []*domain.Agent
	AliveAgents() []*domain.Agent
	AgentByID(id string) *domain.Agent
	AreConnected(a, b string) bool
	ConnectedRooms(room string) []string
	DeadAgentsAt(room string) []string
}

// Decision is a requested action. The zero value is idle.
type Decision struct {
	Action domain.Action
	Room   string
	Target string
}

const (
	// reportWorldThreshold: a good NPC reports once its hypothesis space
	// has narrowed this far.
	reportWorldThreshold = 2
	// chaseSusThreshold: suspicion above this sends a good NPC toward
	// the suspect.
	chaseSusThreshold = 0.5

	goodActProbability   = 0.8
	badBlendProbability  = 0.3
	accuseProbability    = 0.7
	tieAccuseProbability = 0.6
	defendProbability    = 0.2
	claimProbability     = 0.2
	deflectProbability   = 0.6
	badDefendProbability = 0.3
	badVoteGoodBias      = 0.8
)

// ChooseAction decides the next free-play action for an NPC.
func ChooseAction(npc *domain.Agent, w WorldView, rng *rand.Rand) Decision {
	if npc.Role == domain.RoleBad {
		return chooseActionBad(npc, w, rng)
	}
	return chooseActionGood(npc, w, rng)
}

func chooseActionGood(npc *domain.Agent, w WorldView, rng *rand.Rand) Decision {
	// A corpse in the room is reported immediately.
	if len(w.DeadAgentsAt(npc.Location)) > 0 {
		return Decision{Action: domain.ActionReport}
	}

	// Near-certain about the bad set: call the meeting.
	if b := npc.Belief; b != nil && len(b.Worlds) > 0 && len(b.Worlds) <= reportWorldThreshold {
		for _, ws := range b.Worlds {
			for _, role := range ws {
				if role == domain.RoleBad {
					return Decision{Action: domain.ActionReport}
				}
			}
		}
	}

	// Shadow the most suspicious living agent.
	if target := mostSuspicious(npc, w); target != nil && npc.Belief.Sus[target.ID] > chaseSusThreshold {
		if target.Location != npc.Location && w.AreConnected(npc.Location, target.Location) {
			return Decision{Action: domain.ActionEnter, Room: target.Location}
		}
		if room := randomRoom(w.ConnectedRooms(npc.Location), rng); room != "" {
			return Decision{Action: domain.ActionEnter, Room: room}
		}
	}

	if rng.Float64() < goodActProbability {
		if rng.Float64() < 0.5 {
			if room := randomRoom(w.ConnectedRooms(npc.Location), rng); room != "" {
				return Decision{Action: domain.ActionEnter, Room: room}
			}
		}
		return Decision{Action: domain.ActionTask}
	}
	return Decision{Action: domain.ActionIdle}
}

func chooseActionBad(npc *domain.Agent, w WorldView, rng *rand.Rand) Decision {
	if target := KillOpportunity(npc, w); target != "" {
		return Decision{Action: domain.ActionKill, Target: target}
	}
	// Blend in.
	if rng.Float64() < badBlendProbability {
		if rng.Float64() < 0.5 {
			if room := randomRoom(w.ConnectedRooms(npc.Location), rng); room != "" {
				return Decision{Action: domain.ActionEnter, Room: room}
			}
		}
		return Decision{Action: domain.ActionTask}
	}
	return Decision{Action: domain.ActionIdle}
}

// KillOpportunity reports a target id when the bad agent is alone with
// exactly one living good agent, i.e. a kill nobody else would witness.
func KillOpportunity(npc *domain.Agent, w WorldView) string {
	if npc.Role != domain.RoleBad {
		return ""
	}
	var companion *domain.Agent
	for _, a := range w.AliveAgents() {
		if a.ID == npc.ID || a.Location != npc.Location {
			continue
		}
		if companion != nil {
			return ""
		}
		companion = a
	}
	if companion == nil || companion.Role != domain.RoleGood {
		return ""
	}
	return companion.ID
}

// ChooseStatement decides what, if anything, an NPC says during its
// meeting slot. Nil means it stays silent.
func ChooseStatement(npc *domain.Agent, w WorldView, rng *rand.Rand) *domain.Statement {
	if npc.Role == domain.RoleBad {
		return chooseStatementBad(npc, w, rng)
	}
	return chooseStatementGood(npc, w, rng)
}

func chooseStatementGood(npc *domain.Agent, w WorldView, rng *rand.Rand) *domain.Statement {
	b := npc.Belief
	if b != nil && len(b.Worlds) > 0 {
		candidates, maxScore := topSuspects(npc, w)
		switch {
		case len(candidates) == 1 && maxScore*2 >= len(b.Worlds):
			if rng.Float64() < accuseProbability {
				return mustStatement(domain.PredicateRole, candidates[0], string(domain.RoleBad), npc.ID)
			}
		case len(candidates) > 1:
			target, sus := bestBySus(b, candidates)
			if target != "" && sus > chaseSusThreshold && rng.Float64() < tieAccuseProbability {
				return mustStatement(domain.PredicateRole, target, string(domain.RoleBad), npc.ID)
			}
		}
	}
	if rng.Float64() < defendProbability {
		return mustStatement(domain.PredicateLocation, npc.ID, npc.Location, npc.ID)
	}
	if rng.Float64() < claimProbability {
		return mustStatement(domain.PredicateDid, npc.ID, string(domain.BehaviorTask), npc.ID)
	}
	return nil
}

func chooseStatementBad(npc *domain.Agent, w WorldView, rng *rand.Rand) *domain.Statement {
	var goodAgents []*domain.Agent
	for _, a := range w.AliveAgents() {
		if a.ID != npc.ID && a.Role == domain.RoleGood {
			goodAgents = append(goodAgents, a)
		}
	}
	if len(goodAgents) == 0 {
		return nil
	}
	if rng.Float64() < deflectProbability {
		target := goodAgents[rng.Intn(len(goodAgents))]
		return mustStatement(domain.PredicateRole, target.ID, string(domain.RoleBad), npc.ID)
	}
	if rng.Float64() < badDefendProbability {
		return mustStatement(domain.PredicateLocation, npc.ID, npc.Location, npc.ID)
	}
	if rng.Float64() < claimProbability {
		return mustStatement(domain.PredicateDid, npc.ID, string(domain.BehaviorTask), npc.ID)
	}
	return nil
}

// ChooseVote picks a ballot target, or empty to abstain. Good NPCs vote
// for the agent that is bad in the most retained worlds, breaking ties by
// suspicion and abstaining when the tie is unresolvable. Bad NPCs mostly
// pick a good victim.
func ChooseVote(npc *domain.Agent, w WorldView, rng *rand.Rand) string {
	if npc.Role == domain.RoleBad {
		return chooseVoteBad(npc, w, rng)
	}
	return chooseVoteGood(npc, w)
}

func chooseVoteGood(npc *domain.Agent, w WorldView) string {
	b := npc.Belief
	if b == nil {
		return ""
	}
	candidates, maxScore := topSuspects(npc, w)
	if maxScore == 0 || len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	target, sus := bestBySus(b, candidates)
	if target == "" || sus == 0 {
		return ""
	}
	return target
}

func chooseVoteBad(npc *domain.Agent, w WorldView, rng *rand.Rand) string {
	var others, goodAgents []*domain.Agent
	for _, a := range w.AliveAgents() {
		if a.ID == npc.ID {
			continue
		}
		others = append(others, a)
		if a.Role == domain.RoleGood {
			goodAgents = append(goodAgents, a)
		}
	}
	if len(others) == 0 {
		return ""
	}
	if len(goodAgents) > 0 && rng.Float64() < badVoteGoodBias {
		return goodAgents[rng.Intn(len(goodAgents))].ID
	}
	return others[rng.Intn(len(others))].ID
}

// topSuspects returns the living agents that are bad in the most retained
// worlds, and that maximum count.
func topSuspects(npc *domain.Agent, w WorldView) ([]string, int) {
	b := npc.Belief
	if b == nil {
		return nil, 0
	}
	maxScore := 0
	var candidates []string
	for _, a := range w.AliveAgents() {
		if a.ID == npc.ID {
			continue
		}
		score := b.BadWorldCount(a.ID)
		switch {
		case score > maxScore:
			maxScore = score
			candidates = []string{a.ID}
		case score == maxScore && score > 0:
			candidates = append(candidates, a.ID)
		}
	}
	return candidates, maxScore
}

// bestBySus picks the candidate with the strictly highest suspicion.
// Returns empty when suspicion cannot break the tie.
func bestBySus(b *domain.BeliefState, candidates []string) (string, float64) {
	best, bestSus, unique := "", -1.0, false
	for _, id := range candidates {
		sus := b.Sus[id]
		switch {
		case sus > bestSus:
			best, bestSus, unique = id, sus, true
		case sus == bestSus:
			unique = false
		}
	}
	if !unique || bestSus <= 0 {
		return "", 0
	}
	return best, bestSus
}

func mostSuspicious(npc *domain.Agent, w WorldView) *domain.Agent {
	if npc.Belief == nil {
		return nil
	}
	var best *domain.Agent
	bestSus := -1.0
	for _, a := range w.AliveAgents() {
		if a.ID == npc.ID {
			continue
		}
		if sus := npc.Belief.Sus[a.ID]; sus > bestSus {
			best, bestSus = a, sus
		}
	}
	return best
}

func randomRoom(names []string, rng *rand.Rand) string {
	if len(names) == 0 {
		return ""
	}
	return names[rng.Intn(len(names))]
}

// mustStatement builds a statement from trusted policy inputs; the fixed
// predicates here always validate.
func mustStatement(predicate domain.Predicate, subject, value, speaker string) *domain.Statement {
	st, err := domain.NewStatement(string(predicate), subject, value, speaker, 0)
	if err != nil {
		return nil
	}
	return st
}
