package service

import (
	"sort"

	"airlock/internal/domain"
	"go.uber.org/zap"
)

const (
	// AccusationSusDelta is added to the receiver's suspicion of the
	// subject when it hears a "role is bad" claim.
	AccusationSusDelta = 0.1
	// SaboHearsaySusDelta is added to the receiver's suspicion of the
	// actor when it hears about a sabotage second-hand.
	SaboHearsaySusDelta = 0.2
)

// Roster is the read view of the agent population the belief engine needs
// to evaluate vote results.
type Roster interface {
	AgentByID(id string) *domain.Agent
	AliveAgents() []*domain.Agent
	Agents() []*domain.Agent
}

// BeliefService initializes belief states and applies the two update
// branches: hard elimination of inconsistent worlds for facts, suspicion
// adjustment for hearsay. It mutates only the receiving agent's state.
type BeliefService struct {
	logger *zap.Logger
}

func NewBeliefService(logger *zap.Logger) *BeliefService {
	return &BeliefService{logger: logger}
}

// InitializeBeliefs builds the starting hypothesis space for every agent
// from the fixed role assignment. A good agent cannot distinguish any
// size-k subset of the others as the bad set, so it starts with C(n-1, k)
// worlds. A bad agent knows the full conspiracy and starts with the single
// ground-truth world.
func (s *BeliefService) InitializeBeliefs(agents []*domain.Agent) {
	ids := make([]string, 0, len(agents))
	truth := make(domain.WorldState, len(agents))
	badCount := 0
	for _, a := range agents {
		ids = append(ids, a.ID)
		truth[a.ID] = a.Role
		if a.Role == domain.RoleBad {
			badCount++
		}
	}

	for _, a := range agents {
		b := domain.NewBeliefState()
		for _, id := range ids {
			b.Sus[id] = 0
		}

		if a.Role == domain.RoleBad {
			b.Worlds = []domain.WorldState{truth.Clone()}
			a.Belief = b
			continue
		}

		others := make([]string, 0, len(ids)-1)
		for _, id := range ids {
			if id != a.ID {
				others = append(others, id)
			}
		}
		for _, badSet := range combinations(others, badCount) {
			ws := make(domain.WorldState, len(ids))
			for _, id := range ids {
				ws[id] = domain.RoleGood
			}
			for _, id := range badSet {
				ws[id] = domain.RoleBad
			}
			b.Worlds = append(b.Worlds, ws)
		}
		a.Belief = b
	}
}

// Update applies one memory item to the receiving agent. The item is
// appended to the agent's chronological memory, then routed by certainty.
func (s *BeliefService) Update(a *domain.Agent, item domain.MemoryItem, roster Roster) {
	if a.Belief == nil || item.Event == nil {
		return
	}
	a.Belief.Memory = append(a.Belief.Memory, item)

	switch item.Certainty {
	case domain.CertaintyFact:
		s.applyFact(a, item.Event, roster)
	case domain.CertaintyUncertain:
		s.applyUncertain(a, item.Event)
	}
}

// applyFact performs S5-style elimination: worlds inconsistent with the
// observed event are permanently discarded.
func (s *BeliefService) applyFact(a *domain.Agent, ev *domain.Event, roster Roster) {
	switch ev.Action {
	case domain.ActionKill:
		// Only bad agents kill.
		s.retainWorlds(a, "kill", func(ws domain.WorldState) bool {
			return ws[ev.Actor] == domain.RoleBad
		})
	case domain.ActionVoteResult:
		s.applyVoteResult(a, ev, roster)
	}
	// enter is informational, report and sabo carry no hard propositional
	// content on their own.
}

func (s *BeliefService) applyVoteResult(a *domain.Agent, ev *domain.Event, roster Roster) {
	if ev.VotedOutID == a.ID && a.Role == domain.RoleGood {
		// I am good and got ejected: anyone who voted for me acted
		// against a known-good agent. Narrow voter by voter, stopping
		// before the hypothesis space would empty out.
		for _, voter := range sortedBallotVoters(ev.Ballots) {
			if voter == a.ID || ev.Ballots[voter] != a.ID {
				continue
			}
			agent := roster.AgentByID(voter)
			if agent == nil || !agent.Alive() {
				continue
			}
			if !s.retainWorlds(a, "vote against self", func(ws domain.WorldState) bool {
				return ws[voter] == domain.RoleBad
			}) {
				break
			}
		}
		return
	}

	if ev.VotedOutID != "" && ev.VotedOutID != a.ID && !ev.GameEnded {
		// The game went on after the ejection, so the ejected agent was
		// not the (last) bad one: infer it was good.
		s.retainWorlds(a, "ejected inferred good", func(ws domain.WorldState) bool {
			return ws[ev.VotedOutID] != domain.RoleBad
		})
	}
}

// applyUncertain adjusts suspicion scores and never touches worlds.
func (s *BeliefService) applyUncertain(a *domain.Agent, ev *domain.Event) {
	switch ev.Action {
	case domain.ActionSay:
		st := ev.Statement
		if st == nil || st.Predicate != domain.PredicateRole {
			return
		}
		if st.Value != string(domain.RoleBad) || st.Subject == a.ID {
			return
		}
		a.Belief.AdjustSus(st.Subject, AccusationSusDelta)
	case domain.ActionSabo:
		a.Belief.AdjustSus(ev.Actor, SaboHearsaySusDelta)
	}
}

// EliminateAllDeadBadWorlds drops, for each given agent, any world in
// which every one of the dead agents is bad. Run after a vote resolution
// once the dead outnumber the surviving bad agents.
func (s *BeliefService) EliminateAllDeadBadWorlds(agents []*domain.Agent, deadIDs []string) {
	if len(deadIDs) == 0 {
		return
	}
	for _, a := range agents {
		if a.Belief == nil {
			continue
		}
		s.retainWorlds(a, "dead set cannot all be bad", func(ws domain.WorldState) bool {
			for _, id := range deadIDs {
				if ws[id] != domain.RoleBad {
					return true
				}
			}
			return false
		})
	}
}

// retainWorlds keeps only the worlds satisfying keep. An elimination that
// would empty the set is discarded and the prior set retained, so the
// reasoner always has at least one world to act on. Returns false when
// the elimination was refused.
func (s *BeliefService) retainWorlds(a *domain.Agent, cause string, keep func(domain.WorldState) bool) bool {
	worlds := a.Belief.Worlds
	kept := worlds[:0:0]
	for _, ws := range worlds {
		if keep(ws) {
			kept = append(kept, ws)
		}
	}
	if len(kept) == 0 && len(worlds) > 0 {
		s.logger.Warn("elimination would empty belief state, keeping prior worlds",
			zap.String("agent", a.ID),
			zap.String("cause", cause),
			zap.Int("worlds", len(worlds)),
		)
		return false
	}
	if len(kept) < len(worlds) {
		s.logger.Debug("worlds eliminated",
			zap.String("agent", a.ID),
			zap.String("cause", cause),
			zap.Int("before", len(worlds)),
			zap.Int("after", len(kept)),
		)
	}
	a.Belief.Worlds = kept
	return true
}

// combinations enumerates every size-k subset of ids, in input order.
// k = 0 yields the single empty subset.
func combinations(ids []string, k int) [][]string {
	if k < 0 || k > len(ids) {
		return nil
	}
	if k == 0 {
		return [][]string{nil}
	}
	var out [][]string
	var pick func(start int, current []string)
	pick = func(start int, current []string) {
		if len(current) == k {
			out = append(out, append([]string(nil), current...))
			return
		}
		for i := start; i <= len(ids)-(k-len(current)); i++ {
			pick(i+1, append(current, ids[i]))
		}
	}
	pick(0, nil)
	return out
}

func sortedBallotVoters(ballots map[string]string) []string {
	voters := make([]string, 0, len(ballots))
	for voter := range ballots {
		voters = append(voters, voter)
	}
	sort.Strings(voters)
	return voters
}
