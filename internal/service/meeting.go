package service

import (
	"fmt"

	"airlock/internal/domain"
	"airlock/internal/policy"
	"go.uber.org/zap"
)

// MeetingPhase is the stage the meeting machine is in. The world is in
// free play whenever no meeting exists.
type MeetingPhase string

const (
	PhaseStatements MeetingPhase = "statements"
	PhaseVoting     MeetingPhase = "voting"
	PhaseResolution MeetingPhase = "resolution"
)

// Meeting is the statements -> voting -> resolution sequence. Agents are
// gathered in the neutral meeting room for its duration and restored to
// their saved locations afterwards.
type Meeting struct {
	Reporter string
	Phase    MeetingPhase

	queue   []string          // statement turn order, one slot per slice
	saved   map[string]string // pre-meeting locations
	ballots map[string]string // voter -> candidate
	tally   map[string]int    // frozen at the voting deadline

	sliceClock float64
	phaseClock float64
}

// Meeting returns the running meeting, or nil during free play.
func (w *World) Meeting() *Meeting { return w.meeting }

// Phase reports the meeting phase, or "playing" outside meetings.
func (w *World) Phase() string {
	if w.meeting == nil {
		return "playing"
	}
	return string(w.meeting.Phase)
}

// startMeeting opens a meeting. Reporter is empty for timer-triggered
// meetings. A trigger while a meeting already runs is ignored.
func (w *World) startMeeting(reporter string) {
	if w.meeting != nil || w.GameOver() {
		return
	}
	m := &Meeting{
		Reporter: reporter,
		Phase:    PhaseStatements,
		saved:    make(map[string]string),
		ballots:  make(map[string]string),
	}
	for _, a := range w.agents {
		if !a.Alive() {
			continue
		}
		m.saved[a.ID] = a.Location
		w.topo.Relocate(a.ID, a.Location, w.cfg.MeetingRoom)
		a.Location = w.cfg.MeetingRoom
		a.Behavior = domain.BehaviorVoting
		m.queue = append(m.queue, a.ID)
	}
	w.meeting = m
	w.logger.Info("meeting started",
		zap.String("reporter", reporter),
		zap.Int("participants", len(m.queue)),
	)
}

func (w *World) advanceMeeting(delta float64) {
	m := w.meeting
	switch m.Phase {
	case PhaseStatements:
		m.sliceClock += delta
		for m.sliceClock >= w.cfg.StatementSlice && len(m.queue) > 0 {
			m.sliceClock -= w.cfg.StatementSlice
			w.takeStatementTurn(m.queue[0])
			m.queue = m.queue[1:]
		}
		if len(m.queue) == 0 {
			m.Phase = PhaseVoting
			m.phaseClock = 0
			w.collectNPCVotes()
			w.logger.Info("meeting voting opened")
		}
	case PhaseVoting:
		m.phaseClock += delta
		if m.phaseClock >= w.cfg.VotingWindow {
			m.tally = tallyBallots(m.ballots)
			m.Phase = PhaseResolution
			m.phaseClock = 0
			w.logger.Info("meeting votes closed", zap.Any("tally", m.tally))
		}
	case PhaseResolution:
		m.phaseClock += delta
		if m.phaseClock >= w.cfg.ResolutionDelay {
			w.resolveMeeting()
		}
	}
}

// takeStatementTurn gives one agent its speaking slot. NPCs consult the
// statement policy; players speak through the driver (say is the only
// action accepted during a meeting) and their slot simply elapses.
func (w *World) takeStatementTurn(agentID string) {
	a := w.byID[agentID]
	if a == nil || !a.Alive() || a.Kind != domain.KindNPC {
		return
	}
	st := policy.ChooseStatement(a, w, w.rng)
	if st == nil {
		return
	}
	if _, err := w.applySay(a, string(st.Predicate), st.Subject, st.Value); err != nil {
		w.logger.Warn("statement rejected", zap.String("agent", a.ID), zap.Error(err))
	}
}

func (w *World) collectNPCVotes() {
	m := w.meeting
	for _, a := range w.agents {
		if !a.Alive() || a.Kind != domain.KindNPC {
			continue
		}
		target := policy.ChooseVote(a, w, w.rng)
		if target == "" {
			continue
		}
		m.ballots[a.ID] = target
	}
}

// CastVote records a ballot for the running meeting's voting phase.
// Voting again before the deadline replaces the earlier ballot; an empty
// target withdraws it.
func (w *World) CastVote(voterID, targetID string) error {
	if w.meeting == nil || w.meeting.Phase != PhaseVoting {
		return fmt.Errorf("%w: no vote in progress", ErrInvalidAction)
	}
	voter := w.byID[voterID]
	if voter == nil || !voter.Alive() {
		return fmt.Errorf("%w: voter missing or dead", ErrInvalidAction)
	}
	if targetID == "" {
		delete(w.meeting.ballots, voterID)
		return nil
	}
	target := w.byID[targetID]
	if target == nil || !target.Alive() {
		return fmt.Errorf("%w: vote target missing or dead", ErrInvalidAction)
	}
	w.meeting.ballots[voterID] = targetID
	return nil
}

// resolveMeeting ejects the unique tally winner (ties eject no one),
// broadcasts the vote_result fact, runs the post-vote elimination pass,
// and returns the world to free play with everyone back where they were.
func (w *World) resolveMeeting() {
	m := w.meeting
	votedOut := uniqueWinner(m.tally)

	if votedOut != "" {
		target := w.byID[votedOut]
		target.State = domain.StateDead
		w.topo.MarkDead(target.ID, target.Location)
		w.checkGameOver()
		gameEnded := w.GameOver()

		recipients := w.AliveAgents()
		recipients = append(recipients, target)

		witnesses := make([]string, 0, len(recipients))
		for _, a := range recipients {
			if a.ID != m.Reporter {
				witnesses = append(witnesses, a.ID)
			}
		}

		ev := w.newEvent(domain.ActionVoteResult, m.Reporter, w.cfg.MeetingRoom, witnesses, domain.VisibilityPublic, nil)
		ev.VotedOutID = votedOut
		ev.GameEnded = gameEnded
		ev.Votes = m.tally
		ev.Ballots = copyBallots(m.ballots)
		w.dispatchVoteResult(ev, recipients)

		w.logger.Info("agent voted out",
			zap.String("agent", votedOut),
			zap.Int("votes", m.tally[votedOut]),
			zap.Bool("game_ended", gameEnded),
		)

		if !gameEnded {
			w.postVoteElimination()
		}
	} else {
		w.logger.Info("vote ended with no ejection", zap.Any("tally", m.tally))
	}

	for _, a := range w.agents {
		if !a.Alive() {
			continue
		}
		if saved, ok := m.saved[a.ID]; ok {
			w.topo.Relocate(a.ID, a.Location, saved)
			a.Location = saved
		}
		a.Behavior = domain.BehaviorIdle
		a.LastActionAt = w.clock
		a.NextActionAt = w.clock + actionDelayMin + w.rng.Float64()*(actionDelayMax-actionDelayMin)
	}
	w.lastMeetingEnd = w.playClock
	w.meeting = nil
}

// postVoteElimination: once the dead outnumber the surviving bad agents,
// no world in which every dead agent is bad can be true for anyone still
// reasoning.
func (w *World) postVoteElimination() {
	livingBad := 0
	for _, a := range w.AliveAgents() {
		if a.Role == domain.RoleBad {
			livingBad++
		}
	}
	dead := w.DeadAgents()
	if livingBad == 0 || len(dead) < livingBad {
		return
	}
	deadIDs := make([]string, 0, len(dead))
	for _, a := range dead {
		deadIDs = append(deadIDs, a.ID)
	}
	w.beliefs.EliminateAllDeadBadWorlds(w.AliveAgents(), deadIDs)
}

func tallyBallots(ballots map[string]string) map[string]int {
	tally := make(map[string]int)
	for _, candidate := range ballots {
		tally[candidate]++
	}
	return tally
}

// uniqueWinner returns the candidate with the strictly highest count, or
// empty on a tie or an empty tally.
func uniqueWinner(tally map[string]int) string {
	max, winner, tied := 0, "", false
	for candidate, count := range tally {
		switch {
		case count > max:
			max, winner, tied = count, candidate, false
		case count == max:
			tied = true
		}
	}
	if tied || winner == "" {
		return ""
	}
	return winner
}

func copyBallots(ballots map[string]string) map[string]string {
	out := make(map[string]string, len(ballots))
	for voter, candidate := range ballots {
		out[voter] = candidate
	}
	return out
}
