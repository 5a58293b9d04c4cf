package service

import (
	"errors"
	"fmt"
	"math/rand"

	"airlock/internal/domain"
	"airlock/internal/policy"
	"go.uber.org/zap"
)

var (
	ErrEmptyRoster      = errors.New("roster must contain at least one agent")
	ErrDuplicateAgentID = errors.New("duplicate agent id in roster")
	ErrUnknownRoom      = errors.New("unknown room")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidAgentKind = errors.New("invalid agent kind")
	ErrUnknownAgent     = errors.New("unknown agent")
)

type Result string

const (
	ResultGoodWin Result = "good_win"
	ResultBadWin  Result = "bad_win"
)

// NPC scheduling, in simulation seconds.
const (
	initialDelayMin = 1.0
	initialDelayMax = 5.0
	actionDelayMin  = 2.0
	actionDelayMax  = 8.0
	// Bad agents re-check for an unwitnessed kill this often.
	urgentKillInterval = 2.0
)

// Config carries the meeting timing knobs and the neutral meeting room.
// Zero values fall back to defaults.
type Config struct {
	MeetingInterval float64 `json:"meeting_interval,omitempty"`
	StatementSlice  float64 `json:"statement_slice,omitempty"`
	VotingWindow    float64 `json:"voting_window,omitempty"`
	ResolutionDelay float64 `json:"resolution_delay,omitempty"`
	MeetingRoom     string  `json:"meeting_room,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.MeetingInterval <= 0 {
		c.MeetingInterval = 60
	}
	if c.StatementSlice <= 0 {
		c.StatementSlice = 2
	}
	if c.VotingWindow <= 0 {
		c.VotingWindow = 10
	}
	if c.ResolutionDelay <= 0 {
		c.ResolutionDelay = 3
	}
	if c.MeetingRoom == "" {
		c.MeetingRoom = "Assembly"
	}
	return c
}

type RosterEntry struct {
	ID       string           `json:"id"`
	Role     domain.Role      `json:"role"`
	Kind     domain.AgentKind `json:"kind"`
	Location string           `json:"location"`
}

// World is the single aggregate owning the roster, clock, event log and
// meeting state. It is not safe for concurrent use; callers serialize
// access (the simulation host holds one lock per world).
type World struct {
	logger  *zap.Logger
	rng     *rand.Rand
	topo    domain.Topology
	beliefs *BeliefService
	cfg     Config
	sink    domain.EventSink

	agents []*domain.Agent
	byID   map[string]*domain.Agent

	clock          float64
	playClock      float64
	lastMeetingEnd float64
	events         []*domain.Event
	result         Result
	meeting        *Meeting
}

// NewWorld validates the roster against the topology, places every agent,
// and initializes all belief states. The meeting room is added to the
// topology as a disconnected room if the map lacks it.
func NewWorld(roster []RosterEntry, topo domain.Topology, seed int64, cfg Config, logger *zap.Logger) (*World, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	cfg = cfg.withDefaults()

	type roomAdder interface{ AddRoom(name string) }
	if !topo.Contains(cfg.MeetingRoom) {
		adder, ok := topo.(roomAdder)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, cfg.MeetingRoom)
		}
		adder.AddRoom(cfg.MeetingRoom)
	}

	w := &World{
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
		topo:    topo,
		beliefs: NewBeliefService(logger),
		cfg:     cfg,
		byID:    make(map[string]*domain.Agent, len(roster)),
	}

	for _, entry := range roster {
		if !domain.ValidRole(string(entry.Role)) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, entry.Role)
		}
		if !domain.ValidAgentKind(string(entry.Kind)) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAgentKind, entry.Kind)
		}
		if !topo.Contains(entry.Location) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, entry.Location)
		}
		if _, exists := w.byID[entry.ID]; exists || entry.ID == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAgentID, entry.ID)
		}
		a := &domain.Agent{
			ID:       entry.ID,
			Role:     entry.Role,
			Kind:     entry.Kind,
			State:    domain.StateAlive,
			Location: entry.Location,
			Behavior: domain.BehaviorIdle,
		}
		a.NextActionAt = initialDelayMin + w.rng.Float64()*(initialDelayMax-initialDelayMin)
		w.agents = append(w.agents, a)
		w.byID[a.ID] = a
		topo.Place(a.ID, a.Location)
	}

	w.beliefs.InitializeBeliefs(w.agents)
	logger.Info("world created",
		zap.Int("agents", len(w.agents)),
		zap.Int("rooms", len(topo.RoomNames())),
		zap.Int64("seed", seed),
	)
	return w, nil
}

// SetEventSink attaches an optional diagnostics sink that mirrors every
// dispatched event.
func (w *World) SetEventSink(sink domain.EventSink) {
	w.sink = sink
}

func (w *World) Clock() float64 { return w.clock }

func (w *World) Agents() []*domain.Agent {
	out := make([]*domain.Agent, len(w.agents))
	copy(out, w.agents)
	return out
}

func (w *World) AliveAgents() []*domain.Agent {
	var out []*domain.Agent
	for _, a := range w.agents {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) DeadAgents() []*domain.Agent {
	var out []*domain.Agent
	for _, a := range w.agents {
		if !a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) AgentByID(id string) *domain.Agent { return w.byID[id] }

func (w *World) AreConnected(a, b string) bool        { return w.topo.AreConnected(a, b) }
func (w *World) ConnectedRooms(room string) []string  { return w.topo.ConnectedRooms(room) }
func (w *World) AgentsAt(room string) []string        { return w.topo.AgentsAt(room) }
func (w *World) DeadAgentsAt(room string) []string    { return w.topo.DeadAgentsAt(room) }

// Events returns the shared chronological event log.
func (w *World) Events() []*domain.Event {
	out := make([]*domain.Event, len(w.events))
	copy(out, w.events)
	return out
}

func (w *World) GameOver() bool { return w.result != "" }

// Result reports the outcome, or empty while the game continues.
func (w *World) Result() Result { return w.result }

// AdvanceTime moves the simulation clock forward. While a meeting runs,
// only the meeting machine advances: play time is frozen so meeting
// duration never counts toward the automatic meeting interval, and NPCs
// take no free-roam actions.
func (w *World) AdvanceTime(delta float64) {
	if delta <= 0 {
		return
	}
	w.clock += delta

	if w.meeting != nil {
		w.advanceMeeting(delta)
		return
	}
	if w.GameOver() {
		return
	}

	w.playClock += delta
	if w.playClock-w.lastMeetingEnd >= w.cfg.MeetingInterval {
		w.logger.Info("automatic meeting interval elapsed")
		w.startMeeting("")
		return
	}
	w.updateNPCs()
}

// updateNPCs runs scheduled NPC decisions for this tick, in roster order.
// Bad NPCs additionally probe for unwitnessed kill opportunities on a
// short fixed cadence.
func (w *World) updateNPCs() {
	for _, a := range w.agents {
		if !a.Alive() || a.Kind != domain.KindNPC {
			continue
		}

		if a.Role == domain.RoleBad && w.clock-a.LastActionAt >= urgentKillInterval {
			if target := policy.KillOpportunity(a, w); target != "" {
				if _, err := w.applyKill(a, target); err == nil {
					a.LastActionAt = w.clock
					a.NextActionAt = w.clock + urgentKillInterval
					if w.GameOver() {
						return
					}
					continue
				}
			}
		}

		if w.clock < a.NextActionAt {
			continue
		}
		decision := policy.ChooseAction(a, w, w.rng)
		w.applyDecision(a, decision)
		a.LastActionAt = w.clock
		a.NextActionAt = w.clock + actionDelayMin + w.rng.Float64()*(actionDelayMax-actionDelayMin)
		if w.meeting != nil || w.GameOver() {
			// A report opened a meeting (or the game ended); nobody
			// else acts this tick.
			return
		}
	}
	w.checkGameOver()
}

func (w *World) applyDecision(a *domain.Agent, d policy.Decision) {
	req := ActionRequest{Action: d.Action, Room: d.Room, Target: d.Target}
	if _, err := w.Apply(a.ID, req); err != nil {
		w.logger.Debug("npc action rejected",
			zap.String("agent", a.ID),
			zap.String("action", string(d.Action)),
			zap.Error(err),
		)
	}
}

func (w *World) aliveCounts() (good, bad int) {
	for _, a := range w.agents {
		if !a.Alive() {
			continue
		}
		if a.Role == domain.RoleBad {
			bad++
		} else {
			good++
		}
	}
	return good, bad
}

// checkElimination latches a result only when a whole side is gone. The
// parity rule is deliberately not applied here: a kill that brings the
// sides level leaves a window in which the victim can still be reported
// and the meeting decides the outcome.
func (w *World) checkElimination() {
	if w.result != "" {
		return
	}
	good, bad := w.aliveCounts()
	switch {
	case good == 0 && bad > 0:
		w.result = ResultBadWin
	case bad == 0 && good > 0:
		w.result = ResultGoodWin
	default:
		return
	}
	w.logger.Info("game over",
		zap.String("result", string(w.result)),
		zap.Int("good_alive", good),
		zap.Int("bad_alive", bad),
	)
}

// checkGameOver evaluates the full win condition and latches the result:
// bad wins when no good agents remain or the living bad match them in
// number, good wins when every bad agent is gone. Runs on tick boundaries
// and at meeting resolution.
func (w *World) checkGameOver() {
	if w.result != "" {
		return
	}
	good, bad := w.aliveCounts()
	switch {
	case good == 0 || (bad >= good && bad > 0):
		w.result = ResultBadWin
	case bad == 0:
		w.result = ResultGoodWin
	default:
		return
	}
	w.logger.Info("game over",
		zap.String("result", string(w.result)),
		zap.Int("good_alive", good),
		zap.Int("bad_alive", bad),
	)
}
