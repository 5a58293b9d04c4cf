package service

import (
	"errors"
	"fmt"

	"airlock/internal/domain"
	"go.uber.org/zap"
)

// ErrInvalidAction marks a gameplay-legality failure: the simulation
// state is unchanged and no event is produced. It is never fatal.
var ErrInvalidAction = errors.New("invalid action")

// ActionRequest is the single argument shape for every driver action.
// Room is the enter target, Target the kill target, and the statement
// fields belong to say.
type ActionRequest struct {
	Action    domain.Action `json:"action"`
	Room      string        `json:"room,omitempty"`
	Target    string        `json:"target,omitempty"`
	Predicate string        `json:"predicate,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Value     string        `json:"value,omitempty"`
}

// Apply performs an action for an agent. Instant actions return the
// dispatched event; behavior requests (idle, task) return nil with no
// error. Illegal actions return ErrInvalidAction and change nothing.
func (w *World) Apply(agentID string, req ActionRequest) (*domain.Event, error) {
	a := w.byID[agentID]
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, agentID)
	}
	if !a.Alive() {
		return nil, fmt.Errorf("%w: actor is dead", ErrInvalidAction)
	}
	if w.GameOver() {
		return nil, fmt.Errorf("%w: game is over", ErrInvalidAction)
	}
	if w.meeting != nil && req.Action != domain.ActionSay {
		return nil, fmt.Errorf("%w: meeting in progress", ErrInvalidAction)
	}

	switch req.Action {
	case domain.ActionEnter:
		return w.applyEnter(a, req.Room)
	case domain.ActionKill:
		return w.applyKill(a, req.Target)
	case domain.ActionSabo:
		return w.applySabo(a)
	case domain.ActionReport:
		return w.applyReport(a)
	case domain.ActionSay:
		return w.applySay(a, req.Predicate, req.Subject, req.Value)
	case domain.ActionIdle:
		a.Behavior = domain.BehaviorIdle
		return nil, nil
	case domain.ActionTask:
		a.Behavior = domain.BehaviorTask
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, req.Action)
	}
}

// applyEnter moves an agent along a direct edge. Arrival is witnessed by
// whoever is already in the target room.
func (w *World) applyEnter(a *domain.Agent, room string) (*domain.Event, error) {
	if !w.topo.Contains(room) {
		return nil, fmt.Errorf("%w: unknown room %q", ErrInvalidAction, room)
	}
	if room == a.Location || !w.topo.AreConnected(a.Location, room) {
		return nil, fmt.Errorf("%w: %s is not connected to %s", ErrInvalidAction, a.Location, room)
	}

	w.topo.Relocate(a.ID, a.Location, room)
	a.Location = room
	a.Behavior = domain.BehaviorIdle

	witnesses := w.othersAt(room, a.ID)
	visibility := domain.VisibilityPrivate
	if len(witnesses) > 0 {
		visibility = domain.VisibilityWitnessed
	}
	ev := w.newEvent(domain.ActionEnter, a.ID, room, witnesses, visibility, nil)
	w.dispatch(ev)
	return ev, nil
}

func (w *World) applyKill(a *domain.Agent, targetID string) (*domain.Event, error) {
	target := w.byID[targetID]
	if target == nil || !target.Alive() {
		return nil, fmt.Errorf("%w: target missing or dead", ErrInvalidAction)
	}
	if target.ID == a.ID {
		return nil, fmt.Errorf("%w: cannot kill self", ErrInvalidAction)
	}
	if target.Location != a.Location {
		return nil, fmt.Errorf("%w: target is elsewhere", ErrInvalidAction)
	}

	witnesses := w.othersAt(a.Location, a.ID, target.ID)
	visibility := domain.VisibilityPrivate
	if len(witnesses) > 0 {
		visibility = domain.VisibilityWitnessed
	}
	ev := w.newEvent(domain.ActionKill, a.ID, a.Location, witnesses, visibility, nil)
	w.dispatch(ev)

	target.State = domain.StateDead
	w.topo.MarkDead(target.ID, target.Location)
	a.Behavior = domain.BehaviorIdle
	w.logger.Info("agent killed",
		zap.String("actor", a.ID),
		zap.String("target", target.ID),
		zap.String("location", a.Location),
		zap.Strings("witnesses", witnesses),
	)
	w.checkElimination()
	return ev, nil
}

func (w *World) applySabo(a *domain.Agent) (*domain.Event, error) {
	witnesses := w.othersAt(a.Location, a.ID)
	visibility := domain.VisibilityPrivate
	if len(witnesses) > 0 {
		visibility = domain.VisibilityWitnessed
	}
	ev := w.newEvent(domain.ActionSabo, a.ID, a.Location, witnesses, visibility, nil)
	w.dispatch(ev)
	a.Behavior = domain.BehaviorIdle
	return ev, nil
}

// applyReport makes a public report and opens a meeting. Co-located
// corpses are cleared so the same body is never reported twice.
func (w *World) applyReport(a *domain.Agent) (*domain.Event, error) {
	for _, corpseID := range w.topo.DeadAgentsAt(a.Location) {
		w.topo.Remove(corpseID, a.Location)
		if corpse := w.byID[corpseID]; corpse != nil {
			corpse.Location = ""
		}
	}

	ev := w.newEvent(domain.ActionReport, a.ID, a.Location, w.aliveIDsExcept(a.ID), domain.VisibilityPublic, nil)
	w.dispatch(ev)
	w.startMeeting(a.ID)
	return ev, nil
}

func (w *World) applySay(a *domain.Agent, predicate, subject, value string) (*domain.Event, error) {
	st, err := domain.NewStatement(predicate, subject, value, a.ID, w.clock)
	if err != nil {
		return nil, err
	}
	ev := w.newEvent(domain.ActionSay, a.ID, a.Location, w.aliveIDsExcept(a.ID), domain.VisibilityPublic, st)
	w.dispatch(ev)
	if w.meeting == nil {
		a.Behavior = domain.BehaviorIdle
	}
	return ev, nil
}

// othersAt lists alive occupants of a room minus any excluded ids.
func (w *World) othersAt(room string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []string
	for _, id := range w.topo.AgentsAt(room) {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

func (w *World) aliveIDsExcept(exclude string) []string {
	var out []string
	for _, a := range w.agents {
		if a.Alive() && a.ID != exclude {
			out = append(out, a.ID)
		}
	}
	return out
}
