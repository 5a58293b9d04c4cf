package service

import (
	"airlock/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (w *World) newEvent(action domain.Action, actor, location string, witnesses []string, visibility domain.Visibility, st *domain.Statement) *domain.Event {
	return &domain.Event{
		ID:         uuid.New(),
		Action:     action,
		Actor:      actor,
		Location:   location,
		Witnesses:  witnesses,
		Visibility: visibility,
		Timestamp:  w.clock,
		Statement:  st,
	}
}

// dispatch appends the event to the shared log, mirrors it to the sink,
// and fans out memory items by visibility:
//
//	private:   only the actor, as observation
//	witnessed: actor and each witness, each as observation
//	public:    every living agent; the actor observes, the rest hear
//	           about it from the actor
//
// Each recipient's update reads only that recipient's own prior state, so
// delivery order carries no meaning.
func (w *World) dispatch(ev *domain.Event) {
	w.appendEvent(ev)

	switch ev.Visibility {
	case domain.VisibilityPrivate:
		w.deliver(ev.Actor, ev, domain.SourceObservation, "")
	case domain.VisibilityWitnessed:
		w.deliver(ev.Actor, ev, domain.SourceObservation, "")
		for _, id := range ev.Witnesses {
			w.deliver(id, ev, domain.SourceObservation, "")
		}
	case domain.VisibilityPublic:
		for _, a := range w.agents {
			if !a.Alive() {
				continue
			}
			if a.ID == ev.Actor {
				w.deliver(a.ID, ev, domain.SourceObservation, "")
			} else {
				w.deliver(a.ID, ev, domain.SourceHearsay, ev.Actor)
			}
		}
	}
}

// dispatchVoteResult fans a synthetic vote_result out to an explicit
// recipient set (the living plus the just-ejected agent). The tally is
// announced jointly, so every recipient observes it first-hand.
func (w *World) dispatchVoteResult(ev *domain.Event, recipients []*domain.Agent) {
	w.appendEvent(ev)
	for _, a := range recipients {
		w.deliver(a.ID, ev, domain.SourceObservation, "")
	}
}

func (w *World) appendEvent(ev *domain.Event) {
	w.events = append(w.events, ev)
	if w.sink != nil {
		if err := w.sink.Record(ev); err != nil {
			w.logger.Warn("event sink write failed",
				zap.String("event", ev.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (w *World) deliver(agentID string, ev *domain.Event, src domain.SourceType, sourceID string) {
	a := w.byID[agentID]
	if a == nil {
		return
	}
	item := domain.NewMemoryItem(ev, src, sourceID)
	w.beliefs.Update(a, item, w)
}
