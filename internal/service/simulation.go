package service

import (
	"errors"
	"sync"
	"time"

	"airlock/internal/domain"
	"airlock/internal/rooms"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSimulationNotFound = errors.New("simulation not found")
)

// SinkFactory builds a per-simulation event sink, or returns nil when
// recording is disabled.
type SinkFactory func(simulationID uuid.UUID) domain.EventSink

// SimulationService hosts in-memory worlds. Each world is single-threaded
// by contract, so the host serializes access with one mutex per world.
type SimulationService struct {
	logger   *zap.Logger
	sinkFor  SinkFactory
	mu       sync.RWMutex
	sims     map[uuid.UUID]*simulation
}

type simulation struct {
	mu        sync.Mutex
	world     *World
	createdAt time.Time
}

func NewSimulationService(logger *zap.Logger, sinkFor SinkFactory) *SimulationService {
	return &SimulationService{
		logger:  logger,
		sinkFor: sinkFor,
		sims:    make(map[uuid.UUID]*simulation),
	}
}

// CreateSimulationRequest describes a new world. Connections, when nil,
// fall back to the default wiring over RoomNames.
type CreateSimulationRequest struct {
	Roster      []RosterEntry       `json:"roster"`
	RoomNames   []string            `json:"room_names,omitempty"`
	Connections map[string][]string `json:"connections,omitempty"`
	Seed        int64               `json:"seed"`
	Config      Config              `json:"config"`
}

func (s *SimulationService) Create(req CreateSimulationRequest) (uuid.UUID, *World, error) {
	var topo *rooms.Map
	switch {
	case req.Connections != nil:
		topo = rooms.New(req.Connections)
	case len(req.RoomNames) > 0:
		topo = rooms.Default(req.RoomNames)
	default:
		topo = rooms.Default([]string{"A", "B", "C", "D"})
	}

	world, err := NewWorld(req.Roster, topo, req.Seed, req.Config, s.logger)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	if s.sinkFor != nil {
		if sink := s.sinkFor(id); sink != nil {
			world.SetEventSink(sink)
		}
	}

	s.mu.Lock()
	s.sims[id] = &simulation{world: world, createdAt: time.Now()}
	s.mu.Unlock()

	s.logger.Info("simulation created",
		zap.String("id", id.String()),
		zap.Int("agents", len(req.Roster)),
	)
	return id, world, nil
}

// WithWorld runs fn while holding the simulation's lock.
func (s *SimulationService) WithWorld(id uuid.UUID, fn func(w *World) error) error {
	s.mu.RLock()
	sim, ok := s.sims[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSimulationNotFound
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return fn(sim.world)
}

func (s *SimulationService) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sims[id]; !ok {
		return ErrSimulationNotFound
	}
	delete(s.sims, id)
	return nil
}

// Count reports how many simulations are live, for the metrics endpoint.
func (s *SimulationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sims)
}
