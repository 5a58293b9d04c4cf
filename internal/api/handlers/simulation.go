package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"airlock/internal/config"
	"airlock/internal/domain"
	"airlock/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SimulationHandler struct {
	svc *service.SimulationService
}

func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{svc: svc}
}

type agentSummary struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	State    string `json:"state"`
	Location string `json:"location"`
	Behavior string `json:"behavior"`
}

type simulationStateResponse struct {
	ID     string         `json:"id"`
	Clock  float64        `json:"clock"`
	Phase  string         `json:"phase"`
	Result string         `json:"result,omitempty"`
	Agents []agentSummary `json:"agents"`
	Events int            `json:"events"`
}

func stateResponse(id uuid.UUID, w *service.World) simulationStateResponse {
	resp := simulationStateResponse{
		ID:     id.String(),
		Clock:  w.Clock(),
		Phase:  w.Phase(),
		Result: string(w.Result()),
		Events: len(w.Events()),
	}
	for _, a := range w.Agents() {
		resp.Agents = append(resp.Agents, agentSummary{
			ID:       a.ID,
			Role:     string(a.Role),
			Kind:     string(a.Kind),
			State:    string(a.State),
			Location: a.Location,
			Behavior: string(a.Behavior),
		})
	}
	return resp
}

func (h *SimulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Request-level timing overrides win over the environment defaults.
	if req.Config.MeetingInterval <= 0 {
		req.Config.MeetingInterval = config.MeetingIntervalSeconds()
	}
	if req.Config.StatementSlice <= 0 {
		req.Config.StatementSlice = config.StatementSliceSeconds()
	}
	if req.Config.VotingWindow <= 0 {
		req.Config.VotingWindow = config.VotingWindowSeconds()
	}
	if req.Config.ResolutionDelay <= 0 {
		req.Config.ResolutionDelay = config.ResolutionDelaySeconds()
	}

	id, world, err := h.svc.Create(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, stateResponse(id, world))
}

func (h *SimulationHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	var resp simulationStateResponse
	err := h.svc.WithWorld(id, func(world *service.World) error {
		resp = stateResponse(id, world)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type applyActionRequest struct {
	AgentID string `json:"agent_id"`
	service.ActionRequest
}

func (h *SimulationHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	var req applyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var ev *domain.Event
	err := h.svc.WithWorld(id, func(world *service.World) error {
		var applyErr error
		ev, applyErr = world.Apply(req.AgentID, req.ActionRequest)
		return applyErr
	})
	switch {
	case errors.Is(err, service.ErrSimulationNotFound):
		writeError(w, http.StatusNotFound, "simulation not found")
	case errors.Is(err, service.ErrUnknownAgent):
		writeError(w, http.StatusNotFound, "agent not found")
	case errors.Is(err, domain.ErrMalformedStatement):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidAction):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to apply action")
	case ev == nil:
		// Behavior change, no event produced.
		writeJSON(w, http.StatusOK, map[string]any{"event": nil})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"event": ev})
	}
}

type advanceRequest struct {
	DeltaSeconds float64 `json:"delta_seconds"`
}

func (h *SimulationHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeltaSeconds <= 0 {
		writeError(w, http.StatusBadRequest, "delta_seconds must be positive")
		return
	}

	var resp simulationStateResponse
	err := h.svc.WithWorld(id, func(world *service.World) error {
		world.AdvanceTime(req.DeltaSeconds)
		resp = stateResponse(id, world)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type castVoteRequest struct {
	AgentID  string `json:"agent_id"`
	TargetID string `json:"target_id"`
}

func (h *SimulationHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.svc.WithWorld(id, func(world *service.World) error {
		return world.CastVote(req.AgentID, req.TargetID)
	})
	switch {
	case errors.Is(err, service.ErrSimulationNotFound):
		writeError(w, http.StatusNotFound, "simulation not found")
	case errors.Is(err, service.ErrInvalidAction):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to cast vote")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *SimulationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	since := 0
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid since parameter")
			return
		}
		since = n
	}

	var events []*domain.Event
	err := h.svc.WithWorld(id, func(world *service.World) error {
		all := world.Events()
		if since < len(all) {
			events = all[since:]
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "since": since})
}

func (h *SimulationHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	var result string
	var over bool
	err := h.svc.WithWorld(id, func(world *service.World) error {
		result = string(world.Result())
		over = world.GameOver()
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game_over": over, "result": result})
}

func (h *SimulationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func simulationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return uuid.Nil, false
	}
	return id, true
}
