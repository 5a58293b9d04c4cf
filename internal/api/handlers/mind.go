package handlers

import (
	"net/http"

	"airlock/internal/service"
	"github.com/go-chi/chi/v5"
)

// MindHandler provides observability into an agent's epistemic state:
// the retained possible worlds, the suspicion map, and the memory
// timeline.
type MindHandler struct {
	svc *service.SimulationService
}

func NewMindHandler(svc *service.SimulationService) *MindHandler {
	return &MindHandler{svc: svc}
}

type memoryItemResponse struct {
	Action     string  `json:"action"`
	Actor      string  `json:"actor"`
	SourceType string  `json:"source_type"`
	SourceID   string  `json:"source_id,omitempty"`
	Certainty  string  `json:"certainty"`
	Timestamp  float64 `json:"timestamp"`
}

type mindResponse struct {
	AgentID string               `json:"agent_id"`
	Role    string               `json:"role"`
	State   string               `json:"state"`
	Worlds  []map[string]string  `json:"worlds"`
	Sus     map[string]float64   `json:"sus"`
	Memory  []memoryItemResponse `json:"memory"`
}

func (h *MindHandler) GetMind(w http.ResponseWriter, r *http.Request) {
	id, ok := simulationID(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "agentID")

	var resp mindResponse
	found := false
	err := h.svc.WithWorld(id, func(world *service.World) error {
		a := world.AgentByID(agentID)
		if a == nil || a.Belief == nil {
			return nil
		}
		found = true
		resp = mindResponse{
			AgentID: a.ID,
			Role:    string(a.Role),
			State:   string(a.State),
			Sus:     make(map[string]float64, len(a.Belief.Sus)),
		}
		for subject, sus := range a.Belief.Sus {
			resp.Sus[subject] = sus
		}
		for _, ws := range a.Belief.Worlds {
			assignment := make(map[string]string, len(ws))
			for member, role := range ws {
				assignment[member] = string(role)
			}
			resp.Worlds = append(resp.Worlds, assignment)
		}
		for _, item := range a.Belief.Memory {
			resp.Memory = append(resp.Memory, memoryItemResponse{
				Action:     string(item.Event.Action),
				Actor:      item.Event.Actor,
				SourceType: string(item.SourceType),
				SourceID:   item.SourceID,
				Certainty:  string(item.Certainty),
				Timestamp:  item.Event.Timestamp,
			})
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
