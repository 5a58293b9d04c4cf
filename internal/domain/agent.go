package domain

type Agent struct {
	ID       string     `json:"id"`
	Role     Role       `json:"role"`
	Kind     AgentKind  `json:"kind"`
	State    AgentState `json:"state"`
	Location string     `json:"location"`
	Behavior Behavior   `json:"behavior"`

	// Belief is owned exclusively by this agent and mutated only through
	// the belief update engine. Exposed through the mind endpoint, never
	// serialized with the agent itself.
	Belief *BeliefState `json:"-"`

	// NPC scheduling, in simulation seconds.
	LastActionAt float64 `json:"-"`
	NextActionAt float64 `json:"-"`
}

func (a *Agent) Alive() bool {
	return a.State == StateAlive
}
