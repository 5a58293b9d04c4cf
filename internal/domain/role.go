package domain

// Role is an agent's hidden allegiance. It is fixed when the world is
// created and never changes during play.
type Role string

const (
	RoleGood Role = "good"
	RoleBad  Role = "bad"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleGood, RoleBad:
		return true
	}
	return false
}

// AgentKind distinguishes externally driven agents from scripted ones.
// Players receive actions through the driver API; NPCs decide through the
// policy layer on the simulation clock.
type AgentKind string

const (
	KindPlayer AgentKind = "player"
	KindNPC    AgentKind = "npc"
)

func ValidAgentKind(k string) bool {
	switch AgentKind(k) {
	case KindPlayer, KindNPC:
		return true
	}
	return false
}

type AgentState string

const (
	StateAlive AgentState = "alive"
	StateDead  AgentState = "dead"
)

// Behavior is an agent's ongoing activity. Behaviors produce no events;
// they only shape which instant actions can occur.
type Behavior string

const (
	BehaviorIdle   Behavior = "idle"
	BehaviorTask   Behavior = "task"
	BehaviorVoting Behavior = "voting"
)
