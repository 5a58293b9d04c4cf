package domain

import "github.com/google/uuid"

// Action is the fixed enumeration of things an agent can do. Instant
// actions produce events; idle and task are behavior requests that
// produce none. ActionVoteResult is never requested by an agent, it is
// synthesized by the meeting resolution step.
type Action string

const (
	ActionEnter      Action = "enter"
	ActionSabo       Action = "sabo"
	ActionReport     Action = "report"
	ActionKill       Action = "kill"
	ActionSay        Action = "say"
	ActionVoteResult Action = "vote_result"

	ActionIdle Action = "idle"
	ActionTask Action = "task"
)

func ValidAction(a string) bool {
	switch Action(a) {
	case ActionEnter, ActionSabo, ActionReport, ActionKill, ActionSay, ActionIdle, ActionTask:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityWitnessed Visibility = "witnessed"
	VisibilityPublic    Visibility = "public"
)

// Event is an immutable record of a game occurrence. Events are shared
// by reference across every MemoryItem that wraps them and are never
// mutated after dispatch.
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Action     Action     `json:"action"`
	Actor      string     `json:"actor"`
	Location   string     `json:"location,omitempty"`
	Witnesses  []string   `json:"witnesses,omitempty"`
	Visibility Visibility `json:"visibility"`
	Timestamp  float64    `json:"timestamp"`
	Statement  *Statement `json:"statement,omitempty"`

	// Vote results only. Votes is the per-candidate tally; Ballots maps
	// each voter to the candidate it chose, so belief updates can tell
	// who voted for whom rather than guessing from counts.
	VotedOutID string            `json:"voted_out_id,omitempty"`
	GameEnded  bool              `json:"game_ended,omitempty"`
	Votes      map[string]int    `json:"votes,omitempty"`
	Ballots    map[string]string `json:"ballots,omitempty"`
}
