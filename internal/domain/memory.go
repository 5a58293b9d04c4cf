package domain

// SourceType records how an agent came to know about an event.
type SourceType string

const (
	SourceObservation SourceType = "observation"
	SourceHearsay     SourceType = "hearsay"
)

// Certainty is the epistemic weight of a memory. Observations are hard
// facts and eliminate inconsistent worlds; hearsay only shifts suspicion.
// Verified and Disproved are reserved for corroboration logic layered on
// top of the base event set.
type Certainty string

const (
	CertaintyFact      Certainty = "fact"
	CertaintyUncertain Certainty = "uncertain"
	CertaintyVerified  Certainty = "verified"
	CertaintyDisproved Certainty = "disproved"
)

// MemoryItem wraps a shared Event with provenance. Immutable once built.
type MemoryItem struct {
	Event      *Event     `json:"event"`
	SourceType SourceType `json:"source_type"`
	SourceID   string     `json:"source_id,omitempty"`
	Certainty  Certainty  `json:"certainty"`
}

// NewMemoryItem derives certainty from provenance: direct observation is
// fact, anything relayed is uncertain. sourceID identifies the relayer
// and is empty for observations.
func NewMemoryItem(event *Event, sourceType SourceType, sourceID string) MemoryItem {
	certainty := CertaintyUncertain
	if sourceType == SourceObservation {
		certainty = CertaintyFact
		sourceID = ""
	}
	return MemoryItem{
		Event:      event,
		SourceType: sourceType,
		SourceID:   sourceID,
		Certainty:  certainty,
	}
}
