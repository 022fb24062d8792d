package events

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the shared notification shape pushed through the broadcast
// hub. Delivery is fire-and-forget and at-most-once; clients resynchronize by
// pulling full state on (re)connect, never by replaying missed envelopes.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Payload       any       `json:"payload"`
}

// Broadcast event types carried by the hub. One constant per server-pushed
// notification; request/response exchanges that stay on a single session are
// named in the websocket transport instead.
const (
	TypeNewUserRegistered = "newUserRegistered"
	TypeNewCandidate      = "newCandidate"
	TypeUpdatedEther      = "updatedEther"
	TypeCandidatesData    = "candidatesData"
	TypeElectionResults   = "electionResults"
	TypeStageChanged      = "stageChanged"
)

func New(eventType string, entityType string, entityID string, payload any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		SourceService: "election-engine",
		OccurredAtUTC: time.Now().UTC(),
		EntityType:    entityType,
		EntityID:      entityID,
		Payload:       payload,
	}
}
