package domain

import (
	"encoding/json"
	"time"
)

// EventType defines the type of domain event.
type EventType string

const (
	// Content events
	EventBatchCreated         EventType = "BATCH_CREATED"
	EventBatchContentReceived EventType = "BATCH_CONTENT_RECEIVED"

	// Validation outcome
	EventBatchValidated EventType = "BATCH_VALIDATED"

	// Submission events
	EventBatchFinalized      EventType = "BATCH_FINALIZED"
	EventBatchSubmitted      EventType = "BATCH_SUBMITTED"
	EventSubmissionAttempted EventType = "SUBMISSION_ATTEMPTED"
)

// DomainEvent records one batch state change. Payload is the JSON of a
// TransitionPayload.
type DomainEvent struct {
	EventID   string      `json:"event_id"`
	EventType EventType   `json:"event_type"`
	AccountID string      `json:"account_id"`
	BatchID   string      `json:"batch_id"`
	Status    BatchStatus `json:"status"`
	Payload   []byte      `json:"payload,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TransitionPayload describes the change that produced an event.
type TransitionPayload struct {
	From           BatchStatus `json:"from,omitempty"`
	To             BatchStatus `json:"to"`
	RowCount       int         `json:"row_count,omitempty"`
	FailureCount   int         `json:"failure_count,omitempty"`
	FailuresByCode map[int]int `json:"failures_by_code,omitempty"`
	Created        int         `json:"created,omitempty"`
	Failed         int         `json:"failed,omitempty"`
	DurationMillis int64       `json:"duration_ms,omitempty"`
}

// ToJSON converts payload to JSON bytes.
func (p TransitionPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload decodes the event payload.
func (e *DomainEvent) DecodePayload() (TransitionPayload, error) {
	var p TransitionPayload
	if len(e.Payload) == 0 {
		return p, nil
	}
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}
