// Package domain provides the domain model of the bulk submission pipeline.
//
// A Batch is one uploaded CSV and its processing lifecycle. Its State is a
// tagged union serialized with a "status" discriminator.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// BatchStatus is the discriminator of a BatchState.
type BatchStatus string

const (
	StatusProcessing          BatchStatus = "Processing"
	StatusFailedCsvValidation BatchStatus = "FailedCsvValidation"
	StatusFailedValidation    BatchStatus = "FailedValidation"
	StatusPassedValidation    BatchStatus = "PassedValidation"
	StatusSubmitting          BatchStatus = "Submitting"
	StatusSubmitted           BatchStatus = "Submitted"
)

// ErrIllegalTransition is returned when a state change breaks the lifecycle.
var ErrIllegalTransition = errors.New("illegal batch state transition")

// transitions lists the legal next statuses. Processing and Submitting may
// re-enter themselves (new content, submission retry).
var transitions = map[BatchStatus][]BatchStatus{
	StatusProcessing: {
		StatusProcessing,
		StatusFailedCsvValidation,
		StatusFailedValidation,
		StatusPassedValidation,
	},
	StatusFailedCsvValidation: {StatusProcessing},
	StatusFailedValidation:    {StatusProcessing},
	StatusPassedValidation:    {StatusSubmitting},
	StatusSubmitting:          {StatusSubmitting, StatusSubmitted},
	StatusSubmitted:           nil,
}

// CanTransition reports whether a batch in from may move to to.
func CanTransition(from, to BatchStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AcceptsContent reports whether new CSV content may replace the batch content.
func (s BatchStatus) AcceptsContent() bool {
	return CanTransition(s, StatusProcessing)
}

// Batch is one uploaded CSV. Version is the optimistic concurrency token
// owned by the store and never serialized.
type Batch struct {
	ID        string     `json:"id"`
	AccountID string     `json:"accountId"`
	State     BatchState `json:"state"`
	Version   int64      `json:"-"`
}

// Transition moves the batch to next when the lifecycle allows it.
func (b *Batch) Transition(next BatchState) error {
	from := b.State.Status()
	if !CanTransition(from, next.Status()) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, next.Status())
	}
	b.State = next
	return nil
}

// BatchState is one of Processing, FailedCsvValidation, FailedValidation,
// PassedValidation, Submitting or Submitted.
type BatchState interface {
	Status() BatchStatus
	At() time.Time
}

// Processing means content was received and validation is pending.
// ContentDigest identifies the content the pending validation must see.
type Processing struct {
	Timestamp     time.Time `json:"timestamp"`
	ContentDigest string    `json:"contentDigest,omitempty"`
}

// FailedCsvValidation means the content could not be read as CSV.
type FailedCsvValidation struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
}

// FailedValidation carries the row and column projections of the failures.
type FailedValidation struct {
	Timestamp    time.Time     `json:"timestamp"`
	RowErrors    []RowError    `json:"rowErrors"`
	ColumnErrors []ColumnError `json:"columnErrors"`
}

// PassedValidation carries one PartialSubmission per row.
type PassedValidation struct {
	Timestamp    time.Time           `json:"timestamp"`
	HasEstimates bool                `json:"hasEstimates"`
	Submissions  []PartialSubmission `json:"submissions"`
}

// Submitting tracks per-row submission progress.
type Submitting struct {
	Timestamp     time.Time         `json:"timestamp"`
	HasEstimates  bool              `json:"hasEstimates"`
	TransactionID string            `json:"transactionId"`
	Submissions   []SubmissionEntry `json:"submissions"`
}

// Pending returns the entries without a created submission.
func (s Submitting) Pending() []SubmissionEntry {
	var out []SubmissionEntry
	for _, e := range s.Submissions {
		if e.Created == nil {
			out = append(out, e)
		}
	}
	return out
}

// Submitted is the terminal success state.
type Submitted struct {
	Timestamp     time.Time                  `json:"timestamp"`
	HasEstimates  bool                       `json:"hasEstimates"`
	TransactionID string                     `json:"transactionId"`
	Submissions   []CreatedSubmissionSummary `json:"submissions"`
}

func (Processing) Status() BatchStatus          { return StatusProcessing }
func (FailedCsvValidation) Status() BatchStatus { return StatusFailedCsvValidation }
func (FailedValidation) Status() BatchStatus    { return StatusFailedValidation }
func (PassedValidation) Status() BatchStatus    { return StatusPassedValidation }
func (Submitting) Status() BatchStatus          { return StatusSubmitting }
func (Submitted) Status() BatchStatus           { return StatusSubmitted }

func (s Processing) At() time.Time          { return s.Timestamp }
func (s FailedCsvValidation) At() time.Time { return s.Timestamp }
func (s FailedValidation) At() time.Time    { return s.Timestamp }
func (s PassedValidation) At() time.Time    { return s.Timestamp }
func (s Submitting) At() time.Time          { return s.Timestamp }
func (s Submitted) At() time.Time           { return s.Timestamp }

// MarshalState encodes a state with its status discriminator.
func MarshalState(s BatchState) ([]byte, error) {
	switch v := s.(type) {
	case Processing:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			Processing
		}{v.Status(), v})
	case FailedCsvValidation:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			FailedCsvValidation
		}{v.Status(), v})
	case FailedValidation:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			FailedValidation
		}{v.Status(), v})
	case PassedValidation:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			PassedValidation
		}{v.Status(), v})
	case Submitting:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			Submitting
		}{v.Status(), v})
	case Submitted:
		return json.Marshal(struct {
			Status BatchStatus `json:"status"`
			Submitted
		}{v.Status(), v})
	case nil:
		return nil, errors.New("marshal batch state: state is nil")
	default:
		return nil, fmt.Errorf("marshal batch state: unknown type %T", s)
	}
}

// UnmarshalState decodes a state by its status discriminator.
func UnmarshalState(data []byte) (BatchState, error) {
	var head struct {
		Status BatchStatus `json:"status"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("unmarshal batch state: %w", err)
	}

	var (
		state BatchState
		err   error
	)
	switch head.Status {
	case StatusProcessing:
		var v Processing
		err = json.Unmarshal(data, &v)
		state = v
	case StatusFailedCsvValidation:
		var v FailedCsvValidation
		err = json.Unmarshal(data, &v)
		state = v
	case StatusFailedValidation:
		var v FailedValidation
		err = json.Unmarshal(data, &v)
		state = v
	case StatusPassedValidation:
		var v PassedValidation
		err = json.Unmarshal(data, &v)
		state = v
	case StatusSubmitting:
		var v Submitting
		err = json.Unmarshal(data, &v)
		state = v
	case StatusSubmitted:
		var v Submitted
		err = json.Unmarshal(data, &v)
		state = v
	default:
		return nil, fmt.Errorf("unmarshal batch state: unknown status %q", head.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s state: %w", head.Status, err)
	}
	return state, nil
}

type batchJSON struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	State     json.RawMessage `json:"state"`
}

// MarshalJSON implements json.Marshaler.
func (b Batch) MarshalJSON() ([]byte, error) {
	state, err := MarshalState(b.State)
	if err != nil {
		return nil, err
	}
	return json.Marshal(batchJSON{ID: b.ID, AccountID: b.AccountID, State: state})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Batch) UnmarshalJSON(data []byte) error {
	var raw batchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	state, err := UnmarshalState(raw.State)
	if err != nil {
		return err
	}
	b.ID, b.AccountID, b.State = raw.ID, raw.AccountID, state
	return nil
}
