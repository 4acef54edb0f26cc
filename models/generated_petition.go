package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Answers maps question IDs to the yes/no answer given for them
type Answers map[uuid.UUID]bool

// AnswerSnapshot is the answer map persisted with a generated petition
type AnswerSnapshot map[string]bool

// SnapshotOf converts answers into their persisted form
func SnapshotOf(answers Answers) AnswerSnapshot {
	snapshot := make(AnswerSnapshot, len(answers))
	for id, answer := range answers {
		snapshot[id.String()] = answer
	}
	return snapshot
}

// Answers converts the snapshot back, skipping keys that are not question IDs
func (a AnswerSnapshot) Answers() Answers {
	answers := make(Answers, len(a))
	for key, answer := range a {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		answers[id] = answer
	}
	return answers
}

// Value implements driver.Valuer for JSONB
func (a AnswerSnapshot) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *AnswerSnapshot) Scan(value interface{}) error {
	if value == nil {
		*a = make(AnswerSnapshot)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*a = make(AnswerSnapshot)
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// GeneratedPetition is the persisted record of a merged petition document
type GeneratedPetition struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	ClientID   uuid.UUID      `json:"client_id"`
	Title      string         `json:"title"`
	CaseNumber *string        `json:"case_number,omitempty"`
	Location   string         `json:"location"`
	FormData   AnswerSnapshot `json:"form_data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
