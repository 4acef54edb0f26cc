package models

import (
	"time"

	"github.com/google/uuid"
)

// AnswerTag is the stored form of a yes/no answer on a thesis link
type AnswerTag string

const (
	AnswerAffirmative AnswerTag = "affirmative"
	AnswerNegative    AnswerTag = "negative"
)

// AnswerTagFor maps a boolean answer to its tag
func AnswerTagFor(answer bool) AnswerTag {
	if answer {
		return AnswerAffirmative
	}
	return AnswerNegative
}

// Valid reports whether t is one of the two answer tags
func (t AnswerTag) Valid() bool {
	return t == AnswerAffirmative || t == AnswerNegative
}

// PetitionModel is a questionnaire template owned by a client
type PetitionModel struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Question is a yes/no question of a petition model. Order is the display order
// and is unique within the model.
type Question struct {
	ID              uuid.UUID `json:"id"`
	PetitionModelID uuid.UUID `json:"petition_model_id"`
	Text            string    `json:"text"`
	Order           int       `json:"order"`
	HierarchyLevel  int       `json:"hierarchy_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ThesisQuestionLink associates a thesis with one answer to a question
type ThesisQuestionLink struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	ThesisID   uuid.UUID `json:"thesis_id"`
	Answer     AnswerTag `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}
