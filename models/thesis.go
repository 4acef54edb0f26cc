package models

import (
	"time"

	"github.com/google/uuid"
)

// Thesis is a reusable legal argument whose content lives in a stored document
type Thesis struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
