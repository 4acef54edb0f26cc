package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a client of the firm. Theses and petition models are scoped to a client.
type Client struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
