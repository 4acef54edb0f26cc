package repository

import (
	"context"

	"documerge-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientRepository handles database operations for clients
type ClientRepository struct {
	db *pgxpool.Pool
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, client.Name, client.Description).
		Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM clients
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Description,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return client, nil
}
