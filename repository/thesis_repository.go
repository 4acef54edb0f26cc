package repository

import (
	"context"

	"documerge-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ThesisRepository handles database operations for theses
type ThesisRepository struct {
	db *pgxpool.Pool
}

// NewThesisRepository creates a new thesis repository
func NewThesisRepository(db *pgxpool.Pool) *ThesisRepository {
	return &ThesisRepository{db: db}
}

const thesisColumns = `id, client_id, title, description, location, created_at, updated_at`

// Create creates a new thesis record
func (r *ThesisRepository) Create(ctx context.Context, thesis *models.Thesis) error {
	query := `
		INSERT INTO theses (client_id, title, description, location)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		thesis.ClientID,
		thesis.Title,
		thesis.Description,
		thesis.Location,
	).Scan(&thesis.ID, &thesis.CreatedAt, &thesis.UpdatedAt)
}

// GetByID retrieves a thesis by ID
func (r *ThesisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Thesis, error) {
	query := `SELECT ` + thesisColumns + ` FROM theses WHERE id = $1`

	thesis := &models.Thesis{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&thesis.ID,
		&thesis.ClientID,
		&thesis.Title,
		&thesis.Description,
		&thesis.Location,
		&thesis.CreatedAt,
		&thesis.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return thesis, nil
}

// ListByClientID retrieves all theses of a client
func (r *ThesisRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*models.Thesis, error) {
	query := `SELECT ` + thesisColumns + ` FROM theses WHERE client_id = $1 ORDER BY title`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var theses []*models.Thesis
	for rows.Next() {
		thesis := &models.Thesis{}
		err := rows.Scan(
			&thesis.ID,
			&thesis.ClientID,
			&thesis.Title,
			&thesis.Description,
			&thesis.Location,
			&thesis.CreatedAt,
			&thesis.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		theses = append(theses, thesis)
	}

	return theses, rows.Err()
}

// Delete deletes a thesis. Its question links are removed by the foreign key cascade.
func (r *ThesisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM theses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
