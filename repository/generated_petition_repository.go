package repository

import (
	"context"

	"documerge-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GeneratedPetitionRepository handles database operations for generated petitions
type GeneratedPetitionRepository struct {
	db *pgxpool.Pool
}

// NewGeneratedPetitionRepository creates a new generated petition repository
func NewGeneratedPetitionRepository(db *pgxpool.Pool) *GeneratedPetitionRepository {
	return &GeneratedPetitionRepository{db: db}
}

const petitionColumns = `id, user_id, client_id, title, case_number, location, form_data, created_at, updated_at`

// Create creates a new generated petition record
func (r *GeneratedPetitionRepository) Create(ctx context.Context, petition *models.GeneratedPetition) error {
	query := `
		INSERT INTO generated_petitions (user_id, client_id, title, case_number, location, form_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		petition.UserID,
		petition.ClientID,
		petition.Title,
		petition.CaseNumber,
		petition.Location,
		petition.FormData,
	).Scan(&petition.ID, &petition.CreatedAt, &petition.UpdatedAt)
}

// GetByID retrieves a generated petition by ID
func (r *GeneratedPetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM generated_petitions WHERE id = $1`

	petition, err := scanPetition(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return petition, nil
}

// Update saves title, case number and location of a generated petition
func (r *GeneratedPetitionRepository) Update(ctx context.Context, petition *models.GeneratedPetition) error {
	query := `
		UPDATE generated_petitions SET
			title = $2,
			case_number = $3,
			location = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		petition.ID,
		petition.Title,
		petition.CaseNumber,
		petition.Location,
	).Scan(&petition.UpdatedAt)

	return notFound(err)
}

// ListByUserID retrieves the petitions generated by a user, newest first
func (r *GeneratedPetitionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GeneratedPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM generated_petitions WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListAll retrieves every generated petition, newest first
func (r *GeneratedPetitionRepository) ListAll(ctx context.Context) ([]*models.GeneratedPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM generated_petitions ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// Delete deletes a generated petition record
func (r *GeneratedPetitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM generated_petitions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GeneratedPetitionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.GeneratedPetition, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var petitions []*models.GeneratedPetition
	for rows.Next() {
		petition, err := scanPetition(rows)
		if err != nil {
			return nil, err
		}
		petitions = append(petitions, petition)
	}

	return petitions, rows.Err()
}

func scanPetition(row pgx.Row) (*models.GeneratedPetition, error) {
	petition := &models.GeneratedPetition{}
	err := row.Scan(
		&petition.ID,
		&petition.UserID,
		&petition.ClientID,
		&petition.Title,
		&petition.CaseNumber,
		&petition.Location,
		&petition.FormData,
		&petition.CreatedAt,
		&petition.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return petition, nil
}
