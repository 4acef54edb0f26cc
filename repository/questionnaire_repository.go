package repository

import (
	"context"
	"fmt"

	"documerge-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionnaireRepository handles petition models, their questions and the
// links from questions to theses
type QuestionnaireRepository struct {
	db *pgxpool.Pool
}

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(db *pgxpool.Pool) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

// CreatePetitionModel creates a new petition model
func (r *QuestionnaireRepository) CreatePetitionModel(ctx context.Context, model *models.PetitionModel) error {
	query := `
		INSERT INTO petition_models (client_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, model.ClientID, model.Name, model.Description).
		Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
}

// GetPetitionModel retrieves a petition model by ID
func (r *QuestionnaireRepository) GetPetitionModel(ctx context.Context, id uuid.UUID) (*models.PetitionModel, error) {
	model := &models.PetitionModel{}
	query := `
		SELECT id, client_id, name, description, created_at, updated_at
		FROM petition_models
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&model.ID,
		&model.ClientID,
		&model.Name,
		&model.Description,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return model, nil
}

// CreateQuestion adds a question to a petition model
func (r *QuestionnaireRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (petition_model_id, text, display_order, hierarchy_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		question.PetitionModelID,
		question.Text,
		question.Order,
		question.HierarchyLevel,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
}

// ListQuestions retrieves the questions of a petition model in display order
func (r *QuestionnaireRepository) ListQuestions(ctx context.Context, modelID uuid.UUID) ([]models.Question, error) {
	query := `
		SELECT id, petition_model_id, text, display_order, hierarchy_level, created_at, updated_at
		FROM questions
		WHERE petition_model_id = $1
		ORDER BY display_order`

	rows, err := r.db.Query(ctx, query, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		err := rows.Scan(
			&q.ID,
			&q.PetitionModelID,
			&q.Text,
			&q.Order,
			&q.HierarchyLevel,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// CreateThesisLink links a thesis to an answer of a question
func (r *QuestionnaireRepository) CreateThesisLink(ctx context.Context, link *models.ThesisQuestionLink) error {
	if !link.Answer.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnswer, link.Answer)
	}

	query := `
		INSERT INTO thesis_question_links (question_id, thesis_id, answer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, link.QuestionID, link.ThesisID, link.Answer).
		Scan(&link.ID, &link.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateLink
	}
	return err
}

// ListLinkedTheses retrieves the theses linked to a question under an answer,
// in the order the links were created
func (r *QuestionnaireRepository) ListLinkedTheses(ctx context.Context, questionID uuid.UUID, answer models.AnswerTag) ([]models.Thesis, error) {
	query := `
		SELECT t.id, t.client_id, t.title, t.description, t.location, t.created_at, t.updated_at
		FROM thesis_question_links l
		JOIN theses t ON t.id = l.thesis_id
		WHERE l.question_id = $1 AND l.answer = $2
		ORDER BY l.created_at, l.id`

	rows, err := r.db.Query(ctx, query, questionID, answer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var theses []models.Thesis
	for rows.Next() {
		var t models.Thesis
		err := rows.Scan(
			&t.ID,
			&t.ClientID,
			&t.Title,
			&t.Description,
			&t.Location,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		theses = append(theses, t)
	}

	return theses, rows.Err()
}
