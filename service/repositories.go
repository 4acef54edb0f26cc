package service

import (
	"context"

	"documerge-backend/models"

	"github.com/google/uuid"
)

// QuestionnaireRepository reads petition models, questions and thesis links.
// Implemented by repository.QuestionnaireRepository and sqlite.QuestionnaireRepository.
type QuestionnaireRepository interface {
	GetPetitionModel(ctx context.Context, id uuid.UUID) (*models.PetitionModel, error)
	ListQuestions(ctx context.Context, modelID uuid.UUID) ([]models.Question, error)
	ListLinkedTheses(ctx context.Context, questionID uuid.UUID, answer models.AnswerTag) ([]models.Thesis, error)
}

// ThesisRepository stores thesis records
type ThesisRepository interface {
	Create(ctx context.Context, thesis *models.Thesis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Thesis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GeneratedPetitionRepository stores generated petition records
type GeneratedPetitionRepository interface {
	Create(ctx context.Context, petition *models.GeneratedPetition) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedPetition, error)
	Update(ctx context.Context, petition *models.GeneratedPetition) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GeneratedPetition, error)
	ListAll(ctx context.Context) ([]*models.GeneratedPetition, error)
}
