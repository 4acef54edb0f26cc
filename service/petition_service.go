package service

import (
	"context"
	"errors"
	"strings"

	"documerge-backend/models"
	"documerge-backend/repository"

	"github.com/google/uuid"
)

// PetitionService handles generated petition records that do not touch stored documents
type PetitionService struct {
	petitionRepo GeneratedPetitionRepository
}

// PetitionServiceOption is a functional option for PetitionService
type PetitionServiceOption func(*PetitionService)

// WithPetitionRepository sets the generated petition repository
func WithPetitionRepository(repo GeneratedPetitionRepository) PetitionServiceOption {
	return func(s *PetitionService) {
		s.petitionRepo = repo
	}
}

// NewPetitionService creates a new petition service
func NewPetitionService(opts ...PetitionServiceOption) *PetitionService {
	s := &PetitionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPetitionRequest represents a request to get a petition
type GetPetitionRequest struct {
	ID uuid.UUID
}

// GetPetitionResult represents the result of getting a petition
type GetPetitionResult struct {
	Petition *models.GeneratedPetition
}

// GetPetition retrieves a petition by ID
func (s *PetitionService) GetPetition(ctx context.Context, req GetPetitionRequest) (*GetPetitionResult, error) {
	if s.petitionRepo == nil {
		return nil, errors.New("petition repository not set")
	}

	petition, err := s.petitionRepo.GetByID(ctx, req.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("petition not found")
	}
	if err != nil {
		return nil, persistence("failed to load petition", err)
	}

	return &GetPetitionResult{Petition: petition}, nil
}

// UpdatePetitionMetadataRequest changes the title and case number of a petition.
// Nil fields are left unchanged; an empty case number clears it.
type UpdatePetitionMetadataRequest struct {
	ID         uuid.UUID
	Title      *string
	CaseNumber *string
}

// UpdatePetitionMetadataResult represents the result of updating a petition
type UpdatePetitionMetadataResult struct {
	Petition *models.GeneratedPetition
}

// UpdatePetitionMetadata saves title and case number. The stored document is not rewritten.
func (s *PetitionService) UpdatePetitionMetadata(ctx context.Context, req UpdatePetitionMetadataRequest) (*UpdatePetitionMetadataResult, error) {
	if s.petitionRepo == nil {
		return nil, errors.New("petition repository not set")
	}

	result, err := s.GetPetition(ctx, GetPetitionRequest{ID: req.ID})
	if err != nil {
		return nil, err
	}
	petition := result.Petition

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title cannot be blank")
		}
		petition.Title = title
	}
	if req.CaseNumber != nil {
		petition.CaseNumber = normalizeCaseNumber(req.CaseNumber)
	}

	if err := s.petitionRepo.Update(ctx, petition); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("petition not found")
		}
		return nil, persistence("failed to update petition", err)
	}

	return &UpdatePetitionMetadataResult{Petition: petition}, nil
}

// ListPetitionsRequest represents a request to list petitions.
// A nil UserID lists the petitions of every user.
type ListPetitionsRequest struct {
	UserID *uuid.UUID
}

// ListPetitionsResult represents the result of listing petitions
type ListPetitionsResult struct {
	Petitions []*models.GeneratedPetition
}

// ListPetitions lists petitions, newest first
func (s *PetitionService) ListPetitions(ctx context.Context, req ListPetitionsRequest) (*ListPetitionsResult, error) {
	if s.petitionRepo == nil {
		return nil, errors.New("petition repository not set")
	}

	var (
		petitions []*models.GeneratedPetition
		err       error
	)
	if req.UserID != nil {
		petitions, err = s.petitionRepo.ListByUserID(ctx, *req.UserID)
	} else {
		petitions, err = s.petitionRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, persistence("failed to list petitions", err)
	}

	if petitions == nil {
		petitions = []*models.GeneratedPetition{}
	}
	return &ListPetitionsResult{Petitions: petitions}, nil
}
