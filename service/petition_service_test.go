package service

import (
	"context"
	"testing"

	"documerge-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetitionServiceMetadata(t *testing.T) {
	f := newFixture(t)
	p := generated(t, f)
	svc := NewPetitionService(WithPetitionRepository(f.petitions))

	got, err := svc.GetPetition(context.Background(), GetPetitionRequest{ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Petition.Title)

	_, err = svc.GetPetition(context.Background(), GetPetitionRequest{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)

	title := "  Réplica  "
	caseNumber := "5000001-00.2024.4.03.6100"
	updated, err := svc.UpdatePetitionMetadata(context.Background(), UpdatePetitionMetadataRequest{
		ID:         p.ID,
		Title:      &title,
		CaseNumber: &caseNumber,
	})
	require.NoError(t, err)
	assert.Equal(t, "Réplica", updated.Petition.Title)
	require.NotNil(t, updated.Petition.CaseNumber)
	assert.Equal(t, caseNumber, *updated.Petition.CaseNumber)
	assert.Equal(t, p.Location, updated.Petition.Location, "metadata updates keep the document")

	empty := ""
	cleared, err := svc.UpdatePetitionMetadata(context.Background(), UpdatePetitionMetadataRequest{ID: p.ID, CaseNumber: &empty})
	require.NoError(t, err)
	assert.Nil(t, cleared.Petition.CaseNumber)
	assert.Equal(t, "Réplica", cleared.Petition.Title)

	blank := " "
	_, err = svc.UpdatePetitionMetadata(context.Background(), UpdatePetitionMetadataRequest{ID: p.ID, Title: &blank})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPetitionServiceList(t *testing.T) {
	f := newFixture(t)
	mine := generated(t, f)

	otherActor := models.Actor{UserID: uuid.New(), Role: models.RoleDrafter}
	f.actor = otherActor
	generated(t, f)

	svc := NewPetitionService(WithPetitionRepository(f.petitions))

	result, err := svc.ListPetitions(context.Background(), ListPetitionsRequest{UserID: &mine.UserID})
	require.NoError(t, err)
	require.Len(t, result.Petitions, 1)
	assert.Equal(t, mine.ID, result.Petitions[0].ID)

	result, err = svc.ListPetitions(context.Background(), ListPetitionsRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Petitions, 2)

	nobody := uuid.New()
	result, err = svc.ListPetitions(context.Background(), ListPetitionsRequest{UserID: &nobody})
	require.NoError(t, err)
	assert.NotNil(t, result.Petitions)
	assert.Empty(t, result.Petitions)
}

func TestPetitionServiceRequiresRepository(t *testing.T) {
	_, err := NewPetitionService().GetPetition(context.Background(), GetPetitionRequest{ID: uuid.New()})
	assert.EqualError(t, err, "petition repository not set")
}
