package sqlite

import (
	"encoding/json"
	"time"

	"documerge-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClientRecord struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name        string    `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ClientRecord) TableName() string { return "clients" }

type ThesisRecord struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	ClientID    uuid.UUID `gorm:"type:varchar(36);index;not null"`
	Title       string    `gorm:"not null"`
	Description *string
	Location    string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ThesisRecord) TableName() string { return "theses" }

type PetitionModelRecord struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	ClientID    uuid.UUID `gorm:"type:varchar(36);index;not null"`
	Name        string    `gorm:"not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PetitionModelRecord) TableName() string { return "petition_models" }

type QuestionRecord struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	PetitionModelID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_question_order"`
	Text            string    `gorm:"not null"`
	DisplayOrder    int       `gorm:"not null;uniqueIndex:idx_question_order"`
	HierarchyLevel  int       `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (QuestionRecord) TableName() string { return "questions" }

type ThesisLinkRecord struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	QuestionID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_thesis_link"`
	ThesisID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_thesis_link;index"`
	Answer     string    `gorm:"not null;uniqueIndex:idx_thesis_link"`
	CreatedAt  time.Time
}

func (ThesisLinkRecord) TableName() string { return "thesis_question_links" }

type GeneratedPetitionRecord struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserID     uuid.UUID `gorm:"type:varchar(36);index;not null"`
	ClientID   uuid.UUID `gorm:"type:varchar(36);index;not null"`
	Title      string    `gorm:"not null"`
	CaseNumber *string
	Location   string `gorm:"not null"`
	FormData   datatypes.JSON
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (GeneratedPetitionRecord) TableName() string { return "generated_petitions" }

func clientRecordFrom(c *models.Client) ClientRecord {
	return ClientRecord{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (r ClientRecord) toDomain() *models.Client {
	return &models.Client{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func thesisRecordFrom(t *models.Thesis) ThesisRecord {
	return ThesisRecord{
		ID:          t.ID,
		ClientID:    t.ClientID,
		Title:       t.Title,
		Description: t.Description,
		Location:    t.Location,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r ThesisRecord) toDomain() models.Thesis {
	return models.Thesis{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r PetitionModelRecord) toDomain() *models.PetitionModel {
	return &models.PetitionModel{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r QuestionRecord) toDomain() models.Question {
	return models.Question{
		ID:              r.ID,
		PetitionModelID: r.PetitionModelID,
		Text:            r.Text,
		Order:           r.DisplayOrder,
		HierarchyLevel:  r.HierarchyLevel,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func petitionRecordFrom(p *models.GeneratedPetition) (GeneratedPetitionRecord, error) {
	formData := p.FormData
	if formData == nil {
		formData = models.AnswerSnapshot{}
	}
	raw, err := json.Marshal(formData)
	if err != nil {
		return GeneratedPetitionRecord{}, err
	}
	return GeneratedPetitionRecord{
		ID:         p.ID,
		UserID:     p.UserID,
		ClientID:   p.ClientID,
		Title:      p.Title,
		CaseNumber: p.CaseNumber,
		Location:   p.Location,
		FormData:   datatypes.JSON(raw),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

func (r GeneratedPetitionRecord) toDomain() (*models.GeneratedPetition, error) {
	formData := models.AnswerSnapshot{}
	if len(r.FormData) > 0 {
		if err := json.Unmarshal(r.FormData, &formData); err != nil {
			return nil, err
		}
	}
	return &models.GeneratedPetition{
		ID:         r.ID,
		UserID:     r.UserID,
		ClientID:   r.ClientID,
		Title:      r.Title,
		CaseNumber: r.CaseNumber,
		Location:   r.Location,
		FormData:   formData,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
