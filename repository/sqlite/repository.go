package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"documerge-backend/models"
	"documerge-backend/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// ClientRepository stores clients
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	rec := clientRecordFrom(client)
	rec.ID = newID(rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	*client = *rec.toDomain()
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var rec ClientRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return rec.toDomain(), nil
}

// ThesisRepository stores thesis records
type ThesisRepository struct {
	db *gorm.DB
}

func NewThesisRepository(db *gorm.DB) *ThesisRepository {
	return &ThesisRepository{db: db}
}

func (r *ThesisRepository) Create(ctx context.Context, thesis *models.Thesis) error {
	rec := thesisRecordFrom(thesis)
	rec.ID = newID(rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	*thesis = rec.toDomain()
	return nil
}

func (r *ThesisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Thesis, error) {
	var rec ThesisRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	thesis := rec.toDomain()
	return &thesis, nil
}

func (r *ThesisRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*models.Thesis, error) {
	var recs []ThesisRecord
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("title").Find(&recs).Error; err != nil {
		return nil, err
	}
	theses := make([]*models.Thesis, 0, len(recs))
	for _, rec := range recs {
		thesis := rec.toDomain()
		theses = append(theses, &thesis)
	}
	return theses, nil
}

// Delete removes the thesis and its question links
func (r *ThesisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thesis_id = ?", id).Delete(&ThesisLinkRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&ThesisRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// QuestionnaireRepository stores petition models, questions and thesis links
type QuestionnaireRepository struct {
	db *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

func (r *QuestionnaireRepository) CreatePetitionModel(ctx context.Context, model *models.PetitionModel) error {
	rec := PetitionModelRecord{
		ID:          newID(model.ID),
		ClientID:    model.ClientID,
		Name:        model.Name,
		Description: model.Description,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	*model = *rec.toDomain()
	return nil
}

func (r *QuestionnaireRepository) GetPetitionModel(ctx context.Context, id uuid.UUID) (*models.PetitionModel, error) {
	var rec PetitionModelRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return rec.toDomain(), nil
}

func (r *QuestionnaireRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	rec := QuestionRecord{
		ID:              newID(question.ID),
		PetitionModelID: question.PetitionModelID,
		Text:            question.Text,
		DisplayOrder:    question.Order,
		HierarchyLevel:  question.HierarchyLevel,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	*question = rec.toDomain()
	return nil
}

func (r *QuestionnaireRepository) ListQuestions(ctx context.Context, modelID uuid.UUID) ([]models.Question, error) {
	var recs []QuestionRecord
	err := r.db.WithContext(ctx).
		Where("petition_model_id = ?", modelID).
		Order("display_order").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	questions := make([]models.Question, 0, len(recs))
	for _, rec := range recs {
		questions = append(questions, rec.toDomain())
	}
	return questions, nil
}

func (r *QuestionnaireRepository) CreateThesisLink(ctx context.Context, link *models.ThesisQuestionLink) error {
	if !link.Answer.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrInvalidAnswer, link.Answer)
	}

	var existing int64
	err := r.db.WithContext(ctx).Model(&ThesisLinkRecord{}).
		Where("question_id = ? AND thesis_id = ? AND answer = ?", link.QuestionID, link.ThesisID, string(link.Answer)).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return repository.ErrDuplicateLink
	}

	rec := ThesisLinkRecord{
		ID:         newID(link.ID),
		QuestionID: link.QuestionID,
		ThesisID:   link.ThesisID,
		Answer:     string(link.Answer),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	link.ID = rec.ID
	link.CreatedAt = rec.CreatedAt
	return nil
}

// ListLinkedTheses returns linked theses in link insertion order
func (r *QuestionnaireRepository) ListLinkedTheses(ctx context.Context, questionID uuid.UUID, answer models.AnswerTag) ([]models.Thesis, error) {
	var recs []ThesisRecord
	err := r.db.WithContext(ctx).
		Table("thesis_question_links AS l").
		Select("t.*").
		Joins("JOIN theses AS t ON t.id = l.thesis_id").
		Where("l.question_id = ? AND l.answer = ?", questionID, string(answer)).
		Order("l.rowid").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	theses := make([]models.Thesis, 0, len(recs))
	for _, rec := range recs {
		theses = append(theses, rec.toDomain())
	}
	return theses, nil
}

// GeneratedPetitionRepository stores generated petition records
type GeneratedPetitionRepository struct {
	db *gorm.DB
}

func NewGeneratedPetitionRepository(db *gorm.DB) *GeneratedPetitionRepository {
	return &GeneratedPetitionRepository{db: db}
}

func (r *GeneratedPetitionRepository) Create(ctx context.Context, petition *models.GeneratedPetition) error {
	rec, err := petitionRecordFrom(petition)
	if err != nil {
		return err
	}
	rec.ID = newID(rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	petition.ID = rec.ID
	petition.CreatedAt = rec.CreatedAt
	petition.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *GeneratedPetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedPetition, error) {
	var rec GeneratedPetitionRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return rec.toDomain()
}

// Update saves title, case number and location
func (r *GeneratedPetitionRepository) Update(ctx context.Context, petition *models.GeneratedPetition) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&GeneratedPetitionRecord{}).
		Where("id = ?", petition.ID).
		Updates(map[string]interface{}{
			"title":       petition.Title,
			"case_number": petition.CaseNumber,
			"location":    petition.Location,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	petition.UpdatedAt = now
	return nil
}

func (r *GeneratedPetitionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GeneratedPetition, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GeneratedPetitionRepository) ListAll(ctx context.Context) ([]*models.GeneratedPetition, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *GeneratedPetitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&GeneratedPetitionRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *GeneratedPetitionRepository) list(q *gorm.DB) ([]*models.GeneratedPetition, error) {
	var recs []GeneratedPetitionRecord
	if err := q.Order("created_at DESC").Order("rowid DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	petitions := make([]*models.GeneratedPetition, 0, len(recs))
	for _, rec := range recs {
		petition, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		petitions = append(petitions, petition)
	}
	return petitions, nil
}
